package ledger

import (
	"sort"
)

// SortOrder controls the display direction of statement groups.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// StatementLine is one posting of a statement with the running balance after
// it was applied. The running balance only advances on effective postings.
type StatementLine struct {
	Posting Posting
	Running Money
}

// StatementGroup gathers the postings of a single day. The synthetic carry
// group opens the statement: it is dated at period start, has no lines, and
// its closing balance is the carry-over balance.
type StatementGroup struct {
	Date           Date
	Lines          []StatementLine
	ClosingBalance Money
	Carry          bool
}

// BuildStatementGroups turns period postings into display-ready day groups.
func BuildStatementGroups(postings []Posting, accountID string, carry Money, periodStart Date, order SortOrder) []StatementGroup {
	sorted := sortedByDate(postings)

	running := carry
	// the carry group goes in first so a posting dated exactly at period
	// start sorts after it
	groups := []StatementGroup{{Date: periodStart, ClosingBalance: carry, Carry: true}}
	for _, p := range sorted {
		if p.Status.IsEffective() {
			running = running.Add(SignedAmount(p, accountID, true))
		}
		line := StatementLine{Posting: p, Running: running}
		if n := len(groups); !groups[n-1].Carry && groups[n-1].Date == p.Date {
			groups[n-1].Lines = append(groups[n-1].Lines, line)
			groups[n-1].ClosingBalance = running
			continue
		}
		groups = append(groups, StatementGroup{Date: p.Date, Lines: []StatementLine{line}, ClosingBalance: running})
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Date.Before(groups[j].Date) })

	if order == Descending {
		for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
			groups[i], groups[j] = groups[j], groups[i]
		}
	}
	return groups
}

// Statement is the display-ready projection of one account over one period:
// day groups, summary totals, projected and displayed balances, and the
// charting series.
type Statement struct {
	AccountID       string
	Period          Range
	CarryOver       Money
	Groups          []StatementGroup
	Totals          Summary
	ExpectedClosing Money
	Displayed       Money
	Daily           []DailyPoint
}

// BuildStatement aggregates the projector over a selected account and period.
// It takes the full posting history touching the account: postings before the
// period feed the carry-over balance, postings inside it feed everything else.
func BuildStatement(history []Posting, accountID string, period Range, today Date, order SortOrder) Statement {
	carry := CarryOverBalance(history, accountID, period.From)

	var inPeriod []Posting
	for _, p := range history {
		if period.Contains(p.Date) {
			inPeriod = append(inPeriod, p)
		}
	}

	return Statement{
		AccountID:       accountID,
		Period:          period,
		CarryOver:       carry,
		Groups:          BuildStatementGroups(inPeriod, accountID, carry, period.From, order),
		Totals:          Totals(inPeriod, accountID),
		ExpectedClosing: ExpectedClosingBalance(inPeriod, accountID, carry, period.To),
		Displayed:       DisplayedBalance(inPeriod, accountID, carry, period.To, today),
		Daily:           DailySeries(inPeriod, accountID, carry, period),
	}
}

// BreakdownBy selects the grouping axis of an expense breakdown.
type BreakdownBy int

const (
	ByCategory BreakdownBy = iota
	ByMonth
)

// BreakdownItem is one labeled bucket of an expense breakdown.
type BreakdownItem struct {
	Label string
	Total Money
}

// ExpenseBreakdown groups effective expense postings of the period by
// category id (or category when none is set) or by month, and totals them.
func ExpenseBreakdown(postings []Posting, rng Range, by BreakdownBy) []BreakdownItem {
	buckets := make(map[string]Money)
	for _, p := range postings {
		if !rng.Contains(p.Date) || !p.Status.IsEffective() {
			continue
		}
		if p.Category == CategoryIncome || p.Category == CategoryTransfer {
			continue
		}
		label := p.Date.Format("2006-01")
		if by == ByCategory {
			label = p.CategoryID
			if label == "" {
				label = string(p.Category)
			}
		}
		buckets[label] = buckets[label].Add(p.Amount.Abs())
	}

	items := make([]BreakdownItem, 0, len(buckets))
	for label, total := range buckets {
		items = append(items, BreakdownItem{Label: label, Total: total})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

// PeriodFlow is one period of the income-vs-expenses series.
type PeriodFlow struct {
	Period   string // "2006-01" or "2006-01-02" depending on granularity
	Income   Money
	Expenses Money
	Net      Money
}

// Granularity selects the bucketing of the income-vs-expenses series.
type Granularity int

const (
	PerMonth Granularity = iota
	PerDay
)

// IncomeVsExpenses buckets effective postings of the period into income and
// expense flows per month or per day. Transfers move value between own
// accounts and are excluded.
func IncomeVsExpenses(postings []Posting, rng Range, g Granularity) []PeriodFlow {
	layout := "2006-01"
	if g == PerDay {
		layout = DateFormat
	}

	buckets := make(map[string]*PeriodFlow)
	for _, p := range postings {
		if !rng.Contains(p.Date) || !p.Status.IsEffective() {
			continue
		}
		if p.Category == CategoryTransfer {
			continue
		}
		key := p.Date.Format(layout)
		flow, ok := buckets[key]
		if !ok {
			flow = &PeriodFlow{Period: key}
			buckets[key] = flow
		}
		if p.Category == CategoryIncome {
			flow.Income = flow.Income.Add(p.Amount.Abs())
		} else {
			flow.Expenses = flow.Expenses.Add(p.Amount.Abs())
		}
		flow.Net = flow.Income.Sub(flow.Expenses)
	}

	series := make([]PeriodFlow, 0, len(buckets))
	for _, flow := range buckets {
		series = append(series, *flow)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })
	return series
}
