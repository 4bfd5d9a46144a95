package ledger

import (
	"sort"
)

// The projector is a set of pure functions over posting snapshots. Balances
// are always replayed from the full posting history rather than seeded from a
// persisted balance field: when the stored balance and the transaction
// history disagree, the history wins and no drift is visible.

// SignedAmount derives the signed value of a posting as seen from a viewing
// account. If the posting leaves the account the value is negative, if it
// enters it the value is positive. Postings not linked to the account fall
// back on their category: income counts positive, a transfer counts negative
// only when fallbackExpense is set, anything else counts negative. The
// fallback keeps unassigned movements rendering a signed value in statements.
func SignedAmount(p Posting, accountID string, fallbackExpense bool) Money {
	amount := p.Amount.Abs()
	switch {
	case p.From.Is(accountID):
		return amount.Neg()
	case p.To.Is(accountID):
		return amount
	}
	switch p.Category {
	case CategoryIncome:
		return amount
	case CategoryTransfer:
		if fallbackExpense {
			return amount.Neg()
		}
		return M(0, amount.Currency())
	default:
		return amount.Neg()
	}
}

// CarryOverBalance replays every effective posting dated strictly before
// periodStart and returns the resulting balance for the account.
func CarryOverBalance(postings []Posting, accountID string, periodStart Date) Money {
	var balance Money
	for _, p := range postings {
		if !p.Date.Before(periodStart) || !p.Status.IsEffective() {
			continue
		}
		balance = balance.Add(SignedAmount(p, accountID, false))
	}
	return balance
}

// Summary is the inflow/outflow/net triple for a period.
type Summary struct {
	Inflow  Money // sum of positive signed amounts
	Outflow Money // absolute sum of negative signed amounts
	Net     Money
}

// Totals sums signed amounts of effective postings into inflow, outflow and net.
func Totals(postings []Posting, accountID string) Summary {
	var s Summary
	for _, p := range postings {
		if !p.Status.IsEffective() {
			continue
		}
		signed := SignedAmount(p, accountID, true)
		if signed.IsNegative() {
			s.Outflow = s.Outflow.Add(signed.Neg())
		} else {
			s.Inflow = s.Inflow.Add(signed)
		}
		s.Net = s.Net.Add(signed)
	}
	return s
}

// ExpectedClosingBalance continues from the carry-over balance and includes
// pending and scheduled postings as well, projecting the balance at the end
// of the period.
func ExpectedClosingBalance(postings []Posting, accountID string, carry Money, periodEnd Date) Money {
	balance := carry
	for _, p := range postings {
		if p.Date.After(periodEnd) {
			continue
		}
		if !p.Status.IsEffective() && !p.Status.IsPending() {
			continue
		}
		balance = balance.Add(SignedAmount(p, accountID, true))
	}
	return balance
}

// DisplayedBalance continues from the carry-over balance using only effective
// postings dated up to min(periodEnd, today).
func DisplayedBalance(postings []Posting, accountID string, carry Money, periodEnd, today Date) Money {
	cutoff := MinDate(periodEnd, today)
	balance := carry
	for _, p := range postings {
		if p.Date.After(cutoff) || !p.Status.IsEffective() {
			continue
		}
		balance = balance.Add(SignedAmount(p, accountID, true))
	}
	return balance
}

// DailyPoint is one day of the charting series: the running balance at end of
// day, the expense total of the day, and the cumulative expense so far.
type DailyPoint struct {
	Date              Date
	Balance           Money
	Expense           Money
	CumulativeExpense Money
}

// DailySeries computes the per-day running balance and expense series over a
// range. It is a pure function of its input: recomputing from the same
// snapshot always yields the same series.
func DailySeries(postings []Posting, accountID string, carry Money, rng Range) []DailyPoint {
	sorted := sortedByDate(postings)

	byDay := make(map[Date][]Posting)
	for _, p := range sorted {
		if !rng.Contains(p.Date) || !p.Status.IsEffective() {
			continue
		}
		byDay[p.Date] = append(byDay[p.Date], p)
	}

	days := make([]Date, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := make([]DailyPoint, 0, len(days))
	balance := carry
	var cumulative Money
	for _, day := range days {
		var expense Money
		for _, p := range byDay[day] {
			signed := SignedAmount(p, accountID, true)
			balance = balance.Add(signed)
			if signed.IsNegative() {
				expense = expense.Add(signed.Neg())
			}
		}
		cumulative = cumulative.Add(expense)
		series = append(series, DailyPoint{
			Date:              day,
			Balance:           balance,
			Expense:           expense,
			CumulativeExpense: cumulative,
		})
	}
	return series
}

// sortedByDate returns a date-ascending copy; postings on the same day keep
// their original relative order.
func sortedByDate(postings []Posting) []Posting {
	sorted := make([]Posting, len(postings))
	copy(sorted, postings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}
