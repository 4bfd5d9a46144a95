package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/dinheiro/ledger"
)

type summaryCmd struct {
	start   string
	end     string
	byMonth bool
	daily   bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "expense breakdown and income vs expenses" }
func (*summaryCmd) Usage() string {
	return `dinheiro summary [-s <start_date>] [-e <end_date>] [-by-month] [-daily]

  Prints the expense breakdown (by category, or by month with -by-month) and
  the income-vs-expenses series over the period.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start date of the period. Defaults to the current month.")
	f.StringVar(&c.end, "e", "", "End date of the period. Defaults to today.")
	f.BoolVar(&c.byMonth, "by-month", false, "Break expenses down by month instead of category.")
	f.BoolVar(&c.daily, "daily", false, "Income vs expenses per day instead of per month.")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := parseRange(c.start, c.end)
	if err != nil {
		return fail(err)
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	postings, err := store.ListPostings(ctx, ledger.PostingFilter{Range: period})
	if err != nil {
		return fail(err)
	}

	by := ledger.ByCategory
	if c.byMonth {
		by = ledger.ByMonth
	}
	fmt.Printf("Expenses, %s to %s\n", period.From, period.To)
	for _, item := range ledger.ExpenseBreakdown(postings, period, by) {
		fmt.Printf("  %-20s %12s\n", item.Label, item.Total)
	}

	g := ledger.PerMonth
	if c.daily {
		g = ledger.PerDay
	}
	fmt.Println("\nIncome vs expenses")
	for _, flow := range ledger.IncomeVsExpenses(postings, period, g) {
		fmt.Printf("  %-10s income %12s  expenses %12s  net %12s\n",
			flow.Period, flow.Income, flow.Expenses, flow.Net)
	}
	return subcommands.ExitSuccess
}
