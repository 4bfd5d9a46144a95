package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dinheiro/ledger"
)

type statementCmd struct {
	account string
	start   string
	end     string
	desc    bool
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "print an account statement for a period" }
func (*statementCmd) Usage() string {
	return `dinheiro statement -a <account> [-s <start_date>] [-e <end_date>] [-desc]

  Prints the postings of one account grouped by day, with running balances,
  the carry-over from before the period, and the period totals.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account to report on.")
	f.StringVar(&c.start, "s", "", "Start date of the period. Defaults to the current month.")
	f.StringVar(&c.end, "e", "", "End date of the period. Defaults to today.")
	f.BoolVar(&c.desc, "desc", false, "Newest groups first.")
}

func (c *statementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -a <account> is required.")
		return subcommands.ExitUsageError
	}
	period, err := parseRange(c.start, c.end)
	if err != nil {
		return fail(err)
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	history, err := store.ListPostings(ctx, ledger.PostingFilter{AccountID: c.account})
	if err != nil {
		return fail(err)
	}

	order := ledger.Ascending
	if c.desc {
		order = ledger.Descending
	}
	stmt := ledger.BuildStatement(history, c.account, period, ledger.Today(), order)

	fmt.Printf("Statement for %s, %s to %s\n", c.account, period.From, period.To)
	fmt.Printf("Carry-over: %s\n\n", stmt.CarryOver)
	for _, g := range stmt.Groups {
		fmt.Printf("%s  (closing %s)\n", g.Date, g.ClosingBalance)
		for _, line := range g.Lines {
			fmt.Printf("  %-10s %-30s %12s  %s\n",
				line.Posting.Status, line.Posting.Description,
				ledger.SignedAmount(line.Posting, c.account, true).SignedString(), line.Running)
		}
	}
	fmt.Printf("\nInflow %s, outflow %s, net %s\n", stmt.Totals.Inflow, stmt.Totals.Outflow, stmt.Totals.Net)
	fmt.Printf("Expected closing: %s, displayed: %s\n", stmt.ExpectedClosing, stmt.Displayed)
	return subcommands.ExitSuccess
}
