package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dinheiro/ledger"
	"github.com/dinheiro/ledger/quotes"
)

type refreshQuotesCmd struct {
	account string
}

func (*refreshQuotesCmd) Name() string { return "refresh-quotes" }
func (*refreshQuotesCmd) Synopsis() string {
	return "refresh holding prices and snapshot the account value"
}
func (*refreshQuotesCmd) Usage() string {
	return `dinheiro refresh-quotes -acc <account>

  Fetches the latest traded price for every holding of the account, updates
  the stored prices, and appends today's value to the account history.
  Responses are cached on disk for the day.
`
}

func (c *refreshQuotesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "acc", "", "Investment account id.")
}

func (c *refreshQuotesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -acc <account> is required.")
		return subcommands.ExitUsageError
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	value, err := ledger.RefreshHoldings(ctx, store, quotes.NewTradegate(), nil, c.account, ledger.Today())
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s is worth %s\n", c.account, value)
	return subcommands.ExitSuccess
}
