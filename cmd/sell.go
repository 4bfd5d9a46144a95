package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dinheiro/ledger"
	"github.com/dinheiro/ledger/sqlstore"
)

type sellCmd struct {
	holding  string
	quantity string
	price    string
	currency string
	tax      string
	dest     string
	date     string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell units of a holding" }
func (*sellCmd) Usage() string {
	return `dinheiro sell -h <holding_id> -q <quantity> -p <unit_price> -c <currency> -to <account> [-tax <amount>] [-d <date>]

  Sells part or all of a holding. The net proceeds move to the destination
  account; the movement carries the realized profit metadata. Selling the
  full quantity removes the holding.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holding, "h", "", "Holding id to sell from.")
	f.StringVar(&c.quantity, "q", "", "Quantity of units sold.")
	f.StringVar(&c.price, "p", "", "Unit price obtained.")
	f.StringVar(&c.currency, "c", "", "Currency of the unit price.")
	f.StringVar(&c.tax, "tax", "0", "Tax withheld at sale time.")
	f.StringVar(&c.dest, "to", "", "Account receiving the proceeds.")
	f.StringVar(&c.date, "d", "", "Date of the sale. Defaults to today.")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holding == "" || c.quantity == "" || c.price == "" || c.currency == "" || c.dest == "" {
		fmt.Fprintln(os.Stderr, "Error: -h, -q, -p, -c and -to are required.")
		return subcommands.ExitUsageError
	}
	on, err := parseDateOrToday(c.date)
	if err != nil {
		return fail(err)
	}
	quantity, err := parseQuantity(c.quantity)
	if err != nil {
		return fail(err)
	}
	price, err := parseMoney(c.price, c.currency)
	if err != nil {
		return fail(err)
	}
	tax, err := parseMoney(c.tax, c.currency)
	if err != nil {
		return fail(err)
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	holding, err := findHolding(ctx, store, c.holding)
	if err != nil {
		return fail(err)
	}

	dest := ledger.AccountRef{Type: ledger.BankAccount, ID: c.dest}
	result, err := ledger.Sell(holding, quantity, price, tax, dest, on)
	if err != nil {
		return fail(err)
	}

	var batch ledger.Batch
	if result.Holding != nil {
		batch.Add("update holding "+holding.ID, func(ctx context.Context) error {
			return store.SaveHolding(ctx, *result.Holding)
		})
	} else {
		batch.Add("delete holding "+holding.ID, func(ctx context.Context) error {
			return store.DeleteHolding(ctx, holding.ID)
		})
	}
	batch.Add("create movement "+result.Movement.ID, func(ctx context.Context) error {
		return store.CreatePosting(ctx, result.Movement)
	})
	if err := batch.Run(ctx); err != nil {
		return fail(err)
	}

	m := result.Metadata
	fmt.Printf("Sold %s %s: gross %s, tax %s, profit %s, proceeds %s\n",
		quantity, holding.Symbol, m.Gross, m.Tax, m.Profit, result.Movement.Amount)
	return subcommands.ExitSuccess
}

func findHolding(ctx context.Context, store *sqlstore.Store, id string) (ledger.Holding, error) {
	holdings, err := store.ListHoldings(ctx, "")
	if err != nil {
		return ledger.Holding{}, err
	}
	for _, h := range holdings {
		if h.ID == id {
			return h, nil
		}
	}
	return ledger.Holding{}, fmt.Errorf("holding %s: %w", id, ledger.ErrNotFound)
}
