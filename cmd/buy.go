package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/dinheiro/ledger"
)

type buyCmd struct {
	account  string
	symbol   string
	asset    string
	quantity string
	price    string
	currency string
	funding  string
	policy   string
	date     string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy units of a security into an investment account" }
func (*buyCmd) Usage() string {
	return `dinheiro buy -acc <account> -sym <symbol> -q <quantity> -p <unit_price> -c <currency> -from <funding_account> [-asset <type>] [-policy independent|weighted_average] [-d <date>]

  Records a purchase: a new lot (or a merge into the existing holding under
  the weighted_average policy) and the cash movement debiting the funding
  account.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "acc", "", "Investment account id.")
	f.StringVar(&c.symbol, "sym", "", "Security symbol.")
	f.StringVar(&c.asset, "asset", "stock", "Asset type.")
	f.StringVar(&c.quantity, "q", "", "Quantity of units bought.")
	f.StringVar(&c.price, "p", "", "Unit price paid.")
	f.StringVar(&c.currency, "c", "", "Currency of the unit price.")
	f.StringVar(&c.funding, "from", "", "Account the purchase is paid from.")
	f.StringVar(&c.policy, "policy", "independent", "Lot policy: independent or weighted_average.")
	f.StringVar(&c.date, "d", "", "Date of the purchase. Defaults to today.")
}

func (c *buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.symbol == "" || c.quantity == "" || c.price == "" || c.currency == "" || c.funding == "" {
		fmt.Fprintln(os.Stderr, "Error: -acc, -sym, -q, -p, -c and -from are required.")
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
	policy, err := ledger.ParseLotPolicy(c.policy)
	if err != nil {
		return fail(err)
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	existing, err := store.ListHoldings(ctx, c.account)
	if err != nil {
		return fail(err)
	}

	funding := ledger.AccountRef{Type: ledger.BankAccount, ID: c.funding}
	result, err := ledger.Buy(policy, existing, c.account, c.symbol, ledger.AssetType(c.asset), quantity, price, funding, on)
	if err != nil {
		return fail(err)
	}

	var batch ledger.Batch
	if result.Merged {
		batch.Add("merge holding "+result.Holding.ID, func(ctx context.Context) error {
			return store.SaveHolding(ctx, result.Holding)
		})
	} else {
		batch.Add("create holding "+result.Holding.ID, func(ctx context.Context) error {
			return store.CreateHolding(ctx, result.Holding)
		})
	}
	batch.Add("create movement "+result.Movement.ID, func(ctx context.Context) error {
		return store.CreatePosting(ctx, result.Movement)
	})
	if err := batch.Run(ctx); err != nil {
		return fail(err)
	}

	fmt.Printf("Bought %s %s at %s, holding %s\n", quantity, c.symbol, price, result.Holding.ID)
	return subcommands.ExitSuccess
}

func parseQuantity(s string) (ledger.Quantity, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return ledger.Quantity{}, fmt.Errorf("parsing quantity %q: %w", s, err)
	}
	return ledger.Q(value), nil
}
