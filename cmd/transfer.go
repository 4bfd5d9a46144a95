package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/dinheiro/ledger"
)

type transferCmd struct {
	from     string
	to       string
	amount   string
	currency string
	inAmount string
	inCur    string
	date     string
	desc     string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "record a transfer between two accounts" }
func (*transferCmd) Usage() string {
	return `dinheiro transfer -from <account> -to <account> -a <amount> -c <currency> [-in-amount <amount> -in-currency <currency>] [-d <date>] [-m <description>]

  Records a transfer. When the receiving amount is given in another currency,
  two linked one-sided legs are recorded instead of a single posting.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source account id.")
	f.StringVar(&c.to, "to", "", "Destination account id.")
	f.StringVar(&c.amount, "a", "", "Amount leaving the source account.")
	f.StringVar(&c.currency, "c", "", "Currency of the outgoing amount.")
	f.StringVar(&c.inAmount, "in-amount", "", "Amount arriving, for cross-currency transfers.")
	f.StringVar(&c.inCur, "in-currency", "", "Currency of the arriving amount.")
	f.StringVar(&c.date, "d", "", "Date of the transfer. Defaults to today.")
	f.StringVar(&c.desc, "m", "", "Description.")
}

func (c *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" || c.amount == "" || c.currency == "" {
		fmt.Fprintln(os.Stderr, "Error: -from, -to, -a and -c are required.")
		return subcommands.ExitUsageError
	}
	on, err := parseDateOrToday(c.date)
	if err != nil {
		return fail(err)
	}
	amount, err := parseMoney(c.amount, c.currency)
	if err != nil {
		return fail(err)
	}

	src := ledger.AccountRef{Type: ledger.BankAccount, ID: c.from}
	dst := ledger.AccountRef{Type: ledger.BankAccount, ID: c.to}

	var postings []ledger.Posting
	if c.inAmount != "" && !strings.EqualFold(c.inCur, c.currency) {
		inbound, err := parseMoney(c.inAmount, c.inCur)
		if err != nil {
			return fail(err)
		}
		postings, err = ledger.NewCrossCurrencyTransfer(src, dst, amount, inbound, on, c.desc)
		if err != nil {
			return fail(err)
		}
	} else {
		p, err := ledger.NewTransfer(src, dst, amount, on, c.desc)
		if err != nil {
			return fail(err)
		}
		postings = []ledger.Posting{p}
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	var batch ledger.Batch
	for _, p := range postings {
		p := p
		batch.Add("create posting "+p.ID, func(ctx context.Context) error {
			return store.CreatePosting(ctx, p)
		})
	}
	if err := batch.Run(ctx); err != nil {
		if errors.Is(err, ledger.ErrPartialBatch) {
			fmt.Fprintf(os.Stderr, "Transfer partially recorded, check the statement: %v\n", err)
		}
		return fail(err)
	}

	for _, p := range postings {
		fmt.Printf("Recorded %s on %s\n", p.Amount, p.Date)
	}
	return subcommands.ExitSuccess
}

func parseDateOrToday(s string) (ledger.Date, error) {
	if s == "" {
		return ledger.Today(), nil
	}
	return ledger.ParseDate(s)
}

func parseMoney(amount, currency string) (ledger.Money, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return ledger.Money{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	if err := ledger.ValidateCurrency(currency); err != nil {
		return ledger.Money{}, err
	}
	return ledger.M(value, strings.ToUpper(currency)), nil
}
