package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dinheiro/ledger"
)

type exportCmd struct {
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the whole ledger as JSONL" }
func (*exportCmd) Usage() string {
	return `dinheiro export [-o <file>]

  Writes every posting, recurring definition, occurrence and holding as one
  JSON object per line, to stdout or to a file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	w := os.Stdout
	if c.out != "" {
		w, err = os.Create(c.out)
		if err != nil {
			return fail(err)
		}
		defer w.Close()
	}

	if err := ledger.Export(ctx, store, w); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type importCmd struct {
	in string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSONL export into the ledger" }
func (*importCmd) Usage() string {
	return `dinheiro import [-i <file>]

  Reads an export stream from stdin or a file and writes every record into
  the database.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "i", "", "Input file. Defaults to stdin.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	r := os.Stdin
	if c.in != "" {
		r, err = os.Open(c.in)
		if err != nil {
			return fail(err)
		}
		defer r.Close()
	}

	if err := ledger.Import(ctx, store, r); err != nil {
		return fail(err)
	}
	fmt.Println("Import complete")
	return subcommands.ExitSuccess
}
