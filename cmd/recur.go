package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dinheiro/ledger"
)

type expandCmd struct {
	definition string
	horizon    string
}

func (*expandCmd) Name() string     { return "expand" }
func (*expandCmd) Synopsis() string { return "materialize upcoming occurrences of recurring series" }
func (*expandCmd) Usage() string {
	return `dinheiro expand [-def <definition_id>] [-horizon <date>]

  Materializes the missing occurrences of one definition (or all of them) up
  to the horizon. Dates that already exist are left alone, so re-running is
  safe.
`
}

func (c *expandCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.definition, "def", "", "Expand a single definition. Defaults to all.")
	f.StringVar(&c.horizon, "horizon", "", "Expansion horizon. Defaults to the configured number of months ahead.")
}

func (c *expandCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, cfg, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	horizon := ledger.Today().AddMonth(cfg.Ledger.HorizonMonths)
	if c.horizon != "" {
		horizon, err = ledger.ParseDate(c.horizon)
		if err != nil {
			return fail(err)
		}
	}

	var defs []ledger.RecurringDefinition
	if c.definition != "" {
		def, err := store.GetDefinition(ctx, c.definition)
		if err != nil {
			return fail(err)
		}
		defs = append(defs, def)
	} else {
		defs, err = store.ListDefinitions(ctx)
		if err != nil {
			return fail(err)
		}
	}

	total := 0
	for _, def := range defs {
		existing, err := store.ListOccurrences(ctx, def.ID)
		if err != nil {
			return fail(err)
		}
		for _, o := range def.Expand(existing, horizon) {
			if err := store.CreateOccurrence(ctx, o); err != nil {
				return fail(fmt.Errorf("creating occurrence of %s: %w", def.ID, err))
			}
			total++
		}
	}
	fmt.Printf("Created %d occurrences up to %s\n", total, horizon)
	return subcommands.ExitSuccess
}

type editCmd struct {
	definition string
	target     string
	scope      string
	date       string
	amount     string
	currency   string
	status     string
	notes      string
	desc       string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit occurrences of a recurring series" }
func (*editCmd) Usage() string {
	return `dinheiro edit -def <definition_id> -occ <occurrence_id> -scope <only_event|from_event_forward|all_events> [-d <date>] [-a <amount> -c <currency>] [-status <status>] [-notes <text>] [-m <description>]

  Edits the targeted occurrence and, depending on the scope, its successors or
  the whole series. A new date shifts every selected occurrence by the same
  number of days; shared fields like the description always update the
  definition itself.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.definition, "def", "", "Definition the occurrence belongs to.")
	f.StringVar(&c.target, "occ", "", "Target occurrence id.")
	f.StringVar(&c.scope, "scope", string(ledger.OnlyEvent), "Breadth of the edit.")
	f.StringVar(&c.date, "d", "", "New date for the target occurrence.")
	f.StringVar(&c.amount, "a", "", "New amount.")
	f.StringVar(&c.currency, "c", "", "Currency of the new amount.")
	f.StringVar(&c.status, "status", "", "New status.")
	f.StringVar(&c.notes, "notes", "", "New notes.")
	f.StringVar(&c.desc, "m", "", "New shared description.")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.definition == "" || c.target == "" {
		fmt.Fprintln(os.Stderr, "Error: -def and -occ are required.")
		return subcommands.ExitUsageError
	}
	scope, err := ledger.ParseScope(c.scope)
	if err != nil {
		return fail(err)
	}

	var edit ledger.OccurrenceEdit
	if c.date != "" {
		d, err := ledger.ParseDate(c.date)
		if err != nil {
			return fail(err)
		}
		edit.Date = &d
	}
	if c.amount != "" {
		m, err := parseMoney(c.amount, c.currency)
		if err != nil {
			return fail(err)
		}
		edit.Amount = &m
	}
	if c.status != "" {
		st, err := ledger.ParseStatus(c.status)
		if err != nil {
			return fail(err)
		}
		edit.Status = &st
	}
	if c.notes != "" {
		edit.Notes = &c.notes
	}
	var patch ledger.DefinitionPatch
	if c.desc != "" {
		patch.Description = &c.desc
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	def, err := store.GetDefinition(ctx, c.definition)
	if err != nil {
		return fail(err)
	}
	occurrences, err := store.ListOccurrences(ctx, def.ID)
	if err != nil {
		return fail(err)
	}

	result, err := ledger.ApplyScopedEdit(scope, def, occurrences, c.target, edit, patch)
	if err != nil {
		return fail(err)
	}

	var batch ledger.Batch
	batch.Add("save definition "+result.Definition.ID, func(ctx context.Context) error {
		return store.SaveDefinition(ctx, result.Definition)
	})
	for _, o := range result.Occurrences {
		o := o
		batch.Add("mutate occurrence "+o.ID, func(ctx context.Context) error {
			return store.MutateOccurrence(ctx, o.ID, ledger.OccurrenceMutation{
				ScheduledDate: &o.ScheduledDate,
				Amount:        &o.Amount,
				Status:        &o.Status,
				Notes:         &o.Notes,
			})
		})
	}
	if err := batch.Run(ctx); err != nil {
		return fail(err)
	}

	fmt.Printf("Edited %d occurrences of %s\n", len(result.Occurrences), def.ID)
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	definition string
	target     string
	scope      string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete occurrences of a recurring series" }
func (*deleteCmd) Usage() string {
	return `dinheiro delete -def <definition_id> -occ <occurrence_id> -scope <only_event|from_event_forward|all_events>

  Deletes the targeted occurrence and, depending on the scope, its successors
  or the whole series. A forward delete that spares earlier occurrences
  truncates the series instead; deleting the last occurrences removes the
  definition.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.definition, "def", "", "Definition the occurrence belongs to.")
	f.StringVar(&c.target, "occ", "", "Target occurrence id.")
	f.StringVar(&c.scope, "scope", string(ledger.OnlyEvent), "Breadth of the delete.")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.definition == "" || c.target == "" {
		fmt.Fprintln(os.Stderr, "Error: -def and -occ are required.")
		return subcommands.ExitUsageError
	}
	scope, err := ledger.ParseScope(c.scope)
	if err != nil {
		return fail(err)
	}

	store, _, err := OpenStore()
	if err != nil {
		return fail(err)
	}
	defer store.Close()

	def, err := store.GetDefinition(ctx, c.definition)
	if err != nil {
		return fail(err)
	}
	occurrences, err := store.ListOccurrences(ctx, def.ID)
	if err != nil {
		return fail(err)
	}

	result, err := ledger.ApplyScopedDelete(scope, def, occurrences, c.target)
	if err != nil {
		return fail(err)
	}

	var batch ledger.Batch
	if result.DeleteDefinition {
		// the occurrences go with it through the foreign key cascade
		batch.Add("delete definition "+def.ID, func(ctx context.Context) error {
			return store.DeleteDefinition(ctx, def.ID)
		})
	} else {
		for _, id := range result.OccurrenceIDs {
			id := id
			batch.Add("delete occurrence "+id, func(ctx context.Context) error {
				return store.DeleteOccurrence(ctx, id)
			})
		}
		batch.Add("save definition "+def.ID, func(ctx context.Context) error {
			return store.SaveDefinition(ctx, result.Definition)
		})
	}
	if err := batch.Run(ctx); err != nil {
		return fail(err)
	}

	if result.DeleteDefinition {
		fmt.Printf("Deleted definition %s and its occurrences\n", def.ID)
	} else {
		fmt.Printf("Deleted %d occurrences of %s\n", len(result.OccurrenceIDs), def.ID)
	}
	return subcommands.ExitSuccess
}
