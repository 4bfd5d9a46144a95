package ledger

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// A Batch is a sequence of independent sub-requests standing in for a
// transaction the storage layer cannot give us: scoped recurring mutations
// and two-leg transfers are really sagas with no compensation step. Each step
// is submitted on its own; when a later step fails, the earlier ones stay
// applied and the caller learns how far the batch got. Recovery is a fresh
// reload, never a rollback.

// Step is one idempotent sub-request of a batch.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
}

// Batch is an ordered sequence of steps.
type Batch struct {
	steps []Step
}

// Add appends a named step to the batch.
func (b *Batch) Add(name string, do func(ctx context.Context) error) {
	b.steps = append(b.steps, Step{Name: name, Do: do})
}

// Len returns the number of steps.
func (b *Batch) Len() int { return len(b.steps) }

// Run executes the steps in order, stopping at the first failure. The
// returned error wraps ErrPartialBatch when at least one step had already
// been applied, so callers can tell "nothing happened" from "the dataset is
// now partially mutated".
func (b *Batch) Run(ctx context.Context) error {
	for i, step := range b.steps {
		if err := step.Do(ctx); err != nil {
			if i == 0 {
				return fmt.Errorf("batch step %q: %w", step.Name, err)
			}
			log.Printf("batch stopped at step %d/%d (%s): %v", i+1, len(b.steps), step.Name, err)
			return fmt.Errorf("%w: step %q failed after %d applied: %v", ErrPartialBatch, step.Name, i, err)
		}
	}
	return nil
}

// ChangeSet is the outcome of a reconciliation pass: the ids created, mutated
// and deleted between two posting snapshots of the same scope.
type ChangeSet struct {
	Created []string
	Updated []string
	Deleted []string
}

// IsZero reports whether the two snapshots were identical.
func (c ChangeSet) IsZero() bool {
	return len(c.Created) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

// DiffPostings compares a snapshot taken before a batch with a fresh re-read
// after it. After a partial failure this is how the caller discovers which
// sub-requests actually landed.
func DiffPostings(before, after []Posting) ChangeSet {
	prev := make(map[string]Posting, len(before))
	for _, p := range before {
		prev[p.ID] = p
	}

	var c ChangeSet
	for _, p := range after {
		old, ok := prev[p.ID]
		if !ok {
			c.Created = append(c.Created, p.ID)
			continue
		}
		delete(prev, p.ID)
		if !samePosting(old, p) {
			c.Updated = append(c.Updated, p.ID)
		}
	}
	for id := range prev {
		c.Deleted = append(c.Deleted, id)
	}
	sort.Strings(c.Deleted)
	return c
}

func samePosting(a, b Posting) bool {
	return a.Date == b.Date &&
		a.Status == b.Status &&
		a.Amount.Equal(b.Amount) &&
		a.Category == b.Category &&
		a.Notes == b.Notes &&
		a.Description == b.Description
}
