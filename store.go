package ledger

import (
	"context"
)

// The core never performs I/O itself: it receives snapshots from a store and
// returns computed values or mutation intents. These interfaces are the
// contract the persistence collaborator implements (see sqlstore).

// PostingFilter selects postings by account and date range. Zero fields match
// everything.
type PostingFilter struct {
	AccountID string
	Range     Range
	Statuses  []Status
}

// Matches reports whether a posting passes the filter.
func (f PostingFilter) Matches(p Posting) bool {
	if f.AccountID != "" && !p.Touches(f.AccountID) {
		return false
	}
	if !f.Range.From.IsZero() && p.Date.Before(f.Range.From) {
		return false
	}
	if !f.Range.To.IsZero() && p.Date.After(f.Range.To) {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if p.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// PostingMutation is a partial update of a posting: nil fields are left
// untouched.
type PostingMutation struct {
	Date        *Date
	Amount      *Money
	Status      *Status
	Category    *Category
	CategoryID  *string
	TagIDs      []string
	Description *string
	Notes       *string
}

// OccurrenceMutation is a partial update of an occurrence.
type OccurrenceMutation struct {
	ScheduledDate *Date
	Amount        *Money
	Status        *Status
	Notes         *string
}

// PostingStore is the posting side of the persistence contract.
type PostingStore interface {
	ListPostings(ctx context.Context, filter PostingFilter) ([]Posting, error)
	CreatePosting(ctx context.Context, p Posting) error
	MutatePosting(ctx context.Context, id string, mut PostingMutation) error
	DeletePosting(ctx context.Context, id string) error
}

// RecurrenceStore is the recurring-definition side of the persistence
// contract.
type RecurrenceStore interface {
	GetDefinition(ctx context.Context, id string) (RecurringDefinition, error)
	ListDefinitions(ctx context.Context) ([]RecurringDefinition, error)
	SaveDefinition(ctx context.Context, def RecurringDefinition) error
	DeleteDefinition(ctx context.Context, id string) error

	ListOccurrences(ctx context.Context, definitionID string) ([]Occurrence, error)
	CreateOccurrence(ctx context.Context, o Occurrence) error
	MutateOccurrence(ctx context.Context, id string, mut OccurrenceMutation) error
	DeleteOccurrence(ctx context.Context, id string) error
}

// HoldingStore is the holding side of the persistence contract.
type HoldingStore interface {
	ListHoldings(ctx context.Context, accountID string) ([]Holding, error)
	CreateHolding(ctx context.Context, h Holding) error
	SaveHolding(ctx context.Context, h Holding) error
	DeleteHolding(ctx context.Context, id string) error

	AppendSnapshot(ctx context.Context, s ValueSnapshot) error
}

// Store aggregates the full persistence contract.
type Store interface {
	PostingStore
	RecurrenceStore
	HoldingStore
}
