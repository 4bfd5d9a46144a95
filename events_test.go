package ledger

import (
	"context"
	"testing"
	"time"
)

func TestBusSubscribePublish(t *testing.T) {
	var bus Bus
	var got []Event

	cancel := bus.Subscribe(func(e Event) { got = append(got, e) })
	bus.Publish(Event{Kind: PostingsChanged, AccountID: "a"})
	bus.Publish(Event{Kind: HoldingsChanged})

	if len(got) != 2 {
		t.Fatalf("received %d events, want 2", len(got))
	}
	if got[0].Kind != PostingsChanged || got[0].AccountID != "a" {
		t.Errorf("event 0 = %+v", got[0])
	}

	cancel()
	bus.Publish(Event{Kind: PostingsChanged})
	if len(got) != 2 {
		t.Errorf("received %d events after cancel, want still 2", len(got))
	}
}

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	var bus Bus
	var order []int
	bus.Subscribe(func(Event) { order = append(order, 1) })
	bus.Subscribe(func(Event) { order = append(order, 2) })
	bus.Subscribe(func(Event) { order = append(order, 3) })

	bus.Publish(Event{Kind: OccurrencesChanged})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v", order)
	}
}

// fakePostingStore serves a fixed snapshot.
type fakePostingStore struct {
	postings []Posting
	calls    int
}

func (s *fakePostingStore) ListPostings(_ context.Context, f PostingFilter) ([]Posting, error) {
	s.calls++
	var out []Posting
	for _, p := range s.postings {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePostingStore) CreatePosting(context.Context, Posting) error { return nil }
func (s *fakePostingStore) MutatePosting(context.Context, string, PostingMutation) error {
	return nil
}
func (s *fakePostingStore) DeletePosting(context.Context, string) error { return nil }

func TestAggregatorRefresh(t *testing.T) {
	store := &fakePostingStore{postings: []Posting{
		{ID: "1", To: acct("a"), Amount: M(100, "EUR"), Date: NewDate(2024, time.May, 2), Status: Processed, Category: CategoryIncome},
	}}
	var bus Bus

	agg, cancel := NewAggregator(store, &bus, "a", MonthOf(NewDate(2024, time.May, 1)), Ascending)
	defer cancel()

	if agg.Statement() != nil {
		t.Error("statement should be nil before the first refresh")
	}
	if err := agg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	stmt := agg.Statement()
	if stmt == nil {
		t.Fatal("statement missing after refresh")
	}
	if stmt.AccountID != "a" || len(stmt.Groups) == 0 {
		t.Errorf("statement = %+v", stmt)
	}
}

func TestAggregatorIgnoresOtherAccounts(t *testing.T) {
	store := &fakePostingStore{}
	var bus Bus
	_, cancel := NewAggregator(store, &bus, "a", MonthOf(Today()), Ascending)
	defer cancel()

	bus.Publish(Event{Kind: PostingsChanged, AccountID: "someone-else"})
	bus.Publish(Event{Kind: HoldingsChanged, AccountID: "a"})
	// events for other accounts or kinds trigger no re-read; the refresh for
	// our own account runs on a goroutine, so only assert the filtered cases
	// stayed quiet.
	if store.calls != 0 {
		t.Errorf("store read %d times, want 0", store.calls)
	}
}
