package ledger

import (
	"context"
	"log"
	"sync"
)

// Aggregator keeps a per-account Statement current by recomputing it whenever
// posting data changes. Refreshes triggered while one is in flight supersede
// it: only the latest generation is allowed to install its result.
type Aggregator struct {
	store     PostingStore
	accountID string
	period    Range
	order     SortOrder

	mu   sync.Mutex
	gen  int
	stmt *Statement
}

// NewAggregator builds an aggregator for one account over one period and
// wires it to the bus. The returned cancel function detaches it.
func NewAggregator(store PostingStore, bus *Bus, accountID string, period Range, order SortOrder) (*Aggregator, func()) {
	a := &Aggregator{store: store, accountID: accountID, period: period, order: order}
	cancel := bus.Subscribe(func(e Event) {
		if e.Kind != PostingsChanged {
			return
		}
		if e.AccountID != "" && e.AccountID != accountID {
			return
		}
		go a.Refresh(context.Background())
	})
	return a, cancel
}

// Refresh recomputes the statement from the store. A refresh that was
// superseded by a newer one discards its result.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.mu.Unlock()

	history, err := a.store.ListPostings(ctx, PostingFilter{AccountID: a.accountID})
	if err != nil {
		log.Printf("statement refresh for %s: %v", a.accountID, err)
		return err
	}
	stmt := BuildStatement(history, a.accountID, a.period, Today(), a.order)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return nil
	}
	a.stmt = &stmt
	return nil
}

// Statement returns the last completed statement, or nil before the first
// refresh finishes.
func (a *Aggregator) Statement() *Statement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stmt
}

// SetPeriod changes the aggregated period. The caller should Refresh after.
func (a *Aggregator) SetPeriod(period Range) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.period = period
}
