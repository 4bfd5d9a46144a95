package ledger

import "sync"

// EventKind names the kind of data that changed.
type EventKind string

const (
	PostingsChanged    EventKind = "postings"
	OccurrencesChanged EventKind = "occurrences"
	HoldingsChanged    EventKind = "holdings"
)

// Event announces that persisted data of a given kind changed. AccountID is
// empty when the change is not scoped to a single account.
type Event struct {
	Kind      EventKind
	AccountID string
}

// Bus is a minimal typed publish/subscribe hub. Subscribers are invoked
// synchronously, in subscription order. The zero value is ready to use.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

// Subscribe registers fn and returns a cancel function that removes it.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers e to every current subscriber.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	// map iteration order is random; deliver in subscription order.
	for i := 0; i < b.next; i++ {
		if fn, ok := b.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}
