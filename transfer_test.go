package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewTransfer(t *testing.T) {
	src := AccountRef{Type: BankAccount, ID: "checking"}
	dst := AccountRef{Type: BankAccount, ID: "savings"}
	on := NewDate(2024, time.June, 1)

	p, err := NewTransfer(src, dst, M(100, "EUR"), on, "monthly savings")
	if err != nil {
		t.Fatalf("NewTransfer() error = %v", err)
	}
	if !p.From.Is("checking") || !p.To.Is("savings") {
		t.Errorf("legs = %v -> %v", p.From, p.To)
	}
	if p.Category != CategoryTransfer || p.Status != Processed {
		t.Errorf("category/status = %s/%s", p.Category, p.Status)
	}
	if !SignedAmount(p, "checking", true).Equal(SignedAmount(p, "savings", true).Neg()) {
		t.Error("same-currency transfer should be antisymmetric")
	}
}

func TestNewTransferValidation(t *testing.T) {
	src := AccountRef{ID: "a"}
	dst := AccountRef{ID: "b"}
	on := Today()

	tests := []struct {
		name string
		err  error
	}{
		{"zero amount", func() error { _, err := NewTransfer(src, dst, M(0, "EUR"), on, ""); return err }()},
		{"negative amount", func() error { _, err := NewTransfer(src, dst, M(-5, "EUR"), on, ""); return err }()},
		{"same account", func() error { _, err := NewTransfer(src, src, M(5, "EUR"), on, ""); return err }()},
		{"missing account", func() error { _, err := NewTransfer(AccountRef{}, dst, M(5, "EUR"), on, ""); return err }()},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", tt.name, tt.err)
		}
	}
}

// USD 100 out, EUR 92 in: exactly two one-sided postings.
func TestNewCrossCurrencyTransfer(t *testing.T) {
	src := AccountRef{Type: BankAccount, ID: "usd-account"}
	dst := AccountRef{Type: BankAccount, ID: "eur-account"}
	on := NewDate(2024, time.June, 1)

	legs, err := NewCrossCurrencyTransfer(src, dst, M(100, "USD"), M(92, "EUR"), on, "fx move")
	if err != nil {
		t.Fatalf("NewCrossCurrencyTransfer() error = %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("len(legs) = %d, want 2", len(legs))
	}

	out, in := legs[0], legs[1]
	if out.To != nil || !out.From.Is("usd-account") {
		t.Errorf("outbound legs = %v -> %v, want one-sided", out.From, out.To)
	}
	if !out.Amount.Equal(M(100, "USD")) {
		t.Errorf("outbound amount = %v, want USD 100", out.Amount)
	}
	if out.Link == nil || out.Link.Direction != TransferOut || out.Link.CounterAccountID != "eur-account" {
		t.Errorf("outbound link = %+v", out.Link)
	}

	if in.From != nil || !in.To.Is("eur-account") {
		t.Errorf("inbound legs = %v -> %v, want one-sided", in.From, in.To)
	}
	if !in.Amount.Equal(M(92, "EUR")) {
		t.Errorf("inbound amount = %v, want EUR 92", in.Amount)
	}
	if in.Link == nil || in.Link.Direction != TransferIn || in.Link.CounterAccountID != "usd-account" {
		t.Errorf("inbound link = %+v", in.Link)
	}
}

func TestFindTransferPeer(t *testing.T) {
	src := AccountRef{Type: BankAccount, ID: "usd-account"}
	dst := AccountRef{Type: BankAccount, ID: "eur-account"}
	legs, err := NewCrossCurrencyTransfer(src, dst, M(100, "USD"), M(92, "EUR"), NewDate(2024, time.June, 1), "")
	if err != nil {
		t.Fatal(err)
	}

	peer, ok := FindTransferPeer(legs, legs[0])
	if !ok || peer.ID != legs[1].ID {
		t.Errorf("peer of outbound = %v, %v", peer.ID, ok)
	}
	peer, ok = FindTransferPeer(legs, legs[1])
	if !ok || peer.ID != legs[0].ID {
		t.Errorf("peer of inbound = %v, %v", peer.ID, ok)
	}

	// an orphaned leg has no peer
	if _, ok := FindTransferPeer(legs[:1], legs[0]); ok {
		t.Error("orphaned outbound leg should have no peer")
	}
}

func TestBatchRun(t *testing.T) {
	var applied []string
	step := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			if err != nil {
				return err
			}
			applied = append(applied, name)
			return nil
		}
	}

	// all steps succeed
	var ok Batch
	ok.Add("one", step("one", nil))
	ok.Add("two", step("two", nil))
	if err := ok.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("applied = %v", applied)
	}

	// first step fails: no partial state
	applied = nil
	var firstFails Batch
	firstFails.Add("one", step("one", fmt.Errorf("boom")))
	firstFails.Add("two", step("two", nil))
	err := firstFails.Run(context.Background())
	if err == nil || errors.Is(err, ErrPartialBatch) {
		t.Errorf("first-step failure = %v, want a plain error", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %v, want none", applied)
	}

	// later step fails: partial state is reported as such
	applied = nil
	var laterFails Batch
	laterFails.Add("one", step("one", nil))
	laterFails.Add("two", step("two", fmt.Errorf("boom")))
	laterFails.Add("three", step("three", nil))
	err = laterFails.Run(context.Background())
	if !errors.Is(err, ErrPartialBatch) {
		t.Errorf("later-step failure = %v, want ErrPartialBatch", err)
	}
	if len(applied) != 1 || applied[0] != "one" {
		t.Errorf("applied = %v, want only the first step", applied)
	}
}

func TestDiffPostings(t *testing.T) {
	before := []Posting{
		{ID: "a", Amount: M(10, "EUR"), Status: Processed},
		{ID: "b", Amount: M(20, "EUR"), Status: Pending},
		{ID: "c", Amount: M(30, "EUR"), Status: Processed},
	}
	after := []Posting{
		{ID: "a", Amount: M(10, "EUR"), Status: Processed},
		{ID: "b", Amount: M(20, "EUR"), Status: Processed}, // mutated
		{ID: "d", Amount: M(40, "EUR"), Status: Processed}, // created
	}

	c := DiffPostings(before, after)
	if len(c.Created) != 1 || c.Created[0] != "d" {
		t.Errorf("Created = %v", c.Created)
	}
	if len(c.Updated) != 1 || c.Updated[0] != "b" {
		t.Errorf("Updated = %v", c.Updated)
	}
	if len(c.Deleted) != 1 || c.Deleted[0] != "c" {
		t.Errorf("Deleted = %v", c.Deleted)
	}

	same := DiffPostings(before, before)
	if !same.IsZero() {
		t.Errorf("identical snapshots diff = %+v", same)
	}
}
