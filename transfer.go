package ledger

import (
	"github.com/google/uuid"
)

// Transfers move value between two own accounts. A same-currency transfer is
// a single two-legged posting; a cross-currency transfer is two one-sided
// postings correlated through their transfer links, submitted independently.

// NewTransfer builds the single posting of a same-currency transfer.
func NewTransfer(src, dst AccountRef, amount Money, on Date, description string) (Posting, error) {
	if !amount.IsPositive() {
		return Posting{}, invalidf("transfer amount must be positive, got %s", amount)
	}
	if src.ID == dst.ID {
		return Posting{}, invalidf("transfer source and destination are the same account %s", src.ID)
	}
	if src.ID == "" || dst.ID == "" {
		return Posting{}, invalidf("transfer requires both a source and a destination account")
	}
	return Posting{
		ID:          uuid.NewString(),
		From:        &src,
		To:          &dst,
		Amount:      amount.Abs(),
		Date:        on,
		Status:      Processed,
		Category:    CategoryTransfer,
		Description: description,
		PaymentType: OneTime,
	}, nil
}

// NewCrossCurrencyTransfer builds the two one-sided postings of a
// cross-currency transfer: the outbound leg debits the source in its own
// currency, the inbound leg credits the destination in the received currency.
// Both legs must be submitted; if the second submission fails after the first
// succeeded, the first leg persists as an orphan (see Batch).
func NewCrossCurrencyTransfer(src, dst AccountRef, outbound, inbound Money, on Date, description string) ([]Posting, error) {
	if !outbound.IsPositive() {
		return nil, invalidf("outbound amount must be positive, got %s", outbound)
	}
	if !inbound.IsPositive() {
		return nil, invalidf("inbound amount must be positive, got %s", inbound)
	}
	if src.ID == dst.ID {
		return nil, invalidf("transfer source and destination are the same account %s", src.ID)
	}
	if src.ID == "" || dst.ID == "" {
		return nil, invalidf("transfer requires both a source and a destination account")
	}

	out := Posting{
		ID:          uuid.NewString(),
		From:        &src,
		Amount:      outbound.Abs(),
		Date:        on,
		Status:      Processed,
		Category:    CategoryTransfer,
		Description: description,
		PaymentType: OneTime,
		Link:        &TransferLink{Direction: TransferOut, CounterAccountID: dst.ID},
	}
	in := Posting{
		ID:          uuid.NewString(),
		To:          &dst,
		Amount:      inbound.Abs(),
		Date:        on,
		Status:      Processed,
		Category:    CategoryTransfer,
		Description: description,
		PaymentType: OneTime,
		Link:        &TransferLink{Direction: TransferIn, CounterAccountID: src.ID},
	}
	return []Posting{out, in}, nil
}

// FindTransferPeer returns the posting that is the other leg of a
// cross-currency transfer, matching the link direction, the counter account
// and the date. It returns false when the peer is missing, which is exactly
// the orphaned-leg state a failed second submission leaves behind.
func FindTransferPeer(postings []Posting, leg Posting) (Posting, bool) {
	if leg.Link == nil {
		return Posting{}, false
	}
	want := TransferIn
	if leg.Link.Direction == TransferIn {
		want = TransferOut
	}
	for _, p := range postings {
		if p.ID == leg.ID || p.Link == nil || p.Link.Direction != want || p.Date != leg.Date {
			continue
		}
		switch want {
		case TransferIn:
			if leg.From.Is(p.Link.CounterAccountID) && p.To.Is(leg.Link.CounterAccountID) {
				return p, true
			}
		case TransferOut:
			if leg.To.Is(p.Link.CounterAccountID) && p.From.Is(leg.Link.CounterAccountID) {
				return p, true
			}
		}
	}
	return Posting{}, false
}
