package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AccountType identifies the kind of account a posting leg points at.
type AccountType string

const (
	BankAccount       AccountType = "bank_account"
	CreditCard        AccountType = "credit_card"
	InvestmentAccount AccountType = "investment_account"
)

// AccountRef identifies one leg of a posting. A posting may have zero, one or
// two of them: unassigned movements, one-sided cross-currency legs, and plain
// transfers respectively.
type AccountRef struct {
	Type AccountType `json:"type"`
	ID   string      `json:"id"`
}

// Is reports whether the reference points at the account with the given id.
func (a *AccountRef) Is(accountID string) bool { return a != nil && a.ID == accountID }

// Status is the lifecycle state of a posting or occurrence.
//
// The settled balance only counts effective statuses; pending statuses feed
// the projected balance; cancelled postings never count.
type Status string

const (
	Pending    Status = "pending"
	Scheduled  Status = "scheduled"
	Processed  Status = "processed"
	Reconciled Status = "reconciled"
	Cancelled  Status = "cancelled"
)

// transitions is the named transition table of the status machine:
// pending → scheduled → processed → reconciled, with cancelled reachable from
// any non-terminal state.
var transitions = map[Status][]Status{
	Pending:   {Scheduled, Cancelled},
	Scheduled: {Processed, Cancelled},
	Processed: {Reconciled, Cancelled},
}

// CanTransitionTo reports whether the status machine allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// IsEffective reports whether the status counts toward the settled balance.
func (s Status) IsEffective() bool { return s == Processed || s == Reconciled }

// IsPending reports whether the status counts toward the projected balance only.
func (s Status) IsPending() bool { return s == Pending || s == Scheduled }

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool { return s == Reconciled || s == Cancelled }

// ParseStatus parses a string into a Status. The legacy "failed" state is
// folded into cancelled: stored data may still carry it, reports never count it.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "pending":
		return Pending, nil
	case "scheduled":
		return Scheduled, nil
	case "processed":
		return Processed, nil
	case "reconciled":
		return Reconciled, nil
	case "cancelled", "failed":
		return Cancelled, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Category classifies the economic nature of a posting.
type Category string

const (
	CategoryExpense      Category = "expense"
	CategoryIncome       Category = "income"
	CategoryTransfer     Category = "transfer"
	CategoryBill         Category = "bill"
	CategorySubscription Category = "subscription"
	CategoryLoan         Category = "loan"
	CategoryOther        Category = "other"
)

// PaymentType distinguishes one-off postings from materialized occurrences of
// a recurring definition.
type PaymentType string

const (
	OneTime   PaymentType = "one_time"
	Recurring PaymentType = "recurring"
)

// Posting is a single recorded money movement between zero, one, or two
// accounts.
//
// The amount is always stored unsigned; the sign is derived at read time
// relative to a viewing account (see SignedAmount).
type Posting struct {
	ID          string      `json:"id"`
	From        *AccountRef `json:"from,omitempty"`
	To          *AccountRef `json:"to,omitempty"`
	Amount      Money       `json:"-"`
	Date        Date        `json:"date"`
	Status      Status      `json:"status"`
	Category    Category    `json:"category"`
	CategoryID  string      `json:"categoryId,omitempty"`
	TagIDs      []string    `json:"tagIds,omitempty"`
	Description string      `json:"description,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	PaymentType PaymentType `json:"paymentType"`

	// Sale carries realized P&L metadata for investment sale movements, Link
	// correlates cross-currency transfer legs, and Schedule marks postings
	// produced by an investment schedule. All three are serialized into the
	// Notes token format only at the storage boundary.
	Sale     *SaleMetadata `json:"-"`
	Link     *TransferLink `json:"-"`
	Schedule bool          `json:"-"`
}

// Touches reports whether the posting references the account on either leg.
func (p Posting) Touches(accountID string) bool {
	return p.From.Is(accountID) || p.To.Is(accountID)
}

// postingJSON is the wire shape of a Posting: the amount is split into two
// fields, and sale metadata is folded into the notes token format.
type postingJSON struct {
	ID          string          `json:"id"`
	From        *AccountRef     `json:"from,omitempty"`
	To          *AccountRef     `json:"to,omitempty"`
	Amount      json.RawMessage `json:"amount"`
	Currency    string          `json:"currency"`
	Date        Date            `json:"date"`
	Status      Status          `json:"status"`
	Category    Category        `json:"category"`
	CategoryID  string          `json:"categoryId,omitempty"`
	TagIDs      []string        `json:"tagIds,omitempty"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	PaymentType PaymentType     `json:"paymentType"`
}

// MarshalJSON implements the json.Marshaler interface for Posting.
func (p Posting) MarshalJSON() ([]byte, error) {
	amount, err := p.Amount.Decimal().MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(postingJSON{
		ID:          p.ID,
		From:        p.From,
		To:          p.To,
		Amount:      amount,
		Currency:    p.Amount.Currency(),
		Date:        p.Date,
		Status:      p.Status,
		Category:    p.Category,
		CategoryID:  p.CategoryID,
		TagIDs:      p.TagIDs,
		Description: p.Description,
		Notes:       EncodeNotes(p.Notes, p.Sale, p.Link, p.Schedule),
		PaymentType: p.PaymentType,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface for Posting.
func (p *Posting) UnmarshalJSON(data []byte) error {
	var temp postingJSON
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	amount := M(0, temp.Currency).Decimal()
	if len(temp.Amount) > 0 {
		if err := amount.UnmarshalJSON(temp.Amount); err != nil {
			return fmt.Errorf("invalid amount for posting %q: %w", temp.ID, err)
		}
	}
	p.ID = temp.ID
	p.From = temp.From
	p.To = temp.To
	p.Amount = M(amount, temp.Currency)
	p.Date = temp.Date
	p.Status = temp.Status
	p.Category = temp.Category
	p.CategoryID = temp.CategoryID
	p.TagIDs = temp.TagIDs
	p.Description = temp.Description
	p.PaymentType = temp.PaymentType

	tags := ParseNoteTags(temp.Notes)
	p.Notes = tags.FreeText
	p.Sale = tags.Sale
	p.Link = tags.Link
	p.Schedule = tags.Schedule
	return nil
}
