package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// This file handles the import/export format: a JSONL stream where each line
// is a JSON object with a "kind" discriminator. It should remain human
// readable, single file and easy to merge back into a database.

// amountJSON reads and writes a Money split into two fields.
type amountJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountJSON) Money() Money { return M(a.Amount, a.Currency) }

func splitMoney(m Money) amountJSON {
	return amountJSON{Amount: m.Decimal(), Currency: m.Currency()}
}

// MarshalJSON implements the json.Marshaler interface for RecurringDefinition.
func (d RecurringDefinition) MarshalJSON() ([]byte, error) {
	type alias RecurringDefinition
	return json.Marshal(struct {
		alias
		amountJSON
	}{alias(d), splitMoney(d.Amount)})
}

// UnmarshalJSON implements the json.Unmarshaler interface for RecurringDefinition.
func (d *RecurringDefinition) UnmarshalJSON(data []byte) error {
	type alias RecurringDefinition
	var temp struct {
		alias
		amountJSON
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*d = RecurringDefinition(temp.alias)
	d.Amount = temp.Money()
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Occurrence.
func (o Occurrence) MarshalJSON() ([]byte, error) {
	type alias Occurrence
	return json.Marshal(struct {
		alias
		amountJSON
	}{alias(o), splitMoney(o.Amount)})
}

// UnmarshalJSON implements the json.Unmarshaler interface for Occurrence.
func (o *Occurrence) UnmarshalJSON(data []byte) error {
	type alias Occurrence
	var temp struct {
		alias
		amountJSON
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*o = Occurrence(temp.alias)
	o.Amount = temp.Money()
	return nil
}

// holdingJSON is the wire shape of a Holding: the two per-unit prices share
// one currency field.
type holdingJSON struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	Symbol       string          `json:"symbol"`
	AssetType    AssetType       `json:"assetType"`
	Quantity     Quantity        `json:"quantity"`
	AverageCost  decimal.Decimal `json:"averageCost"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Currency     string          `json:"currency"`
}

// MarshalJSON implements the json.Marshaler interface for Holding.
func (h Holding) MarshalJSON() ([]byte, error) {
	cur := h.AverageCost.Currency()
	if cur == "" {
		cur = h.CurrentPrice.Currency()
	}
	return json.Marshal(holdingJSON{
		ID:           h.ID,
		AccountID:    h.AccountID,
		Symbol:       h.Symbol,
		AssetType:    h.AssetType,
		Quantity:     h.Quantity,
		AverageCost:  h.AverageCost.Decimal(),
		CurrentPrice: h.CurrentPrice.Decimal(),
		Currency:     cur,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface for Holding.
func (h *Holding) UnmarshalJSON(data []byte) error {
	var temp holdingJSON
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	h.ID = temp.ID
	h.AccountID = temp.AccountID
	h.Symbol = temp.Symbol
	h.AssetType = temp.AssetType
	h.Quantity = temp.Quantity
	h.AverageCost = M(temp.AverageCost, temp.Currency)
	h.CurrentPrice = M(temp.CurrentPrice, temp.Currency)
	return nil
}

// MarshalJSON implements the json.Marshaler interface for ValueSnapshot.
func (s ValueSnapshot) MarshalJSON() ([]byte, error) {
	type alias ValueSnapshot
	return json.Marshal(struct {
		alias
		Value    decimal.Decimal `json:"value"`
		Currency string          `json:"currency"`
	}{alias(s), s.Value.Decimal(), s.Value.Currency()})
}

// UnmarshalJSON implements the json.Unmarshaler interface for ValueSnapshot.
func (s *ValueSnapshot) UnmarshalJSON(data []byte) error {
	type alias ValueSnapshot
	var temp struct {
		alias
		Value    decimal.Decimal `json:"value"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*s = ValueSnapshot(temp.alias)
	s.Value = M(temp.Value, temp.Currency)
	return nil
}

// RecordKind discriminates the record types in the import/export stream.
type RecordKind string

const (
	KindPosting    RecordKind = "posting"
	KindDefinition RecordKind = "definition"
	KindOccurrence RecordKind = "occurrence"
	KindHolding    RecordKind = "holding"
)

// Archive is a fully decoded import/export stream.
type Archive struct {
	Postings    []Posting
	Definitions []RecurringDefinition
	Occurrences []Occurrence
	Holdings    []Holding
}

type record struct {
	Kind RecordKind      `json:"kind"`
	Body json.RawMessage `json:"body"`
}

// EncodeArchive writes the archive to w, one record per line, postings first.
func EncodeArchive(w io.Writer, a Archive) error {
	write := func(kind RecordKind, v any) error {
		body, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cannot marshal %s record: %w", kind, err)
		}
		line, err := json.Marshal(record{Kind: kind, Body: body})
		if err != nil {
			return err
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
		return nil
	}
	for _, p := range a.Postings {
		if err := write(KindPosting, p); err != nil {
			return err
		}
	}
	for _, d := range a.Definitions {
		if err := write(KindDefinition, d); err != nil {
			return err
		}
	}
	for _, o := range a.Occurrences {
		if err := write(KindOccurrence, o); err != nil {
			return err
		}
	}
	for _, h := range a.Holdings {
		if err := write(KindHolding, h); err != nil {
			return err
		}
	}
	return nil
}

// DecodeArchive reads a JSONL stream from r and decodes each line into the
// appropriate record type. Empty lines are skipped.
func DecodeArchive(r io.Reader) (Archive, error) {
	var a Archive
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return a, fmt.Errorf("cannot parse line for import format: %q: %w", string(line), err)
		}
		switch rec.Kind {
		case KindPosting:
			var p Posting
			if err := json.Unmarshal(rec.Body, &p); err != nil {
				return a, fmt.Errorf("cannot parse posting record: %w", err)
			}
			a.Postings = append(a.Postings, p)
		case KindDefinition:
			var d RecurringDefinition
			if err := json.Unmarshal(rec.Body, &d); err != nil {
				return a, fmt.Errorf("cannot parse definition record: %w", err)
			}
			a.Definitions = append(a.Definitions, d)
		case KindOccurrence:
			var o Occurrence
			if err := json.Unmarshal(rec.Body, &o); err != nil {
				return a, fmt.Errorf("cannot parse occurrence record: %w", err)
			}
			a.Occurrences = append(a.Occurrences, o)
		case KindHolding:
			var h Holding
			if err := json.Unmarshal(rec.Body, &h); err != nil {
				return a, fmt.Errorf("cannot parse holding record: %w", err)
			}
			a.Holdings = append(a.Holdings, h)
		default:
			return a, fmt.Errorf("unknown record kind %q", rec.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return a, err
	}
	return a, nil
}

// Export reads everything from the store and writes it to w.
func Export(ctx context.Context, store Store, w io.Writer) error {
	postings, err := store.ListPostings(ctx, PostingFilter{})
	if err != nil {
		return err
	}
	defs, err := store.ListDefinitions(ctx)
	if err != nil {
		return err
	}
	a := Archive{Postings: postings, Definitions: defs}
	for _, d := range defs {
		occs, err := store.ListOccurrences(ctx, d.ID)
		if err != nil {
			return err
		}
		a.Occurrences = append(a.Occurrences, occs...)
	}
	holdings, err := store.ListHoldings(ctx, "")
	if err != nil {
		return err
	}
	a.Holdings = holdings
	return EncodeArchive(w, a)
}

// Import decodes the stream from r and writes every record into the store.
func Import(ctx context.Context, store Store, r io.Reader) error {
	a, err := DecodeArchive(r)
	if err != nil {
		return err
	}
	for _, p := range a.Postings {
		if err := store.CreatePosting(ctx, p); err != nil {
			return fmt.Errorf("importing posting %s: %w", p.ID, err)
		}
	}
	for _, d := range a.Definitions {
		if err := store.SaveDefinition(ctx, d); err != nil {
			return fmt.Errorf("importing definition %s: %w", d.ID, err)
		}
	}
	for _, o := range a.Occurrences {
		if err := store.CreateOccurrence(ctx, o); err != nil {
			return fmt.Errorf("importing occurrence %s: %w", o.ID, err)
		}
	}
	for _, h := range a.Holdings {
		if err := store.CreateHolding(ctx, h); err != nil {
			return fmt.Errorf("importing holding %s: %w", h.ID, err)
		}
	}
	return nil
}
