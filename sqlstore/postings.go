package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dinheiro/ledger"
)

const postingColumns = `id, from_type, from_id, to_type, to_id, amount, currency,
 date, status, category, category_id, tag_ids, description, notes, payment_type`

// ListPostings returns postings matching the filter, oldest first.
func (s *Store) ListPostings(ctx context.Context, f ledger.PostingFilter) ([]ledger.Posting, error) {
	var where []string
	var args []any

	if f.AccountID != "" {
		where = append(where, "(from_id = ? OR to_id = ?)")
		args = append(args, f.AccountID, f.AccountID)
	}
	if !f.Range.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.Range.From.String())
	}
	if !f.Range.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.Range.To.String())
	}
	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			ph[i] = "?"
			args = append(args, string(st))
		}
		where = append(where, "status IN ("+strings.Join(ph, ", ")+")")
	}

	query := "SELECT " + postingColumns + " FROM postings"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []ledger.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// CreatePosting inserts the posting.
func (s *Store) CreatePosting(ctx context.Context, p ledger.Posting) error {
	fromType, fromID := refColumns(p.From)
	toType, toID := refColumns(p.To)
	tagIDs, err := encodeTags(p.TagIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO postings(`+postingColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		p.ID, fromType, fromID, toType, toID,
		p.Amount.Decimal().String(), p.Amount.Currency(),
		p.Date.String(), string(p.Status), string(p.Category), p.CategoryID,
		tagIDs, p.Description,
		ledger.EncodeNotes(p.Notes, p.Sale, p.Link, p.Schedule),
		string(p.PaymentType))
	return err
}

// MutatePosting applies the partial update to the posting with the given id.
func (s *Store) MutatePosting(ctx context.Context, id string, mut ledger.PostingMutation) error {
	var set []string
	var args []any

	if mut.Date != nil {
		set = append(set, "date = ?")
		args = append(args, mut.Date.String())
	}
	if mut.Amount != nil {
		set = append(set, "amount = ?", "currency = ?")
		args = append(args, mut.Amount.Decimal().String(), mut.Amount.Currency())
	}
	if mut.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*mut.Status))
	}
	if mut.Category != nil {
		set = append(set, "category = ?")
		args = append(args, string(*mut.Category))
	}
	if mut.CategoryID != nil {
		set = append(set, "category_id = ?")
		args = append(args, *mut.CategoryID)
	}
	if mut.TagIDs != nil {
		tagIDs, err := encodeTags(mut.TagIDs)
		if err != nil {
			return err
		}
		set = append(set, "tag_ids = ?")
		args = append(args, tagIDs)
	}
	if mut.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *mut.Description)
	}
	if mut.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, *mut.Notes)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE postings SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	return requireHit(res, "posting", id)
}

// DeletePosting removes the posting with the given id.
func (s *Store) DeletePosting(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM postings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireHit(res, "posting", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (ledger.Posting, error) {
	var p ledger.Posting
	var fromType, fromID, toType, toID, categoryID, tagIDs, description, notes sql.NullString
	var amount, currency, date, status, category, paymentType string

	err := row.Scan(&p.ID, &fromType, &fromID, &toType, &toID, &amount, &currency,
		&date, &status, &category, &categoryID, &tagIDs, &description, &notes, &paymentType)
	if err != nil {
		return p, err
	}

	p.From = refFromColumns(fromType, fromID)
	p.To = refFromColumns(toType, toID)

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return p, fmt.Errorf("corrupt amount for posting %s: %w", p.ID, err)
	}
	p.Amount = ledger.M(value, currency)

	p.Date, err = ledger.ParseDate(date)
	if err != nil {
		return p, fmt.Errorf("corrupt date for posting %s: %w", p.ID, err)
	}
	p.Status, err = ledger.ParseStatus(status)
	if err != nil {
		return p, fmt.Errorf("corrupt status for posting %s: %w", p.ID, err)
	}
	p.Category = ledger.Category(category)
	p.CategoryID = categoryID.String
	p.TagIDs, err = decodeTags(tagIDs.String)
	if err != nil {
		return p, fmt.Errorf("corrupt tags for posting %s: %w", p.ID, err)
	}
	p.Description = description.String
	p.PaymentType = ledger.PaymentType(paymentType)

	tags := ledger.ParseNoteTags(notes.String)
	p.Notes = tags.FreeText
	p.Sale = tags.Sale
	p.Link = tags.Link
	p.Schedule = tags.Schedule
	return p, nil
}

func refColumns(r *ledger.AccountRef) (typ, id any) {
	if r == nil {
		return nil, nil
	}
	return string(r.Type), r.ID
}

func refFromColumns(typ, id sql.NullString) *ledger.AccountRef {
	if !id.Valid || id.String == "" {
		return nil
	}
	return &ledger.AccountRef{Type: ledger.AccountType(typ.String), ID: id.String}
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func requireHit(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ledger.ErrNotFound)
	}
	return nil
}
