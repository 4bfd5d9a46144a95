package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dinheiro/ledger"
)

const definitionColumns = `id, description, amount, currency, category, category_id,
 tag_ids, from_type, from_id, to_type, to_id, frequency, start_date, end_date, occurrences`

// GetDefinition returns the definition with the given id.
func (s *Store) GetDefinition(ctx context.Context, id string) (ledger.RecurringDefinition, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+definitionColumns+" FROM definitions WHERE id = ?", id)
	d, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return d, fmt.Errorf("definition %s: %w", id, ledger.ErrNotFound)
	}
	return d, err
}

// ListDefinitions returns every recurring definition.
func (s *Store) ListDefinitions(ctx context.Context) ([]ledger.RecurringDefinition, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+definitionColumns+" FROM definitions ORDER BY start_date ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []ledger.RecurringDefinition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// SaveDefinition inserts the definition, or replaces it when the id exists.
func (s *Store) SaveDefinition(ctx context.Context, d ledger.RecurringDefinition) error {
	fromType, fromID := refColumns(d.From)
	toType, toID := refColumns(d.To)
	tagIDs, err := encodeTags(d.TagIDs)
	if err != nil {
		return err
	}
	endDate := ""
	if !d.EndDate.IsZero() {
		endDate = d.EndDate.String()
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO definitions(`+definitionColumns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		d.ID, d.Description,
		d.Amount.Decimal().String(), d.Amount.Currency(),
		string(d.Category), d.CategoryID, tagIDs,
		fromType, fromID, toType, toID,
		d.Frequency.String(), d.StartDate.String(), endDate, d.Occurrences)
	return err
}

// DeleteDefinition removes the definition and, through the foreign key
// cascade, its occurrences.
func (s *Store) DeleteDefinition(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM definitions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireHit(res, "definition", id)
}

// ListOccurrences returns the occurrences of one definition, date-ordered.
func (s *Store) ListOccurrences(ctx context.Context, definitionID string) ([]ledger.Occurrence, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, definition_id, scheduled_date, amount, currency, status, notes
	FROM occurrences WHERE definition_id = ?
	ORDER BY scheduled_date ASC, id ASC`, definitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var occs []ledger.Occurrence
	for rows.Next() {
		var o ledger.Occurrence
		var amount, currency, date, status string
		var notes sql.NullString
		if err := rows.Scan(&o.ID, &o.DefinitionID, &date, &amount, &currency, &status, &notes); err != nil {
			return nil, err
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount for occurrence %s: %w", o.ID, err)
		}
		o.Amount = ledger.M(value, currency)
		o.ScheduledDate, err = ledger.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("corrupt date for occurrence %s: %w", o.ID, err)
		}
		o.Status, err = ledger.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("corrupt status for occurrence %s: %w", o.ID, err)
		}
		o.Notes = notes.String
		occs = append(occs, o)
	}
	return occs, rows.Err()
}

// CreateOccurrence inserts the occurrence.
func (s *Store) CreateOccurrence(ctx context.Context, o ledger.Occurrence) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO occurrences(id, definition_id, scheduled_date, amount, currency, status, notes)
	VALUES(?, ?, ?, ?, ?, ?, ?);
	`,
		o.ID, o.DefinitionID, o.ScheduledDate.String(),
		o.Amount.Decimal().String(), o.Amount.Currency(),
		string(o.Status), o.Notes)
	return err
}

// MutateOccurrence applies the partial update to the occurrence with the
// given id.
func (s *Store) MutateOccurrence(ctx context.Context, id string, mut ledger.OccurrenceMutation) error {
	var set []string
	var args []any

	if mut.ScheduledDate != nil {
		set = append(set, "scheduled_date = ?")
		args = append(args, mut.ScheduledDate.String())
	}
	if mut.Amount != nil {
		set = append(set, "amount = ?", "currency = ?")
		args = append(args, mut.Amount.Decimal().String(), mut.Amount.Currency())
	}
	if mut.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*mut.Status))
	}
	if mut.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, *mut.Notes)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, "UPDATE occurrences SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	return requireHit(res, "occurrence", id)
}

// DeleteOccurrence removes the occurrence with the given id.
func (s *Store) DeleteOccurrence(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM occurrences WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireHit(res, "occurrence", id)
}

func scanDefinition(row rowScanner) (ledger.RecurringDefinition, error) {
	var d ledger.RecurringDefinition
	var description, categoryID, tagIDs, endDate sql.NullString
	var fromType, fromID, toType, toID sql.NullString
	var amount, currency, category, frequency, startDate string

	err := row.Scan(&d.ID, &description, &amount, &currency, &category, &categoryID,
		&tagIDs, &fromType, &fromID, &toType, &toID, &frequency, &startDate, &endDate, &d.Occurrences)
	if err != nil {
		return d, err
	}

	d.Description = description.String
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return d, fmt.Errorf("corrupt amount for definition %s: %w", d.ID, err)
	}
	d.Amount = ledger.M(value, currency)
	d.Category = ledger.Category(category)
	d.CategoryID = categoryID.String
	d.TagIDs, err = decodeTags(tagIDs.String)
	if err != nil {
		return d, fmt.Errorf("corrupt tags for definition %s: %w", d.ID, err)
	}
	d.From = refFromColumns(fromType, fromID)
	d.To = refFromColumns(toType, toID)
	d.Frequency, err = ledger.ParseFrequency(frequency)
	if err != nil {
		return d, fmt.Errorf("corrupt frequency for definition %s: %w", d.ID, err)
	}
	d.StartDate, err = ledger.ParseDate(startDate)
	if err != nil {
		return d, fmt.Errorf("corrupt start date for definition %s: %w", d.ID, err)
	}
	if endDate.String != "" {
		d.EndDate, err = ledger.ParseDate(endDate.String)
		if err != nil {
			return d, fmt.Errorf("corrupt end date for definition %s: %w", d.ID, err)
		}
	}
	return d, nil
}
