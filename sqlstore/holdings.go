package sqlstore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dinheiro/ledger"
)

// ListHoldings returns the holdings of one account, or every holding when
// accountID is empty.
func (s *Store) ListHoldings(ctx context.Context, accountID string) ([]ledger.Holding, error) {
	query := `SELECT id, account_id, symbol, asset_type, quantity, average_cost, current_price, currency
	FROM holdings`
	var args []any
	if accountID != "" {
		query += " WHERE account_id = ?"
		args = append(args, accountID)
	}
	query += " ORDER BY symbol ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []ledger.Holding
	for rows.Next() {
		var h ledger.Holding
		var quantity, averageCost, currentPrice, currency string
		if err := rows.Scan(&h.ID, &h.AccountID, &h.Symbol, &h.AssetType, &quantity, &averageCost, &currentPrice, &currency); err != nil {
			return nil, err
		}
		q, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("corrupt quantity for holding %s: %w", h.ID, err)
		}
		h.Quantity = ledger.Q(q)
		cost, err := decimal.NewFromString(averageCost)
		if err != nil {
			return nil, fmt.Errorf("corrupt cost for holding %s: %w", h.ID, err)
		}
		h.AverageCost = ledger.M(cost, currency)
		price, err := decimal.NewFromString(currentPrice)
		if err != nil {
			return nil, fmt.Errorf("corrupt price for holding %s: %w", h.ID, err)
		}
		h.CurrentPrice = ledger.M(price, currency)
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// CreateHolding inserts the holding.
func (s *Store) CreateHolding(ctx context.Context, h ledger.Holding) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO holdings(id, account_id, symbol, asset_type, quantity, average_cost, current_price, currency)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`, holdingArgs(h)...)
	return err
}

// SaveHolding replaces the stored holding with the same id.
func (s *Store) SaveHolding(ctx context.Context, h ledger.Holding) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE holdings SET account_id = ?, symbol = ?, asset_type = ?, quantity = ?,
	 average_cost = ?, current_price = ?, currency = ?
	WHERE id = ?`,
		h.AccountID, h.Symbol, string(h.AssetType), h.Quantity.String(),
		h.AverageCost.Decimal().String(), h.CurrentPrice.Decimal().String(), holdingCurrency(h),
		h.ID)
	if err != nil {
		return err
	}
	return requireHit(res, "holding", h.ID)
}

// DeleteHolding removes the holding with the given id.
func (s *Store) DeleteHolding(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireHit(res, "holding", id)
}

// AppendSnapshot records a value snapshot, replacing a same-day entry for the
// account so a refresh is idempotent per day.
func (s *Store) AppendSnapshot(ctx context.Context, snap ledger.ValueSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO value_snapshots(account_id, date, value, currency)
	VALUES(?, ?, ?, ?);
	`, snap.AccountID, snap.Date.String(), snap.Value.Decimal().String(), snap.Value.Currency())
	return err
}

// ListSnapshots returns the value history of one account, oldest first.
func (s *Store) ListSnapshots(ctx context.Context, accountID string) ([]ledger.ValueSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT account_id, date, value, currency FROM value_snapshots
	WHERE account_id = ? ORDER BY date ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []ledger.ValueSnapshot
	for rows.Next() {
		var snap ledger.ValueSnapshot
		var date, value, currency string
		if err := rows.Scan(&snap.AccountID, &date, &value, &currency); err != nil {
			return nil, err
		}
		snap.Date, err = ledger.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("corrupt snapshot date for %s: %w", snap.AccountID, err)
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("corrupt snapshot value for %s: %w", snap.AccountID, err)
		}
		snap.Value = ledger.M(v, currency)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func holdingArgs(h ledger.Holding) []any {
	return []any{
		h.ID, h.AccountID, h.Symbol, string(h.AssetType), h.Quantity.String(),
		h.AverageCost.Decimal().String(), h.CurrentPrice.Decimal().String(), holdingCurrency(h),
	}
}

func holdingCurrency(h ledger.Holding) string {
	if cur := h.AverageCost.Currency(); cur != "" {
		return cur
	}
	return h.CurrentPrice.Currency()
}
