package ledger

import (
	"context"
	"fmt"
	"log"
)

// PriceSource yields the latest known unit price for a symbol, in the
// holding's own currency.
type PriceSource interface {
	Latest(symbol string) (float64, error)
}

// RefreshHoldings updates the current price of every holding in the account
// from the source, appends a value snapshot for the day, and publishes a
// holdings-changed event. Symbols the source cannot price keep their previous
// price.
func RefreshHoldings(ctx context.Context, store HoldingStore, src PriceSource, bus *Bus, accountID string, on Date) (Money, error) {
	holdings, err := store.ListHoldings(ctx, accountID)
	if err != nil {
		return Money{}, err
	}
	if len(holdings) == 0 {
		return Money{}, fmt.Errorf("account %s has no holdings: %w", accountID, ErrNotFound)
	}

	for i, h := range holdings {
		price, err := src.Latest(h.Symbol)
		if err != nil {
			log.Printf("refresh %s: keeping previous price for %s: %v", accountID, h.Symbol, err)
			continue
		}
		h.CurrentPrice = M(price, h.AverageCost.Currency())
		if err := store.SaveHolding(ctx, h); err != nil {
			return Money{}, fmt.Errorf("saving holding %s: %w", h.ID, err)
		}
		holdings[i] = h
	}

	value := AccountValue(holdings, accountID)
	if err := store.AppendSnapshot(ctx, ValueSnapshot{AccountID: accountID, Date: on, Value: value}); err != nil {
		return Money{}, err
	}
	if bus != nil {
		bus.Publish(Event{Kind: HoldingsChanged, AccountID: accountID})
	}
	return value, nil
}
