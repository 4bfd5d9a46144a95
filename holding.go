package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// AssetType classifies what a holding is.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetETF    AssetType = "etf"
	AssetFund   AssetType = "fund"
	AssetCrypto AssetType = "crypto"
	AssetBond   AssetType = "bond"
	AssetOther  AssetType = "other"
)

// Holding is one independently tracked quantity/cost-basis record (a lot).
// Under the Independent policy, repeated buys of the same symbol create
// separate rows rather than merging into a weighted-average position.
type Holding struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	Symbol       string    `json:"symbol"`
	AssetType    AssetType `json:"assetType"`
	Quantity     Quantity  `json:"quantity"`
	AverageCost  Money     `json:"-"` // per-unit
	CurrentPrice Money     `json:"-"` // per-unit, zero when never quoted
}

// CurrentValue derives the market value: quantity times the current price,
// falling back on the average cost when no price was ever recorded.
func (h Holding) CurrentValue() Money {
	price := h.CurrentPrice
	if price.IsZero() {
		price = h.AverageCost
	}
	return price.Mul(h.Quantity)
}

// LotPolicy defines how a buy interacts with existing holdings of the same
// symbol.
type LotPolicy int

const (
	// Independent keeps every buy as its own lot, preserving per-lot cost
	// basis for lot-specific tax treatment.
	Independent LotPolicy = iota
	// WeightedAverage merges a buy into the existing position, recomputing
	// the average cost over the combined quantity.
	WeightedAverage
)

func (p LotPolicy) String() string {
	switch p {
	case Independent:
		return "independent"
	case WeightedAverage:
		return "weighted-average"
	default:
		return "unknown"
	}
}

// ParseLotPolicy parses a string into a LotPolicy.
func ParseLotPolicy(s string) (LotPolicy, error) {
	switch s {
	case "independent":
		return Independent, nil
	case "weighted-average", "weighted_average", "average":
		return WeightedAverage, nil
	default:
		return 0, fmt.Errorf("unknown lot policy: %q", s)
	}
}

// SaleResult is the computed outcome of selling part or all of a lot: the
// updated holding (nil when the lot is fully liquidated and must be deleted),
// the cash movement posting carrying the realized P&L metadata, and the
// metadata itself.
type SaleResult struct {
	Holding  *Holding
	Movement Posting
	Metadata SaleMetadata
}

// Sell computes the realized profit of selling quantity units of a lot at
// unitPrice, net of the tax withheld at sale time.
//
//	principal = quantity × average cost
//	gross     = quantity × unit price
//	profit    = gross − principal − tax
//	proceeds  = max(0, gross − tax)
//
// The proceeds move from the investment account to the destination account;
// the remaining lot is repriced at the sale price.
func Sell(h Holding, quantity Quantity, unitPrice Money, paidTax Money, dest AccountRef, on Date) (SaleResult, error) {
	if !quantity.IsPositive() {
		return SaleResult{}, invalidf("sell quantity must be positive, got %s", quantity)
	}
	if quantity.GreaterThan(h.Quantity) {
		return SaleResult{}, invalidf("cannot sell %s of %s, lot holds only %s", quantity, h.Symbol, h.Quantity)
	}
	if !unitPrice.IsPositive() {
		return SaleResult{}, invalidf("sell unit price must be positive, got %s", unitPrice)
	}
	if paidTax.IsNegative() {
		return SaleResult{}, invalidf("paid tax cannot be negative, got %s", paidTax)
	}
	if dest.ID == "" {
		return SaleResult{}, invalidf("sell requires a destination account")
	}

	principal := h.AverageCost.Mul(quantity)
	gross := unitPrice.Mul(quantity)
	profit := gross.Sub(principal).Sub(paidTax)
	proceeds := gross.Sub(paidTax)
	if proceeds.IsNegative() {
		proceeds = M(0, gross.Currency())
	}

	meta := SaleMetadata{
		Symbol:    h.Symbol,
		AssetType: string(h.AssetType),
		Quantity:  quantity,
		Principal: principal.Decimal(),
		Gross:     gross.Decimal(),
		Tax:       paidTax.Decimal(),
		Profit:    profit.Decimal(),
	}

	result := SaleResult{
		Metadata: meta,
		Movement: Posting{
			ID:          uuid.NewString(),
			From:        &AccountRef{Type: InvestmentAccount, ID: h.AccountID},
			To:          &dest,
			Amount:      proceeds,
			Date:        on,
			Status:      Processed,
			Category:    CategoryTransfer,
			Description: fmt.Sprintf("Sell %s %s", quantity, h.Symbol),
			PaymentType: OneTime,
			Sale:        &meta,
		},
	}

	remaining := h.Quantity.Sub(quantity)
	if remaining.IsPositive() {
		h.Quantity = remaining
		h.CurrentPrice = unitPrice
		result.Holding = &h
	}
	return result, nil
}

// PurchaseResult is the computed outcome of a buy: the holding to create or
// update, whether it merged into an existing row, and the cash movement
// debiting the funding account.
type PurchaseResult struct {
	Holding  Holding
	Merged   bool
	Movement Posting
}

// Buy acquires quantity units at unitPrice. Under Independent (the legacy
// behavior) it creates a brand new lot; under WeightedAverage it merges into
// an existing holding of the same symbol, recomputing the average cost.
func Buy(policy LotPolicy, existing []Holding, accountID, symbol string, assetType AssetType, quantity Quantity, unitPrice Money, funding AccountRef, on Date) (PurchaseResult, error) {
	if !quantity.IsPositive() {
		return PurchaseResult{}, invalidf("buy quantity must be positive, got %s", quantity)
	}
	if !unitPrice.IsPositive() {
		return PurchaseResult{}, invalidf("buy unit price must be positive, got %s", unitPrice)
	}
	if funding.ID == "" {
		return PurchaseResult{}, invalidf("buy requires a funding account")
	}

	cost := unitPrice.Mul(quantity)
	movement := Posting{
		ID:          uuid.NewString(),
		From:        &funding,
		To:          &AccountRef{Type: InvestmentAccount, ID: accountID},
		Amount:      cost,
		Date:        on,
		Status:      Processed,
		Category:    CategoryTransfer,
		Description: fmt.Sprintf("Buy %s %s", quantity, symbol),
		PaymentType: OneTime,
	}

	if policy == WeightedAverage {
		for _, h := range existing {
			if h.AccountID != accountID || h.Symbol != symbol {
				continue
			}
			total := h.Quantity.Add(quantity)
			h.AverageCost = h.AverageCost.Mul(h.Quantity).Add(cost).Div(total)
			h.Quantity = total
			h.CurrentPrice = unitPrice
			return PurchaseResult{Holding: h, Merged: true, Movement: movement}, nil
		}
	}

	return PurchaseResult{
		Holding: Holding{
			ID:           uuid.NewString(),
			AccountID:    accountID,
			Symbol:       symbol,
			AssetType:    assetType,
			Quantity:     quantity,
			AverageCost:  unitPrice,
			CurrentPrice: unitPrice,
		},
		Movement: movement,
	}, nil
}

// AccountValue totals the current value of an account's holdings.
func AccountValue(holdings []Holding, accountID string) Money {
	var total Money
	for _, h := range holdings {
		if h.AccountID == accountID {
			total = total.Add(h.CurrentValue())
		}
	}
	return total
}

// ValueSnapshot is one point of an investment account's value history,
// recorded whenever the account value is refreshed.
type ValueSnapshot struct {
	AccountID string `json:"accountId"`
	Date      Date   `json:"date"`
	Value     Money  `json:"-"`
}
