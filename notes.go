package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The notes field doubles as a poor man's metadata column: a ";"-delimited
// list of "key=value" tokens appended to free text. The core only handles
// typed values (SaleMetadata, TransferLink); this file is the storage-boundary
// codec for the legacy token format.

const (
	tokenSellMeta  = "investment_sell_meta:"
	tokenCrossOut  = "cross_currency_out"
	tokenCrossIn   = "cross_currency_in"
	tokenSchedule  = "investment_schedule"
	tokenLegacyTax = "sell_tax="
	keyToAccount   = "to_account_id"
	keyFromAccount = "from_account_id"
)

// SaleMetadata is the realized P&L record embedded in an investment sale
// movement, consumed later by tax aggregation.
type SaleMetadata struct {
	Symbol    string
	AssetType string
	Quantity  Quantity
	Principal decimal.Decimal
	Gross     decimal.Decimal
	Tax       decimal.Decimal
	Profit    decimal.Decimal
}

// TransferDirection tells which leg of a cross-currency transfer a posting is.
type TransferDirection string

const (
	TransferOut TransferDirection = "out"
	TransferIn  TransferDirection = "in"
)

// TransferLink correlates the two one-sided legs of a cross-currency
// transfer. CounterAccountID names the account on the other leg.
type TransferLink struct {
	Direction        TransferDirection
	CounterAccountID string
}

// NoteTags is the decoded form of a notes field: the human free text plus
// every reserved token the mini-format defines.
type NoteTags struct {
	FreeText string
	Sale     *SaleMetadata
	Link     *TransferLink
	Schedule bool            // investment_schedule marker
	SellTax  decimal.Decimal // legacy sell_tax= fallback, zero when absent
}

// ParseNoteTags decodes the notes mini-format. It is deliberately tolerant:
// missing numeric tokens default to 0, an absent investment_sell_meta marker
// means "no P&L metadata", and unrecognized segments stay in the free text.
func ParseNoteTags(notes string) NoteTags {
	var tags NoteTags

	// The sell metadata marker consumes the rest of the string: its own
	// key=value pairs are ";"-delimited too.
	if i := strings.Index(notes, tokenSellMeta); i >= 0 {
		tags.Sale = parseSaleMetadata(notes[i+len(tokenSellMeta):])
		notes = notes[:i]
	}

	var free []string
	for _, segment := range strings.Split(notes, ";") {
		segment = strings.TrimSpace(segment)
		switch {
		case segment == "":
		case strings.HasPrefix(segment, tokenCrossOut):
			tags.Link = &TransferLink{
				Direction:        TransferOut,
				CounterAccountID: tokenValue(segment, keyToAccount),
			}
		case strings.HasPrefix(segment, tokenCrossIn):
			tags.Link = &TransferLink{
				Direction:        TransferIn,
				CounterAccountID: tokenValue(segment, keyFromAccount),
			}
		case segment == tokenSchedule:
			tags.Schedule = true
		case strings.HasPrefix(segment, tokenLegacyTax):
			tags.SellTax = parseDecimalToken(segment[len(tokenLegacyTax):])
		default:
			free = append(free, segment)
		}
	}
	tags.FreeText = strings.Join(free, "; ")
	return tags
}

// tokenValue extracts the value of "key=value" inside a space-separated token.
func tokenValue(segment, key string) string {
	for _, field := range strings.Fields(segment) {
		if strings.HasPrefix(field, key+"=") {
			return field[len(key)+1:]
		}
	}
	return ""
}

// parseDecimalToken parses a numeric token, defaulting to 0 on garbage.
func parseDecimalToken(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseSaleMetadata(s string) *SaleMetadata {
	meta := &SaleMetadata{}
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch key {
		case "symbol":
			meta.Symbol = value
		case "asset_type":
			meta.AssetType = value
		case "quantity":
			meta.Quantity = Q(parseDecimalToken(value))
		case "principal":
			meta.Principal = parseDecimalToken(value)
		case "gross":
			meta.Gross = parseDecimalToken(value)
		case "tax":
			meta.Tax = parseDecimalToken(value)
		case "profit":
			meta.Profit = parseDecimalToken(value)
		}
	}
	return meta
}

// Encode serializes the sale metadata into its token form. Money fields use a
// fixed 2-decimal rendering, quantities a fixed 6-decimal one.
func (m SaleMetadata) Encode() string {
	return fmt.Sprintf("%ssymbol=%s;asset_type=%s;quantity=%s;principal=%s;gross=%s;tax=%s;profit=%s",
		tokenSellMeta,
		m.Symbol,
		m.AssetType,
		m.Quantity.Decimal().StringFixed(6),
		m.Principal.StringFixed(2),
		m.Gross.StringFixed(2),
		m.Tax.StringFixed(2),
		m.Profit.StringFixed(2),
	)
}

// Encode serializes the transfer link into its token form.
func (l TransferLink) Encode() string {
	if l.Direction == TransferOut {
		return fmt.Sprintf("%s %s=%s", tokenCrossOut, keyToAccount, l.CounterAccountID)
	}
	return fmt.Sprintf("%s %s=%s", tokenCrossIn, keyFromAccount, l.CounterAccountID)
}

// EncodeNotes re-assembles a notes field from free text and typed values.
// It is the inverse of ParseNoteTags for round-trips through storage.
func EncodeNotes(freeText string, sale *SaleMetadata, link *TransferLink, schedule bool) string {
	parts := make([]string, 0, 4)
	if freeText != "" {
		parts = append(parts, freeText)
	}
	if link != nil {
		parts = append(parts, link.Encode())
	}
	if schedule {
		parts = append(parts, tokenSchedule)
	}
	if sale != nil {
		parts = append(parts, sale.Encode())
	}
	return strings.Join(parts, ";")
}
