// Package quotes fetches latest prices for investment holdings.
package quotes

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Provider returns the latest known unit price for a symbol.
type Provider interface {
	Latest(symbol string) (float64, error)
}

// Tradegate fetches latest traded prices from the Tradegate exchange. Prices
// come back in EUR. The zero value uses a plain http client; use NewTradegate
// for the daily-cached one.
type Tradegate struct {
	Client *http.Client
}

// NewTradegate returns a provider backed by the daily disk-cached client.
func NewTradegate() *Tradegate {
	return &Tradegate{Client: Daily()}
}

func (t *Tradegate) client() *http.Client {
	if t.Client == nil {
		return new(http.Client)
	}
	return t.Client
}

// Latest returns the last traded price for the instrument with the given
// ISIN, falling back to the bid when the last trade is empty.
func (t *Tradegate) Latest(isin string) (float64, error) {
	addr := "https://www.tradegate.de/refresh.php?isin=" + isin

	var jobj map[string]any
	if err := jwget(t.client(), addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error retrieving %q: %w", isin, err)
	}
	// last is the last transaction, moves slower than the bid, but the bid can be 0.
	jval := jobj["last"]
	if s, ok := jval.(string); ok && s == "./." {
		// trade gate show's empty last this way, use the bid instead
		log.Println("'last' is empty, falling back to 'bid'")
		jval = jobj["bid"]
	}
	val, ok := jval.(float64)
	if !ok {
		// sometimes, this weird API returns the value as a string
		sval, ok := jval.(string)
		if !ok {
			return math.NaN(), fmt.Errorf("cannot read value for %q: neither a float nor a string", isin)
		}
		sval = strings.ReplaceAll(sval, ",", ".")
		sval = strings.ReplaceAll(sval, " ", "")
		var err error
		val, err = strconv.ParseFloat(sval, 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("cannot read value for %q: invalid string %q: %w", isin, sval, err)
		}
	}
	if val == 0 {
		// sometimes the bid is empty and returns 0
		return math.NaN(), fmt.Errorf("empty bid for %s: no value to return", isin)
	}
	return val, nil
}

// LatestEURperUSD returns the latest EUR/USD rate from the LS exchange feed.
func (t *Tradegate) LatestEURperUSD() (float64, error) {
	addr := "https://www.ls-tc.de/_rpc/json/instrument/chart/dataForInstrument?instrumentId=349938&series=intraday&type=mini"
	var jobj any
	if err := jwget(t.client(), addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error in wget %q: %w", "EUR/USD", err)
	}
	path := "$.series.intraday.data[-1:][1]"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error parsing %q: %q %w", "EUR/USD", path, err)
	}
	// jsonpath is never clear about whether it returns a list of 1 answer or a
	// single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("error parsing %q: %q not a float: %v", "EUR/USD", path, jval)
	}
	return val, nil
}
