package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-quotes/internal/model"
)

// SkipReason tells why a market produced no quote.
type SkipReason int

const (
	SkipNone   SkipReason = iota
	SkipStatus            // closed, settled or cancelled
	SkipPrice             // missing or out-of-range buy price
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipStatus:
		return "status"
	case SkipPrice:
		return "price"
	default:
		return "unknown"
	}
}

// inactiveStatuses are excluded regardless of prices.
var inactiveStatuses = map[string]bool{
	"closed":    true,
	"settled":   true,
	"cancelled": true,
}

var hundred = decimal.NewFromInt(100)

// Prices is the reconciled price set of one market, in 0-1 decimals.
// A nil field is unavailable.
type Prices struct {
	YesBuy  *decimal.Decimal
	NoBuy   *decimal.Decimal
	YesSell *decimal.Decimal
	NoSell  *decimal.Decimal
}

// ReconcilePrices derives buy and sell prices from the cent fields of m.
//
//	yes_buy:  yes_ask, else last_price
//	no_buy:   no_ask,  else 100 - last_price
//	yes_sell: yes_bid
//	no_sell:  no_bid
//
// Only numbers > 0 count as present.
func ReconcilePrices(m model.RawMarket) Prices {
	var p Prices

	last, hasLast := m.PositiveNumber("last_price")

	if ask, ok := m.PositiveNumber("yes_ask"); ok {
		p.YesBuy = fromCents(ask)
	} else if hasLast {
		p.YesBuy = fromCents(last)
	}

	// Assumes last_price is the YES price.
	if ask, ok := m.PositiveNumber("no_ask"); ok {
		p.NoBuy = fromCents(ask)
	} else if hasLast {
		p.NoBuy = fromCents(hundred.Sub(last))
	}

	if bid, ok := m.PositiveNumber("yes_bid"); ok {
		p.YesSell = fromCents(bid)
	}
	if bid, ok := m.PositiveNumber("no_bid"); ok {
		p.NoSell = fromCents(bid)
	}

	return p
}

func fromCents(c decimal.Decimal) *decimal.Decimal {
	d := c.Div(hundred)
	return &d
}

// Normalize converts one raw market into a quote for platform.
// The reason is SkipNone exactly when the quote is usable.
func Normalize(platform string, m model.RawMarket) (model.MarketQuote, SkipReason) {
	if inactiveStatuses[m.Status()] {
		return model.MarketQuote{}, SkipStatus
	}

	p := ReconcilePrices(m)
	if p.YesBuy == nil || p.NoBuy == nil {
		return model.MarketQuote{}, SkipPrice
	}

	q, err := model.NewMarketQuote(
		platform,
		m.FirstID("ticker", "market_id"),
		m.FirstString("title", "question", "subtitle"),
		*p.YesBuy,
		*p.NoBuy,
	)
	if err != nil {
		return model.MarketQuote{}, SkipPrice
	}

	q.YesSell = p.YesSell
	q.NoSell = p.NoSell
	q.Extra = map[string]any{"raw": map[string]any(m)}

	return q, SkipNone
}
