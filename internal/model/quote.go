package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrPriceOutOfRange is returned when a buy price is not strictly inside (0, 1).
var ErrPriceOutOfRange = errors.New("price out of range (0, 1)")

var one = decimal.NewFromInt(1)

// MarketQuote is a normalized snapshot of one binary market.
type MarketQuote struct {
	Platform string `json:"platform"`  // Source exchange (e.g., "kalshi")
	MarketID string `json:"market_id"` // Exchange-local identifier
	Question string `json:"question"`  // Human-readable title

	// Best available buy prices, 0 < p < 1
	YesBuy decimal.Decimal `json:"yes_buy"`
	NoBuy  decimal.Decimal `json:"no_buy"`

	// Best available sell prices, nil when the exchange has no bid
	YesSell *decimal.Decimal `json:"yes_sell,omitempty"`
	NoSell  *decimal.Decimal `json:"no_sell,omitempty"`

	// Raw exchange payload, kept for diagnostics only
	Extra map[string]any `json:"extra,omitempty"`
}

// NewMarketQuote builds a quote, rejecting buy prices outside (0, 1).
func NewMarketQuote(platform, marketID, question string, yesBuy, noBuy decimal.Decimal) (MarketQuote, error) {
	if !InUnitInterval(yesBuy) {
		return MarketQuote{}, fmt.Errorf("yes_buy %s: %w", yesBuy, ErrPriceOutOfRange)
	}
	if !InUnitInterval(noBuy) {
		return MarketQuote{}, fmt.Errorf("no_buy %s: %w", noBuy, ErrPriceOutOfRange)
	}

	return MarketQuote{
		Platform: platform,
		MarketID: marketID,
		Question: question,
		YesBuy:   yesBuy,
		NoBuy:    noBuy,
	}, nil
}

// InUnitInterval reports whether 0 < p < 1.
func InUnitInterval(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(one)
}
