package api

import "github.com/rickgao/kalshi-quotes/internal/model"

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// MarketsResponse from GET /markets
//
// Markets are kept as loose documents; field presence and type vary across
// API versions (cent integers vs. *_dollars strings).
type MarketsResponse struct {
	Markets []model.RawMarket `json:"markets"`
	Cursor  string            `json:"cursor"`
}

// ListMarketsOptions configures a ListMarkets request.
type ListMarketsOptions struct {
	Limit  int
	Offset int
	Status string
}
