// Package model defines the normalized quote shape produced from exchange data.
//
// Conventions:
//   - Prices: decimal.Decimal probabilities strictly between 0 and 1
//   - Raw exchange prices: integer cents, 0-100
//   - IDs: exchange-local strings (Kalshi tickers)
package model
