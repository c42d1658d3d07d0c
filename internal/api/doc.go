// Package api provides a signed Kalshi REST client.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// Every request is signed over its own method and path (base URL and query
// string excluded) and issued exactly once. Non-2xx responses from Do and the
// verb helpers are returned to the caller unchanged; typed helpers such as
// ListMarkets turn them into *APIError.
package api
