// Package quotes turns the Kalshi market listing into normalized quotes.
//
// A fetch walks GET /markets sequentially with limit/offset paging, stopping
// on an empty page, a short page, or the page cap. A failing page ends
// pagination but keeps the pages already collected. Each market is then
// filtered by status and its cent prices are reconciled into a
// model.MarketQuote; markets without usable YES and NO buy prices are
// dropped and counted.
package quotes
