package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/kalshi-quotes/internal/api"
	"github.com/rickgao/kalshi-quotes/internal/config"
	"github.com/rickgao/kalshi-quotes/internal/model"
)

// MarketLister returns one page of the market listing.
type MarketLister interface {
	ListMarkets(ctx context.Context, opts api.ListMarketsOptions) (*api.MarketsResponse, error)
}

// Config holds fetch configuration.
type Config struct {
	Platform     string        // Platform tag on every quote (default: kalshi)
	PageSize     int           // Markets per page (default: 100)
	MaxPages     int           // Page cap per fetch (default: 3)
	Status       string        // Listing status filter (default: open)
	FetchTimeout time.Duration // Upper bound on one shared fetch (default: 60s)
}

// DefaultConfig returns the listing policy used against Kalshi.
func DefaultConfig() Config {
	return Config{
		Platform:     config.DefaultPlatform,
		PageSize:     config.DefaultPageSize,
		MaxPages:     config.DefaultMaxPages,
		Status:       config.DefaultStatus,
		FetchTimeout: config.DefaultFetchTimeout,
	}
}

// Stats are the diagnostic counters of one fetch. Callers that joined the
// same in-flight fetch see the same BatchID.
type Stats struct {
	BatchID       uuid.UUID `json:"batch_id"`
	Pages         int       `json:"pages"`          // pages that returned markets
	Fetched       int       `json:"fetched"`        // raw markets across all pages
	SkippedStatus int       `json:"skipped_status"` // closed, settled or cancelled
	SkippedPrice  int       `json:"skipped_price"`  // missing or invalid buy prices
	Accepted      int       `json:"accepted"`       // quotes produced
}

// Result is the outcome of one fetch. PageErr is set when pagination ended
// early on a failing page; Quotes still holds everything collected before it.
type Result struct {
	Quotes  []model.MarketQuote
	Stats   Stats
	PageErr error
}

// Fetcher loads and normalizes quotes.
type Fetcher struct {
	cfg    Config
	lister MarketLister
	logger *slog.Logger

	group singleflight.Group

	mu       sync.Mutex
	inflight *flight
	gen      uint64
}

// flight is one shared fetch and the callers still waiting on it.
type flight struct {
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New creates a Fetcher. Zero config fields take their defaults.
func New(cfg Config, lister MarketLister, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	def := DefaultConfig()
	if cfg.Platform == "" {
		cfg.Platform = def.Platform
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.Status == "" {
		cfg.Status = def.Status
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}

	return &Fetcher{
		cfg:    cfg,
		lister: lister,
		logger: logger,
	}
}

// NewFromConfig validates credentials, loads the signing key and builds a
// Fetcher backed by a signed API client. It fails with
// *config.ConfigurationError or *auth.KeyLoadError before any network call.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := api.NewClientFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	return New(Config{
		Platform:     cfg.Quotes.Platform,
		PageSize:     cfg.Quotes.PageSize,
		MaxPages:     cfg.Quotes.MaxPages,
		Status:       cfg.Quotes.Status,
		FetchTimeout: cfg.Quotes.FetchTimeout,
	}, client, logger), nil
}

// FetchQuotes is the one-shot form: build a Fetcher from cfg and run it once.
// Only configuration and key errors are returned; page failures shorten the
// result instead.
func FetchQuotes(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]model.MarketQuote, Stats, error) {
	f, err := NewFromConfig(cfg, logger)
	if err != nil {
		return nil, Stats{}, err
	}
	res := f.Fetch(ctx)
	return res.Quotes, res.Stats, nil
}

// Fetch pages through the listing and normalizes every market.
//
// Concurrent callers share one in-flight fetch and receive the same Result,
// which must be treated as read-only. The shared fetch is bounded by
// Config.FetchTimeout and keeps running while any caller still waits on it.
// A caller whose ctx ends first returns at once with PageErr set to
// ctx.Err(); if it was the last one waiting, the fetch is stopped and the
// pages collected so far are returned instead.
func (f *Fetcher) Fetch(ctx context.Context) *Result {
	fl, ch := f.join(ctx)

	select {
	case r := <-ch:
		f.leave(fl)
		return r.Val.(*Result)
	case <-ctx.Done():
		if f.leave(fl) == 0 {
			fl.cancel()
			return (<-ch).Val.(*Result)
		}
		return &Result{
			Quotes:  []model.MarketQuote{},
			Stats:   Stats{BatchID: uuid.New()},
			PageErr: ctx.Err(),
		}
	}
}

// join registers the caller on the current flight, starting a new one when
// none is running. The flight context is detached from ctx.
//
// DoChan is called under f.mu: a flight is cleared under the same lock
// before its function returns, so a caller that finds f.inflight set always
// joins the running call.
func (f *Fetcher) join(ctx context.Context) (*flight, <-chan singleflight.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inflight == nil {
		f.gen++
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.cfg.FetchTimeout)
		f.inflight = &flight{
			key:    "fetch-" + strconv.FormatUint(f.gen, 10),
			ctx:    fctx,
			cancel: cancel,
		}
	}
	fl := f.inflight
	fl.waiters++

	ch := f.group.DoChan(fl.key, func() (any, error) {
		defer fl.cancel()
		res := f.fetch(fl.ctx)

		f.mu.Lock()
		if f.inflight == fl {
			f.inflight = nil
		}
		f.mu.Unlock()

		return res, nil
	})
	return fl, ch
}

// leave unregisters a caller and returns how many are still waiting.
// An abandoned flight no longer accepts new callers.
func (f *Fetcher) leave(fl *flight) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl.waiters--
	if fl.waiters == 0 && f.inflight == fl {
		f.inflight = nil
	}
	return fl.waiters
}

func (f *Fetcher) fetch(ctx context.Context) *Result {
	start := time.Now()
	res := &Result{Stats: Stats{BatchID: uuid.New()}}

	markets, pages, err := f.fetchPages(ctx)
	res.Stats.Pages = pages
	res.Stats.Fetched = len(markets)
	res.PageErr = err

	f.logger.Debug("kalshi listing returned raw markets",
		"batch_id", res.Stats.BatchID,
		"count", len(markets),
	)
	if len(markets) > 0 {
		f.logFirstMarket(markets[0])
	}

	res.Quotes = make([]model.MarketQuote, 0, len(markets))
	for _, m := range markets {
		q, reason := Normalize(f.cfg.Platform, m)
		switch reason {
		case SkipStatus:
			res.Stats.SkippedStatus++
		case SkipPrice:
			res.Stats.SkippedPrice++
		default:
			res.Quotes = append(res.Quotes, q)
		}
	}
	res.Stats.Accepted = len(res.Quotes)

	f.logger.Info("loaded kalshi quotes",
		"batch_id", res.Stats.BatchID,
		"pages", res.Stats.Pages,
		"fetched", res.Stats.Fetched,
		"accepted", res.Stats.Accepted,
		"skipped_status", res.Stats.SkippedStatus,
		"skipped_price", res.Stats.SkippedPrice,
		"duration", time.Since(start),
	)
	f.logSample(res.Quotes)

	return res
}

// fetchPages walks the listing sequentially. It returns the markets gathered
// so far, the number of non-empty pages, and the error that stopped it, if any.
func (f *Fetcher) fetchPages(ctx context.Context) ([]model.RawMarket, int, error) {
	var all []model.RawMarket
	pages := 0

	for page := 1; page <= f.cfg.MaxPages; page++ {
		resp, err := f.lister.ListMarkets(ctx, api.ListMarketsOptions{
			Limit:  f.cfg.PageSize,
			Offset: (page - 1) * f.cfg.PageSize,
			Status: f.cfg.Status,
		})
		if err != nil {
			f.logger.Warn("market page failed, keeping earlier pages",
				"page", page,
				"collected", len(all),
				"err", err,
			)
			return all, pages, fmt.Errorf("page %d: %w", page, err)
		}

		if len(resp.Markets) == 0 {
			break
		}

		all = append(all, resp.Markets...)
		pages = page

		f.logger.Debug("fetched market page",
			"page", page,
			"count", len(resp.Markets),
			"total", len(all),
		)

		// Short page is the last page.
		if len(resp.Markets) < f.cfg.PageSize {
			break
		}
	}

	return all, pages, nil
}

var debugPriceFields = []string{
	"yes_ask", "yes_bid", "no_ask", "no_bid", "last_price",
	"yes_ask_dollars", "yes_bid_dollars", "no_ask_dollars", "no_bid_dollars",
}

func (f *Fetcher) logFirstMarket(m model.RawMarket) {
	if !f.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := []any{
		"keys", keys,
		"title", m["title"],
		"status", m["status"],
	}
	for _, field := range debugPriceFields {
		if v, ok := m[field]; ok {
			attrs = append(attrs, field, v)
		}
	}
	f.logger.Debug("first kalshi market", attrs...)
}

func (f *Fetcher) logSample(quotes []model.MarketQuote) {
	for i, q := range quotes[:min(5, len(quotes))] {
		f.logger.Debug("sample quote",
			"n", i+1,
			"market_id", q.MarketID,
			"question", Truncate(q.Question, 70),
			"yes_buy", q.YesBuy.StringFixed(3),
			"no_buy", q.NoBuy.StringFixed(3),
		)
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
