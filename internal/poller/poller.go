package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/kalshi-quotes/internal/quotes"
)

// QuoteSource runs one quote fetch.
type QuoteSource interface {
	Fetch(ctx context.Context) *quotes.Result
}

// ResultHandler receives the result of each cycle.
type ResultHandler interface {
	HandleResult(res *quotes.Result) error
}

// ResultHandlerFunc is a function adapter for ResultHandler.
type ResultHandlerFunc func(*quotes.Result) error

func (f ResultHandlerFunc) HandleResult(r *quotes.Result) error {
	return f(r)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Time between cycles (default: 1m)
	Timeout  time.Duration // Per-cycle fetch timeout (default: 60s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
		Timeout:  60 * time.Second,
	}
}

// Poller periodically fetches quotes.
type Poller struct {
	cfg     Config
	source  QuoteSource
	handler ResultHandler
	logger  *slog.Logger

	cycles atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, source QuoteSource, handler ResultHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Poller{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the polling loop. The first cycle runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("quote poller started",
		"interval", p.cfg.Interval,
		"timeout", p.cfg.Timeout,
	)

	return nil
}

// Stop cancels the loop and waits for the running cycle to finish.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("quote poller stopped", "cycles", p.cycles.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cycles returns the number of completed cycles.
func (p *Poller) Cycles() int64 {
	return p.cycles.Load()
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll runs a single cycle.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	res := p.source.Fetch(ctx)
	if p.ctx.Err() != nil {
		return
	}
	p.cycles.Add(1)

	if p.handler != nil {
		if err := p.handler.HandleResult(res); err != nil {
			p.logger.Warn("result handler failed",
				"batch_id", res.Stats.BatchID,
				"err", err,
			)
		}
	}
}
