package cmd

import (
	"io"
	"log/slog"

	"github.com/rickgao/kalshi-quotes/internal/config"
)

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// loadConfig loads and validates the config, then builds a logger writing to w.
func loadConfig(path string, w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadAndValidate(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.Log, w)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
