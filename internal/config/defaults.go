package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL         = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultAPITimeout      = 30 * time.Second
	DefaultPlatform        = "kalshi"
	DefaultPageSize        = 100
	DefaultMaxPages        = 3
	DefaultStatus          = "open"
	DefaultFetchTimeout    = 60 * time.Second
	DefaultRefreshInterval = time.Minute
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Default returns a config with every optional field set.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Quotes defaults
	if c.Quotes.Platform == "" {
		c.Quotes.Platform = DefaultPlatform
	}
	if c.Quotes.PageSize == 0 {
		c.Quotes.PageSize = DefaultPageSize
	}
	if c.Quotes.MaxPages == 0 {
		c.Quotes.MaxPages = DefaultMaxPages
	}
	if c.Quotes.Status == "" {
		c.Quotes.Status = DefaultStatus
	}
	if c.Quotes.FetchTimeout == 0 {
		c.Quotes.FetchTimeout = DefaultFetchTimeout
	}
	if c.Quotes.RefreshInterval == 0 {
		c.Quotes.RefreshInterval = DefaultRefreshInterval
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
