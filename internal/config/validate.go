package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConfigurationError reports a missing or invalid configuration value.
// It is fatal: nothing is fetched while one is outstanding.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error // optional underlying sentinel
}

func (e *ConfigurationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func required(field string) error {
	return &ConfigurationError{Field: field, Reason: "is required"}
}

// ValidateCredentials checks that both credential inputs are present.
func (c *Config) ValidateCredentials() error {
	if c.API.APIKey == "" {
		return required("api.api_key")
	}
	if c.API.PrivateKeyPath == "" {
		return required("api.private_key_path")
	}
	return nil
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.API.RestURL == "" {
		return required("api.rest_url")
	}
	if !strings.HasPrefix(c.API.RestURL, "http://") && !strings.HasPrefix(c.API.RestURL, "https://") {
		return &ConfigurationError{Field: "api.rest_url", Reason: fmt.Sprintf("must be an http(s) URL, got %q", c.API.RestURL)}
	}
	if err := c.ValidateCredentials(); err != nil {
		return err
	}

	if c.Quotes.PageSize < 1 {
		return &ConfigurationError{Field: "quotes.page_size", Reason: "must be >= 1"}
	}
	if c.Quotes.MaxPages < 1 {
		return &ConfigurationError{Field: "quotes.max_pages", Reason: "must be >= 1"}
	}
	if c.Quotes.RefreshInterval < time.Second {
		return &ConfigurationError{Field: "quotes.refresh_interval", Reason: "must be >= 1s"}
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return &ConfigurationError{Field: "log.level", Reason: err.Error()}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &ConfigurationError{Field: "log.format", Reason: fmt.Sprintf("must be text or json, got %q", c.Log.Format)}
	}

	return nil
}

// SlogLevel parses Level into a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown level %q", l.Level)
	}
	return level, nil
}
