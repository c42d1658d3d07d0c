package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rickgao/kalshi-quotes/internal/auth"
	"github.com/rickgao/kalshi-quotes/internal/config"
)

// DefaultUserAgent is sent when no other User-Agent is configured.
const DefaultUserAgent = "kalshi-quotes/1.0"

// HTTPClient describes the transport used by Client.
//
//go:generate mockgen -package=api -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides signed access to the Kalshi REST API.
type Client struct {
	baseURL    string
	signer     *auth.Signer
	httpClient HTTPClient
	userAgent  string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(baseURL string, signer *auth.Signer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout on a copy of the current
// *http.Client; a client passed to WithHTTPClient is never modified.
// It has no effect when a custom HTTPClient that is not *http.Client is set.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if hc, ok := c.httpClient.(*http.Client); ok {
			cp := *hc
			cp.Timeout = d
			c.httpClient = &cp
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// NewClientFromConfig loads credentials and builds a client from cfg.
// Defaults are applied to a copy; cfg is not modified.
// Missing credentials yield *config.ConfigurationError; an unusable key file
// yields *auth.KeyLoadError. Neither touches the network.
func NewClientFromConfig(in *config.Config, logger *slog.Logger) (*Client, error) {
	cfg := *in
	cfg.ApplyDefaults()
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	signer, err := auth.LoadCredentials(cfg.API.APIKey, cfg.API.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	opts := []ClientOption{
		WithLogger(logger),
		WithTimeout(cfg.API.Timeout),
	}
	if cfg.API.UserAgent != "" {
		opts = append(opts, WithUserAgent(cfg.API.UserAgent))
	}
	return NewClient(cfg.API.RestURL, signer, opts...), nil
}
