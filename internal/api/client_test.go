package api

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rickgao/kalshi-quotes/internal/auth"
	"github.com/rickgao/kalshi-quotes/internal/config"
)

var (
	signerOnce sync.Once
	testSigner *auth.Signer
)

func newTestSigner(t *testing.T) *auth.Signer {
	t.Helper()
	signerOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testSigner = auth.NewSigner("test-key-id", key)
	})
	return testSigner
}

// headersFrom extracts the signed header set from a request.
func headersFrom(r *http.Request) auth.SignedHeaders {
	return auth.SignedHeaders{
		KeyID:     r.Header.Get(auth.HeaderAccessKey),
		Signature: r.Header.Get(auth.HeaderAccessSignature),
		Timestamp: r.Header.Get(auth.HeaderAccessTimestamp),
	}
}

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	signer := newTestSigner(t)

	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com/trade-api/v2/", signer)

		assert.Equal(t, "https://api.example.com/trade-api/v2", c.BaseURL())
		hc, ok := c.httpClient.(*http.Client)
		require.True(t, ok)
		assert.Equal(t, 30*time.Second, hc.Timeout)
		assert.Equal(t, DefaultUserAgent, c.userAgent)
		assert.NotNil(t, c.logger)
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient("https://api.example.com", signer, WithTimeout(5*time.Second))
		hc := c.httpClient.(*http.Client)
		assert.Equal(t, 5*time.Second, hc.Timeout)
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("https://api.example.com", signer, WithLogger(logger))
		assert.Same(t, logger, c.logger)
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mock := NewMockHTTPClient(ctrl)
		c := NewClient("https://api.example.com", signer, WithHTTPClient(mock), WithTimeout(time.Second))
		assert.Same(t, mock, c.httpClient)
	})

	t.Run("timeout leaves caller's client untouched", func(t *testing.T) {
		own := &http.Client{Timeout: time.Minute}
		c := NewClient("https://api.example.com", signer, WithHTTPClient(own), WithTimeout(time.Second))

		assert.Equal(t, time.Minute, own.Timeout)
		hc := c.httpClient.(*http.Client)
		assert.NotSame(t, own, hc)
		assert.Equal(t, time.Second, hc.Timeout)
	})
}

func TestNewClientFromConfig(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "kalshi.pem")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0600))

	t.Run("does not modify config", func(t *testing.T) {
		cfg := &config.Config{API: config.APIConfig{APIKey: "k", PrivateKeyPath: keyPath}}
		before := *cfg

		c, err := NewClientFromConfig(cfg, nil)
		require.NoError(t, err)

		assert.Equal(t, before, *cfg)
		assert.Equal(t, config.DefaultRestURL, c.BaseURL())
		assert.Equal(t, config.DefaultAPITimeout, c.httpClient.(*http.Client).Timeout)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewClientFromConfig(&config.Config{}, nil)

		var cfgErr *config.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "api.api_key", cfgErr.Field)
	})
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/markets", NormalizePath("markets"))
	assert.Equal(t, "/markets", NormalizePath("/markets"))
	assert.Equal(t, "/", NormalizePath(""))
}

func TestDo_SignsPathOnly(t *testing.T) {
	signer := newTestSigner(t)

	var gotPath, gotQuery string
	var gotHeaders auth.SignedHeaders
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeaders = headersFrom(r)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL+"/trade-api/v2", signer)
	resp, err := c.Get(context.Background(), "markets", map[string][]string{"status": {"open"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "/trade-api/v2/markets", gotPath)
	assert.Equal(t, "status=open", gotQuery)
	assert.Equal(t, "test-key-id", gotHeaders.KeyID)

	// The signature covers the normalized request path, not the base URL or query.
	require.NoError(t, auth.VerifySignature(signer.PublicKey(), gotHeaders, "GET", "/markets"))
	assert.Error(t, auth.VerifySignature(signer.PublicKey(), gotHeaders, "GET", "/trade-api/v2/markets"))
}

func TestDo_VerbHelpers(t *testing.T) {
	signer := newTestSigner(t)

	type seen struct {
		method      string
		contentType string
		body        string
		headers     auth.SignedHeaders
	}
	var mu sync.Mutex
	var calls []seen

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, seen{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
			headers:     headersFrom(r),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, signer)
	ctx := context.Background()
	payload := map[string]any{"ticker": "ABC", "count": 1}

	for _, do := range []func() (*http.Response, error){
		func() (*http.Response, error) { return c.Get(ctx, "/portfolio/balance", nil) },
		func() (*http.Response, error) { return c.Post(ctx, "/portfolio/orders", payload) },
		func() (*http.Response, error) { return c.Put(ctx, "/portfolio/orders/1", payload) },
		func() (*http.Response, error) { return c.Delete(ctx, "/portfolio/orders/1") },
	} {
		resp, err := do()
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, calls, 4)
	wantMethods := []string{"GET", "POST", "PUT", "DELETE"}
	wantPaths := []string{"/portfolio/balance", "/portfolio/orders", "/portfolio/orders/1", "/portfolio/orders/1"}
	for i, call := range calls {
		assert.Equal(t, wantMethods[i], call.method)
		assert.NoErrorf(t, auth.VerifySignature(signer.PublicKey(), call.headers, wantMethods[i], wantPaths[i]),
			"%s %s", wantMethods[i], wantPaths[i])
	}

	assert.Empty(t, calls[0].contentType)
	assert.Equal(t, "application/json", calls[1].contentType)
	assert.JSONEq(t, `{"ticker":"ABC","count":1}`, calls[1].body)
	assert.JSONEq(t, `{"ticker":"ABC","count":1}`, calls[2].body)
	assert.Empty(t, calls[3].body)
}

func TestDo_FreshSignaturePerRequest(t *testing.T) {
	signer := newTestSigner(t)

	var sigs []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		sigs = append(sigs, r.Header.Get(auth.HeaderAccessSignature))
		mu.Unlock()
	}))
	defer server.Close()

	c := NewClient(server.URL, signer)
	for i := 0; i < 2; i++ {
		resp, err := c.Get(context.Background(), "/markets", nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, sigs, 2)
	assert.NotEqual(t, sigs[0], sigs[1])
}

func TestDo_ReturnsNon2xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, newTestSigner(t))
	resp, err := c.Get(context.Background(), "/markets", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "no retry on 5xx")
}

func TestDo_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockHTTPClient(ctrl)

	boom := errors.New("connection refused")
	mock.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "https://api.example.com/markets", req.URL.String())
			assert.NotEmpty(t, req.Header.Get(auth.HeaderAccessSignature))
			return nil, boom
		}).
		Times(1)

	c := NewClient("https://api.example.com", newTestSigner(t), WithHTTPClient(mock))
	_, err := c.Get(context.Background(), "/markets", nil)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "GET", terr.Method)
	assert.Equal(t, "/markets", terr.Path)
	assert.ErrorIs(t, err, boom)
}

func TestListMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "200", r.URL.Query().Get("offset"))
		assert.Equal(t, "open", r.URL.Query().Get("status"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"markets":[{"ticker":"A","yes_ask":65,"no_ask":40},{"ticker":"B","last_price":30}],"cursor":""}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, newTestSigner(t))
	resp, err := c.ListMarkets(context.Background(), ListMarketsOptions{Limit: 100, Offset: 200, Status: "open"})
	require.NoError(t, err)
	require.Len(t, resp.Markets, 2)

	assert.Equal(t, "A", resp.Markets[0]["ticker"])
	assert.Equal(t, json.Number("65"), resp.Markets[0]["yes_ask"])
	d, ok := resp.Markets[1].Number("last_price")
	require.True(t, ok)
	assert.Equal(t, "30", d.String())
}

func TestListMarkets_FirstPageSendsZeroOffset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		io.WriteString(w, `{"markets":[]}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, newTestSigner(t))
	resp, err := c.ListMarkets(context.Background(), ListMarketsOptions{Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, resp.Markets)
}

func TestListMarkets_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":"bad signature"}`)
		}))
		defer server.Close()

		c := NewClient(server.URL, newTestSigner(t))
		_, err := c.ListMarkets(context.Background(), ListMarketsOptions{Limit: 100})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "kalshi api error 401: Unauthorized", apiErr.Error())
		assert.Contains(t, string(apiErr.Body), "bad signature")
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"markets": [`)
		}))
		defer server.Close()

		c := NewClient(server.URL, newTestSigner(t))
		_, err := c.ListMarkets(context.Background(), ListMarketsOptions{Limit: 100})
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unmarshal response"), err.Error())
	})

	t.Run("context cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"markets": []}`)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewClient(server.URL, newTestSigner(t))
		_, err := c.ListMarkets(ctx, ListMarketsOptions{Limit: 100})

		var terr *TransportError
		require.ErrorAs(t, err, &terr)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGetExchangeStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange/status", r.URL.Path)
		io.WriteString(w, `{"exchange_active":true,"trading_active":false}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, newTestSigner(t))
	status, err := c.GetExchangeStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.ExchangeActive)
	assert.False(t, status.TradingActive)
}
