// Package auth provides Kalshi API authentication using RSA-PSS signatures.
//
// Every authenticated request carries three headers:
//
//	KALSHI-ACCESS-KEY        API key ID
//	KALSHI-ACCESS-TIMESTAMP  milliseconds since epoch
//	KALSHI-ACCESS-SIGNATURE  base64(RSA-PSS-SHA256(timestamp + METHOD + path))
//
// Signatures are recomputed for every request. PSS is salted, so two
// signatures over the same message differ, and the timestamp has to stay
// within the server's clock skew window.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/kalshi-quotes/internal/config"
)

// Header names used by the Kalshi API.
const (
	HeaderAccessKey       = "KALSHI-ACCESS-KEY"
	HeaderAccessSignature = "KALSHI-ACCESS-SIGNATURE"
	HeaderAccessTimestamp = "KALSHI-ACCESS-TIMESTAMP"
)

// WebSocketPath is the path used for WebSocket signature generation.
const WebSocketPath = "/trade-api/ws/v2"

var (
	// ErrMissingKeyID is returned when no API key ID is configured.
	ErrMissingKeyID = errors.New("API key ID is required")
	// ErrMissingKeyPath is returned when no private key path is configured.
	ErrMissingKeyPath = errors.New("private key path is required")
	// ErrInvalidPath is returned when a path to sign does not start with "/".
	ErrInvalidPath = errors.New("path must start with /")
)

// KeyLoadError reports a private key that could not be read or parsed.
type KeyLoadError struct {
	Path string
	Err  error
}

func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("load private key %s: %v", e.Path, e.Err)
}

func (e *KeyLoadError) Unwrap() error { return e.Err }

// SignError reports a failure inside the signing backend.
type SignError struct {
	Err error
}

func (e *SignError) Error() string {
	return fmt.Sprintf("sign message: %v", e.Err)
}

func (e *SignError) Unwrap() error { return e.Err }

// SignedHeaders is the header set for a single request.
type SignedHeaders struct {
	KeyID     string
	Signature string
	Timestamp string
}

// Apply sets the three access headers on h.
func (s SignedHeaders) Apply(h http.Header) {
	h.Set(HeaderAccessKey, s.KeyID)
	h.Set(HeaderAccessSignature, s.Signature)
	h.Set(HeaderAccessTimestamp, s.Timestamp)
}

// Map returns the headers keyed by header name.
func (s SignedHeaders) Map() map[string]string {
	return map[string]string{
		HeaderAccessKey:       s.KeyID,
		HeaderAccessSignature: s.Signature,
		HeaderAccessTimestamp: s.Timestamp,
	}
}

// Signer signs requests with a fixed key ID and RSA private key.
// It holds no mutable state and is safe for concurrent use.
type Signer struct {
	keyID string
	key   *rsa.PrivateKey
	now   func() time.Time
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithClock overrides the wall clock used by SignNow.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner creates a Signer for the given key ID and private key.
func NewSigner(keyID string, key *rsa.PrivateKey, opts ...SignerOption) *Signer {
	s := &Signer{
		keyID: keyID,
		key:   key,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadCredentials loads a Signer from key ID and private key file path.
// A missing input is reported as *config.ConfigurationError wrapping
// ErrMissingKeyID or ErrMissingKeyPath, before the file is read.
func LoadCredentials(keyID, privateKeyPath string, opts ...SignerOption) (*Signer, error) {
	if keyID == "" {
		return nil, &config.ConfigurationError{Field: "api.api_key", Reason: "is required", Err: ErrMissingKeyID}
	}
	if privateKeyPath == "" {
		return nil, &config.ConfigurationError{Field: "api.private_key_path", Reason: "is required", Err: ErrMissingKeyPath}
	}

	privateKey, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, err
	}

	return NewSigner(keyID, privateKey, opts...), nil
}

// KeyID returns the API key ID sent in KALSHI-ACCESS-KEY.
func (s *Signer) KeyID() string { return s.keyID }

// PublicKey returns the public half of the signing key.
func (s *Signer) PublicKey() *rsa.PublicKey { return &s.key.PublicKey }

// LoadPrivateKey loads an RSA private key from a PEM file.
// All failures are reported as *KeyLoadError.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("read key file: %w", err)}
	}

	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: err}
	}
	return key, nil
}

// ParsePrivateKey parses a PEM encoded RSA private key.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	// Try PKCS#8 first (newer format)
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key is not an RSA private key (got %T)", key)
		}
		return rsaKey, nil
	}

	// Fall back to PKCS#1 (older format)
	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return rsaKey, nil
}

// Message returns the canonical bytes signed for a request.
// Format: timestamp_ms + METHOD + path, no separators.
func Message(timestampMs int64, method, path string) []byte {
	return []byte(strconv.FormatInt(timestampMs, 10) + strings.ToUpper(method) + path)
}

// SignNow signs the request using the current time.
func (s *Signer) SignNow(method, path string) (SignedHeaders, error) {
	return s.Sign(method, path, s.now().UnixMilli())
}

// Sign signs the request at the given millisecond timestamp. The same
// timestamp is placed in the message and in the returned header set.
func (s *Signer) Sign(method, path string, timestampMs int64) (SignedHeaders, error) {
	if !strings.HasPrefix(path, "/") {
		return SignedHeaders{}, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	hashed := sha256.Sum256(Message(timestampMs, method, path))

	signature, err := rsa.SignPSS(
		rand.Reader,
		s.key,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return SignedHeaders{}, &SignError{Err: err}
	}

	return SignedHeaders{
		KeyID:     s.keyID,
		Signature: base64.StdEncoding.EncodeToString(signature),
		Timestamp: strconv.FormatInt(timestampMs, 10),
	}, nil
}

// SignWebSocket generates authentication headers for the WebSocket handshake.
func (s *Signer) SignWebSocket() (SignedHeaders, error) {
	return s.SignNow(http.MethodGet, WebSocketPath)
}

// VerifySignature checks headers against the public key for method and path.
func VerifySignature(pub *rsa.PublicKey, headers SignedHeaders, method, path string) error {
	ts, err := strconv.ParseInt(headers.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}

	sig, err := base64.StdEncoding.DecodeString(headers.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	hashed := sha256.Sum256(Message(ts, method, path))
	if err := rsa.VerifyPSS(pub, crypto.SHA256, hashed[:], sig,
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}); err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	return nil
}
