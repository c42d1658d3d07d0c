package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawMarket is a loosely typed market object as returned by the exchange.
// Decode it with json.Decoder.UseNumber so numbers arrive as json.Number.
type RawMarket map[string]any

// Number returns the numeric value stored at key.
// Strings, booleans, null and missing keys are reported as absent.
func (m RawMarket) Number(key string) (decimal.Decimal, bool) {
	switch v := m[key].(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case int32:
		return decimal.NewFromInt32(v), true
	default:
		return decimal.Decimal{}, false
	}
}

// PositiveNumber returns the value at key only when it is a number > 0.
func (m RawMarket) PositiveNumber(key string) (decimal.Decimal, bool) {
	d, ok := m.Number(key)
	if !ok || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// String returns the value at key when it is a non-empty string.
func (m RawMarket) String(key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// FirstString returns the first non-empty string among keys, or "".
func (m RawMarket) FirstString(keys ...string) string {
	for _, k := range keys {
		if s, ok := m.String(k); ok {
			return s
		}
	}
	return ""
}

// Status returns the lower-cased status field.
func (m RawMarket) Status() string {
	s, _ := m.String("status")
	return strings.ToLower(s)
}

// FirstID returns the first non-empty identifier among keys, or "".
// Numeric identifiers are rendered in decimal form.
func (m RawMarket) FirstID(keys ...string) string {
	for _, k := range keys {
		if s, ok := m.String(k); ok {
			return s
		}
		if d, ok := m.Number(k); ok && !d.IsZero() {
			return d.String()
		}
	}
	return ""
}
