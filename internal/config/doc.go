// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Credentials left empty in the file fall back to KALSHI_API_KEY and
// KALSHI_API_SECRET_PATH.
package config
