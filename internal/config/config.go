package config

import (
	"os"
	"strconv"
	"strings"
)

// Get returns the value of an environment variable or a fallback.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetFloat returns a float environment variable or a fallback when the
// variable is unset or unparsable.
func GetFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// MustGet returns the value of an environment variable or an empty string.
// Callers are expected to fail fast on empty values at startup.
func MustGet(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
