package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// envReader reads environment overrides. Invalid values keep the current
// value and are reported as warnings instead of failing the load.
type envReader struct {
	warnings []string
}

func (r *envReader) fallback(key, value string, current any, err error) {
	msg := fmt.Sprintf("Invalid %s='%s': %v, falling back to '%v'", key, value, err, current)
	r.warnings = append(r.warnings, msg)
	configFallbacksTotal.WithLabelValues(key).Inc()
	slog.Warn("invalid environment value, using fallback",
		slog.String("key", key),
		slog.String("value", value),
		slog.Any("fallback", current),
		slog.String("error", err.Error()))
}

// String returns the variable or current when unset.
func (r *envReader) String(key, current string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return current
}

// Validated returns the variable when validate accepts it.
func (r *envReader) Validated(key, current string, validate func(string) error) string {
	v := os.Getenv(key)
	if v == "" {
		return current
	}
	if err := validate(v); err != nil {
		r.fallback(key, v, current, err)
		return current
	}
	return v
}

// PositiveInt parses a strictly positive integer.
func (r *envReader) PositiveInt(key string, current int) int {
	v := os.Getenv(key)
	if v == "" {
		return current
	}
	n, err := strconv.Atoi(v)
	if err == nil && n <= 0 {
		err = fmt.Errorf("must be positive")
	}
	if err != nil {
		r.fallback(key, v, current, err)
		return current
	}
	return n
}

// PositiveDuration parses a time.ParseDuration value greater than zero.
func (r *envReader) PositiveDuration(key string, current time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return current
	}
	d, err := time.ParseDuration(v)
	if err == nil {
		err = ValidatePositiveDuration(d)
	}
	if err != nil {
		r.fallback(key, v, current, err)
		return current
	}
	return d
}

// Bool accepts the strconv.ParseBool spellings.
func (r *envReader) Bool(key string, current bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return current
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fallback(key, v, current, err)
		return current
	}
	return b
}

// Ratio parses a float in [0, 1].
func (r *envReader) Ratio(key string, current float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return current
	}
	f, err := strconv.ParseFloat(v, 64)
	if err == nil && (f < 0 || f > 1) {
		err = fmt.Errorf("must be between 0 and 1")
	}
	if err != nil {
		r.fallback(key, v, current, err)
		return current
	}
	return f
}
