package github

import (
	"time"

	"github.com/bkyoung/inspection-sync/internal/adapter/rest"
	"github.com/bkyoung/inspection-sync/internal/config"
)

// BuildRetryConfig creates the client retry policy from global HTTP config.
// Unset or invalid values fall back to the defaults.
func BuildRetryConfig(httpCfg config.HTTPConfig) rest.RetryConfig {
	def := rest.DefaultRetryConfig()

	multiplier := httpCfg.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = def.Multiplier
	}

	return rest.RetryConfig{
		MaxRetries:     httpCfg.MaxRetries,
		InitialBackoff: parseDuration(httpCfg.InitialBackoff, def.InitialBackoff),
		MaxBackoff:     parseDuration(httpCfg.MaxBackoff, def.MaxBackoff),
		Multiplier:     multiplier,
	}
}

// parseDuration parses a duration with fallback to the default.
// Negative durations are rejected to prevent invalid backoff values.
func parseDuration(value string, defaultVal time.Duration) time.Duration {
	if value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultVal
}
