package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes one fixed-window limiter. Two instances are
// loaded at startup: a general limit covering all /api traffic and a
// stricter one layered on top of the authentication endpoints, where brute
// force attempts concentrate.
type RateLimitConfig struct {
	Enabled bool
	Max     int           // requests allowed per window
	Window  time.Duration // window length
	Prefix  string        // Redis key namespace
}

// LoadRateLimitConfig reads the general API limiter settings. Defaults
// mirror the production values: 100 requests per 15 minutes per client IP.
func LoadRateLimitConfig() RateLimitConfig {
	return loadLimiter("RATE_LIMIT", 100, "rl:api")
}

// LoadAuthRateLimitConfig reads the authentication limiter settings:
// 5 attempts per 15 minutes per client IP by default.
func LoadAuthRateLimitConfig() RateLimitConfig {
	return loadLimiter("AUTH_RATE_LIMIT", 5, "rl:auth")
}

func loadLimiter(prefix string, defMax int, keyPrefix string) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool(prefix+"_ENABLED", true),
		Max:     envInt(prefix+"_MAX", defMax),
		Window:  envDur(prefix+"_WINDOW", 15*time.Minute),
		Prefix:  envStr(prefix+"_PREFIX", keyPrefix),
	}
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return cfg
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
		return dur
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		// Bare integers are read as minutes for .env convenience.
		return time.Duration(n) * time.Minute
	}
	return d
}
