package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader resolves the effective configuration from defaults, an optional
// YAML file, and the STREAMLENS_* environment.
type Loader struct {
	path string // optional config file path; empty means env+defaults only
}

// NewLoader creates a Loader for the given config file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load resolves the configuration with precedence ENV > file > defaults.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read config file %q: %w", l.path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config file %q: %w", l.path, err)
		}
	}

	cfg = applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays STREAMLENS_* environment variables onto cfg.
func applyEnv(cfg AppConfig) AppConfig {
	cfg.ListenAddr = ParseString("STREAMLENS_LISTEN", cfg.ListenAddr)
	cfg.LogLevel = ParseString("STREAMLENS_LOG_LEVEL", cfg.LogLevel)
	cfg.TrustedProxies = ParseString("STREAMLENS_TRUSTED_PROXIES", cfg.TrustedProxies)

	cfg.CascadeDeadline = ParseDuration("STREAMLENS_CASCADE_DEADLINE", cfg.CascadeDeadline)
	cfg.StrategyTimeout = ParseDuration("STREAMLENS_STRATEGY_TIMEOUT", cfg.StrategyTimeout)

	cfg.CacheTTL = ParseDuration("STREAMLENS_CACHE_TTL", cfg.CacheTTL)
	cfg.CacheCapacity = ParseInt("STREAMLENS_CACHE_CAPACITY", cfg.CacheCapacity)
	cfg.RedisAddr = ParseString("STREAMLENS_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = ParseString("STREAMLENS_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = ParseInt("STREAMLENS_REDIS_DB", cfg.RedisDB)

	cfg.RelayTimeout = ParseDuration("STREAMLENS_RELAY_TIMEOUT", cfg.RelayTimeout)
	cfg.RelayBodyMax = int64(ParseInt("STREAMLENS_RELAY_BODY_MAX", int(cfg.RelayBodyMax)))

	cfg.RateLimit = ParseInt("STREAMLENS_RATE_LIMIT", cfg.RateLimit)
	cfg.RateLimitWindow = ParseDuration("STREAMLENS_RATE_LIMIT_WINDOW", cfg.RateLimitWindow)

	// Fractional rates are uncommon enough that an integer env var suffices.
	cfg.OutboundRate = float64(ParseInt("STREAMLENS_OUTBOUND_RATE", int(cfg.OutboundRate)))
	cfg.OutboundBurst = ParseInt("STREAMLENS_OUTBOUND_BURST", cfg.OutboundBurst)

	return cfg
}
