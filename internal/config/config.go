// Package config loads service configuration with precedence ENV > file > defaults.
package config

import (
	"fmt"
	"time"
)

// AppConfig holds the full runtime configuration of the daemon.
type AppConfig struct {
	ListenAddr     string        `yaml:"listenAddr"`
	LogLevel       string        `yaml:"logLevel"`
	TrustedProxies string        `yaml:"trustedProxies"` // comma-separated CIDRs

	// Cascade tuning.
	CascadeDeadline time.Duration `yaml:"cascadeDeadline"` // outer backstop for one resolution
	StrategyTimeout time.Duration `yaml:"strategyTimeout"` // default per-strategy timeout

	// Extraction cache.
	CacheTTL      time.Duration `yaml:"cacheTTL"`
	CacheCapacity int           `yaml:"cacheCapacity"`
	RedisAddr     string        `yaml:"redisAddr"` // optional; empty selects the in-memory store
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`

	// Stealth relay / stream passthrough.
	RelayTimeout  time.Duration `yaml:"relayTimeout"`
	RelayBodyMax  int64         `yaml:"relayBodyMax"` // markup rewrite buffer cap in bytes
	OutboundRate  float64       `yaml:"outboundRate"` // per-host requests/second for strategies
	OutboundBurst int           `yaml:"outboundBurst"`

	// API surface.
	RateLimit       int           `yaml:"rateLimit"` // requests per RateLimitWindow per client IP, 0 disables
	RateLimitWindow time.Duration `yaml:"rateLimitWindow"`
}

// Defaults returns the configuration used when neither file nor environment
// overrides a value.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr:      ":8080",
		LogLevel:        "info",
		CascadeDeadline: 15 * time.Second,
		StrategyTimeout: 2500 * time.Millisecond,
		CacheTTL:        10 * time.Minute,
		CacheCapacity:   1000,
		RelayTimeout:    15 * time.Second,
		RelayBodyMax:    10 << 20,
		OutboundRate:    5,
		OutboundBurst:   10,
		RateLimit:       120,
		RateLimitWindow: time.Minute,
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c AppConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.CascadeDeadline <= 0 {
		return fmt.Errorf("cascade deadline must be positive, got %s", c.CascadeDeadline)
	}
	if c.StrategyTimeout <= 0 {
		return fmt.Errorf("strategy timeout must be positive, got %s", c.StrategyTimeout)
	}
	if c.StrategyTimeout > c.CascadeDeadline {
		return fmt.Errorf("strategy timeout %s exceeds cascade deadline %s", c.StrategyTimeout, c.CascadeDeadline)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.RelayTimeout <= 0 {
		return fmt.Errorf("relay timeout must be positive, got %s", c.RelayTimeout)
	}
	return nil
}
