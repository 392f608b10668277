package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamlens/streamlens/internal/api"
	"github.com/streamlens/streamlens/internal/cache"
	"github.com/streamlens/streamlens/internal/config"
	"github.com/streamlens/streamlens/internal/extract"
	"github.com/streamlens/streamlens/internal/log"
	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/relay"
	"github.com/streamlens/streamlens/internal/resolve"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.NewLoader(*configPath).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: "streamlens",
		Version: version,
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := buildStore(cfg, logger)

	client := extract.NewClient(extract.ClientConfig{
		Timeout:     cfg.StrategyTimeout,
		PerHostRate: cfg.OutboundRate,
		Burst:       cfg.OutboundBurst,
	})
	extractor := extract.New(client, extract.Config{
		StrategyTimeout: cfg.StrategyTimeout,
		CascadeDeadline: cfg.CascadeDeadline,
	})
	manifests := manifest.NewResolver(&http.Client{Timeout: cfg.StrategyTimeout * 2})
	service := resolve.New(store, extractor, manifests)

	relayer := relay.New(relay.Config{
		Timeout:   cfg.RelayTimeout,
		MarkupMax: cfg.RelayBodyMax,
	})

	server := api.NewServer(cfg, service, relayer)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Write timeout must cover long-running stream relays.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str(log.FieldEvent, "daemon.start").
			Str("addr", cfg.ListenAddr).
			Str("version", version).
			Dur("cascade_deadline", cfg.CascadeDeadline).
			Dur("cache_ttl", cfg.CacheTTL).
			Int("cache_capacity", cfg.CacheCapacity).
			Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Str(log.FieldEvent, "daemon.shutdown").Msg("signal received, draining")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Str(log.FieldEvent, "daemon.listen_failed").Msg("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("bye")
}

// buildStore selects the cache backend: Redis when configured, otherwise
// the in-memory store. A Redis connection failure degrades to in-memory
// rather than refusing to start.
func buildStore(cfg config.AppConfig, logger zerolog.Logger) cache.Store {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore(cfg.CacheTTL, cfg.CacheCapacity)
	}
	store, err := cache.NewRedisStore(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	}, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(log.FieldEvent, "cache.redis_unavailable").
			Str("addr", cfg.RedisAddr).
			Msg("falling back to in-memory cache")
		return cache.NewMemoryStore(cfg.CacheTTL, cfg.CacheCapacity)
	}
	return store
}
