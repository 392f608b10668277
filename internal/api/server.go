// Package api exposes the resolution pipeline over HTTP.
package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/streamlens/streamlens/internal/cache"
	"github.com/streamlens/streamlens/internal/config"
	"github.com/streamlens/streamlens/internal/log"
	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/relay"
	"github.com/streamlens/streamlens/internal/resolve"
)

// Resolver is the pipeline surface the handlers need. Satisfied by
// *resolve.Service.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string, useCache bool) (*resolve.Resolution, error)
	ResolveManifest(ctx context.Context, manifestURL string) (*manifest.ResolvedMedia, error)
	CacheStats() cache.Stats
	ClearCache()
}

// Server owns the HTTP surface.
type Server struct {
	cfg      config.AppConfig
	resolver Resolver
	relayer  *relay.Relayer
	logger   zerolog.Logger
	trusted  []*net.IPNet
	started  time.Time
}

// NewServer wires handlers to the pipeline.
func NewServer(cfg config.AppConfig, resolver Resolver, relayer *relay.Relayer) *Server {
	return &Server{
		cfg:      cfg,
		resolver: resolver,
		relayer:  relayer,
		logger:   log.WithComponent("api"),
		trusted:  parseTrustedProxies(cfg.TrustedProxies),
		started:  time.Now(),
	}
}

// Routes builds the router with the full middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(s.requestID)
	r.Use(s.corsAndPreflight)
	r.Use(s.requestLogger)
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.Limit(
			s.cfg.RateLimit,
			s.cfg.RateLimitWindow,
			httprate.WithKeyFuncs(func(req *http.Request) (string, error) {
				return s.clientIP(req), nil
			}),
			httprate.WithLimitHandler(func(w http.ResponseWriter, req *http.Request) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			}),
		))
	}

	r.Get("/resolve", s.handleResolve)
	r.Post("/resolve", s.handleResolve)
	r.Get("/manifest-resolve", s.handleManifestResolve)
	r.Get("/cache", s.handleCache)
	r.Get("/relay", s.handleRelay)
	r.Get("/stream", s.handleStream)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func parseTrustedProxies(csv string) []*net.IPNet {
	var nets []*net.IPNet
	for _, part := range strings.Split(csv, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			// Bare addresses are accepted as single-host networks.
			if strings.Contains(p, ":") {
				p += "/128"
			} else {
				p += "/32"
			}
		}
		if _, ipnet, err := net.ParseCIDR(p); err == nil {
			nets = append(nets, ipnet)
		}
	}
	return nets
}
