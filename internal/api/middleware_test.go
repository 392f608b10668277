package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamlens/streamlens/internal/config"
	"github.com/streamlens/streamlens/internal/relay"
)

func serverWithProxies(trusted string) *Server {
	cfg := config.Defaults()
	cfg.TrustedProxies = trusted
	return NewServer(cfg, &stubResolver{}, relay.New(relay.Config{}))
}

func TestClientIPIgnoresForwardedFromUntrustedPeer(t *testing.T) {
	s := serverWithProxies("")
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.RemoteAddr = "198.51.100.7:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "198.51.100.7", s.clientIP(r))
}

func TestClientIPHonorsForwardedFromTrustedPeer(t *testing.T) {
	s := serverWithProxies("10.0.0.0/8, 127.0.0.1")
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.RemoteAddr = "10.1.2.3:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.1.2.3")

	assert.Equal(t, "203.0.113.9", s.clientIP(r))

	// Bare trusted address without CIDR suffix.
	r.RemoteAddr = "127.0.0.1:9999"
	r.Header.Del("X-Forwarded-For")
	r.Header.Set("X-Real-IP", "203.0.113.44")
	assert.Equal(t, "203.0.113.44", s.clientIP(r))
}

func TestRequestIDPropagates(t *testing.T) {
	h := testServer(t, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRateLimitReturns429(t *testing.T) {
	cfg := config.Defaults()
	cfg.RateLimit = 2
	h := NewServer(cfg, &stubResolver{}, relay.New(relay.Config{})).Routes()

	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
