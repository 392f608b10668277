// Package relay fetches third-party resources with a browser-imitating
// header profile and rewrites returned markup so that pages refusing to be
// framed still render inside an embedding player.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/streamlens/streamlens/internal/log"
)

// Mode selects how aggressively the relay disguises itself.
type Mode string

const (
	// ModeStandard sends a plain browser navigation profile.
	ModeStandard Mode = "standard"
	// ModeAdvanced adds client-hint and forwarded-IP forgeries and a more
	// intrusive markup rewrite.
	ModeAdvanced Mode = "advanced"
)

// ParseMode maps a query value to a Mode, defaulting to standard.
func ParseMode(s string) Mode {
	if strings.EqualFold(s, string(ModeAdvanced)) {
		return ModeAdvanced
	}
	return ModeStandard
}

const (
	defaultTimeout = 15 * time.Second
	// Markup above this size is streamed through unrewritten rather than
	// buffered.
	defaultMarkupMax = 8 << 20

	browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Config tunes one Relayer.
type Config struct {
	// Timeout bounds each relay call end to end.
	Timeout time.Duration
	// MarkupMax caps how much markup is buffered for rewriting.
	MarkupMax int64
}

// Request describes a single relay fetch.
type Request struct {
	TargetURL string
	Mode      Mode
	// Referer is the caller-chosen spoofed referring page.
	Referer string
	// UserAgent overrides the default browser profile when non-empty.
	UserAgent string
	// RangeHeader is the inbound Range header, passed through for media.
	RangeHeader string
}

// Response is a relayed upstream response. Body must be closed by the
// caller. When Rewritten is true the body is a fully buffered, rewritten
// markup document and ContentLength reflects the rewritten size.
type Response struct {
	StatusCode    int
	ContentType   string
	ContentLength int64
	// Header carries the curated subset of upstream headers safe to
	// forward, with anti-framing headers already stripped or replaced.
	Header    http.Header
	Body      io.ReadCloser
	Rewritten bool
}

// Relayer performs stealth fetches. It holds no per-request state and is
// safe for arbitrary concurrency.
type Relayer struct {
	client *http.Client
	cfg    Config
	logger zerolog.Logger
}

// New creates a Relayer with a cookie-jar-backed client so multi-request
// embed flows keep their session cookies.
func New(cfg Config) *Relayer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MarkupMax <= 0 {
		cfg.MarkupMax = defaultMarkupMax
	}
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &Relayer{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		cfg:    cfg,
		logger: log.WithComponent("relay"),
	}
}

// Do fetches req.TargetURL and returns the relayed response. Upstream
// non-2xx statuses are relayed as-is, not treated as errors; only transport
// failures and invalid input return an error.
func (rl *Relayer) Do(ctx context.Context, req Request) (*Response, error) {
	target, err := url.Parse(req.TargetURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid relay target %q", req.TargetURL)
	}

	ctx, cancel := context.WithTimeout(ctx, rl.cfg.Timeout)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	rl.applyHeaders(httpReq, req)

	resp, err := rl.client.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("relay fetch: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	out := &Response{
		StatusCode:    resp.StatusCode,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		Header:        forwardHeaders(resp.Header),
	}

	if resp.StatusCode >= 300 {
		rl.logger.Warn().
			Str(log.FieldEvent, "relay.upstream_status").
			Str(log.FieldTarget, target.Host).
			Int(log.FieldStatus, resp.StatusCode).
			Msg("relaying non-2xx upstream response")
	}

	if isMarkup(contentType) && resp.ContentLength <= rl.cfg.MarkupMax {
		body, err := io.ReadAll(io.LimitReader(resp.Body, rl.cfg.MarkupMax))
		_ = resp.Body.Close()
		cancel()
		if err != nil {
			return nil, fmt.Errorf("read relayed markup: %w", err)
		}

		rewritten := injectNeutralizer(body, req.Mode, refererHost(req.Referer))
		out.Body = io.NopCloser(bytes.NewReader(rewritten))
		out.ContentLength = int64(len(rewritten))
		out.Rewritten = true
		recordRelay(req.Mode, "markup")
		return out, nil
	}

	// Media and oversized bodies stream through untouched; the context must
	// outlive this function until the caller drains the body.
	out.Body = &cancelCloser{rc: resp.Body, cancel: cancel}
	recordRelay(req.Mode, "media")
	return out, nil
}

type cancelCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelCloser) Read(p []byte) (int, error) { return c.rc.Read(p) }

func (c *cancelCloser) Close() error {
	err := c.rc.Close()
	c.cancel()
	return err
}

func (rl *Relayer) applyHeaders(httpReq *http.Request, req Request) {
	h := httpReq.Header
	ua := req.UserAgent
	if ua == "" {
		ua = browserUA
	}
	h.Set("User-Agent", ua)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Upgrade-Insecure-Requests", "1")

	if req.Referer != "" {
		h.Set("Referer", req.Referer)
		if origin := refererOrigin(req.Referer); origin != "" {
			h.Set("Origin", origin)
		}
		h.Set("Sec-Fetch-Site", "cross-site")
	} else {
		h.Set("Sec-Fetch-Site", "none")
	}

	if req.RangeHeader != "" {
		h.Set("Range", req.RangeHeader)
		h.Set("Sec-Fetch-Dest", "video")
		h.Set("Sec-Fetch-Mode", "no-cors")
	}

	if req.Mode == ModeAdvanced {
		h.Set("Sec-CH-UA", `"Chromium";v="124", "Google Chrome";v="124", "Not-A.Brand";v="99"`)
		h.Set("Sec-CH-UA-Mobile", "?0")
		h.Set("Sec-CH-UA-Platform", `"Windows"`)
		ip := forgedClientIP()
		h.Set("X-Forwarded-For", ip)
		h.Set("X-Real-IP", ip)
	}
}

// forwardHeaders keeps the upstream headers a player needs and drops
// everything that would block framing. X-Frame-Options is replaced with a
// policy that allows any ancestor.
func forwardHeaders(upstream http.Header) http.Header {
	out := http.Header{}
	for _, name := range []string{"Content-Range", "Accept-Ranges", "Cache-Control", "Last-Modified", "ETag"} {
		if v := upstream.Get(name); v != "" {
			out.Set(name, v)
		}
	}
	out.Set("Content-Security-Policy", "frame-ancestors *")
	return out
}

func isMarkup(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

func refererHost(referer string) string {
	u, err := url.Parse(referer)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func refererOrigin(referer string) string {
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
