package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/streamlens/streamlens/internal/extract"
	"github.com/streamlens/streamlens/internal/log"
	"github.com/streamlens/streamlens/internal/relay"
	"github.com/streamlens/streamlens/internal/resolve"
)

// resolveRequest is the POST body accepted by /resolve.
type resolveRequest struct {
	URL     string `json:"url"`
	Quality string `json:"quality,omitempty"`
	Format  string `json:"format,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	s.serveResolve(w, r, false)
}

// serveResolve backs both /resolve and the caching /cache entry point; the
// only difference between them is whether the cache is interposed.
func (s *Server) serveResolve(w http.ResponseWriter, r *http.Request, forceCache bool) {
	var req resolveRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	} else {
		q := r.URL.Query()
		req = resolveRequest{URL: q.Get("url"), Quality: q.Get("quality"), Format: q.Get("format")}
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	useCache := forceCache || queryBool(r, "cache")

	res, err := s.resolver.Resolve(r.Context(), req.URL, useCache)
	if err != nil {
		if errors.Is(err, resolve.ErrBadURL) {
			writeError(w, http.StatusBadRequest, "unparsable url")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := &res.Result
	if result.Outcome == extract.OutcomeFailure {
		writeError(w, http.StatusInternalServerError, "no playable source could be extracted")
		return
	}

	resp := resolveResponse{
		Success:        true,
		Platform:       string(result.Platform),
		ExtractionTime: result.ElapsedMs,
		Method:         result.StrategyUsed,
		CanExtract:     result.Outcome == extract.OutcomeDirect,
		Fallback:       result.Outcome == extract.OutcomeEmbed,
		Cached:         res.Cached,
		EmbedURL:       result.EmbedURL,
		Metadata:       result.Metadata,
	}

	if result.Outcome == extract.OutcomeDirect {
		cands := result.Candidates
		if req.Format != "" {
			if filtered := filterByFormat(cands, req.Format); len(filtered) > 0 {
				cands = filtered
			}
		}
		if chosen, ok := extract.PickPreferred(cands, req.Quality); ok {
			resp.DirectURL = chosen.URL
			resp.Quality = chosen.Quality
		}
		resp.Candidates = result.Candidates
	} else {
		resp.StealthURLs = extract.StealthURLs(res.Ref)
	}

	writeJSON(w, http.StatusOK, resp)
}

func filterByFormat(cands []extract.CandidateStream, format string) []extract.CandidateStream {
	var out []extract.CandidateStream
	for _, c := range cands {
		if strings.EqualFold(c.Container, format) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) handleManifestResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	switch q.Get("type") {
	case "", "m3u8", "auto":
	default:
		writeError(w, http.StatusBadRequest, "unsupported manifest type")
		return
	}

	start := time.Now()
	media, err := s.resolver.ResolveManifest(r.Context(), target)
	if err != nil {
		// Unparsable or unreachable manifests are a resolver-level failure;
		// the caller can still relay the original URL directly.
		writeJSON(w, http.StatusOK, manifestResponse{
			Success:        false,
			Method:         "none",
			ProcessingTime: time.Since(start).Milliseconds(),
			Error:          err.Error(),
		})
		return
	}

	resp := manifestResponse{
		Success:        true,
		VideoURL:       media.URL,
		IsLive:         &media.Live,
		Method:         media.Method,
		ProcessingTime: time.Since(start).Milliseconds(),
	}
	for _, seg := range media.Segments {
		resp.VideoURLs = append(resp.VideoURLs, manifestVariant{URL: seg, Format: formatFromURL(seg)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func formatFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "stats":
		writeJSON(w, http.StatusOK, s.resolver.CacheStats())
	case "clear":
		s.resolver.ClearCache()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "cache cleared"})
	default:
		s.serveResolve(w, r, true)
	}
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	resp, err := s.relayer.Do(r.Context(), relay.Request{
		TargetURL:   target,
		Mode:        relay.ParseMode(q.Get("bypass")),
		Referer:     q.Get("referer"),
		UserAgent:   q.Get("ua"),
		RangeHeader: r.Header.Get("Range"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "relay fetch failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	s.copyRelayResponse(w, r, resp, false)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		if start, end := q.Get("start"), q.Get("end"); start != "" || end != "" {
			if start == "" {
				start = "0"
			}
			rangeHeader = fmt.Sprintf("bytes=%s-%s", start, end)
		}
	}

	resp, err := s.relayer.Do(r.Context(), relay.Request{
		TargetURL:   target,
		Referer:     q.Get("referer"),
		RangeHeader: rangeHeader,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "upstream fetch failed")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if queryBool(r, "download") {
		w.Header().Set("Content-Disposition", "attachment; filename=\""+downloadName(target)+"\"")
	}
	s.copyRelayResponse(w, r, resp, true)
}

// copyRelayResponse forwards a relayed upstream response, preserving partial
// content semantics. Stream bytes are counted for the transfer metric.
func (s *Server) copyRelayResponse(w http.ResponseWriter, r *http.Request, resp *relay.Response, countBytes bool) {
	h := w.Header()
	for name, values := range resp.Header {
		h[name] = values
	}
	if resp.ContentType != "" {
		h.Set("Content-Type", resp.ContentType)
	}
	if resp.ContentLength >= 0 {
		h.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	if h.Get("Accept-Ranges") == "" {
		h.Set("Accept-Ranges", "bytes")
	}
	w.WriteHeader(resp.StatusCode)

	n, err := io.Copy(w, resp.Body)
	if countBytes {
		recordStreamBytes(n)
	}
	if err != nil {
		logger := log.WithContext(r.Context(), s.logger)
		logger.Debug().
			Err(err).
			Msg("client disconnected during relay copy")
	}
}

func downloadName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "video"
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "video"
	}
	return name
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	// The pipeline has no external hard dependency to probe; readiness means
	// the server is wired and the cache answers.
	_ = s.resolver.CacheStats()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
