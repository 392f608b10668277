package relay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetch(t *testing.T, rl *Relayer, req Request) (*Response, []byte) {
	t.Helper()
	resp, err := rl.Do(context.Background(), req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, body
}

func TestDoRewritesMarkup(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "navigate", r.Header.Get("Sec-Fetch-Mode"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Frame-Options", "DENY")
		_, _ = w.Write([]byte("<html><head><title>t</title></head><body>hi</body></html>"))
	}))
	defer upstream.Close()

	rl := New(Config{})
	resp, body := fetch(t, rl, Request{TargetURL: upstream.URL, Mode: ModeStandard})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.Rewritten)
	assert.Contains(t, string(body), "frameElement")
	// The payload lands inside head, before the page body.
	assert.Less(t,
		indexFold(body, "<script>"),
		indexFold(body, "</head>"))
	assert.Empty(t, resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "frame-ancestors *", resp.Header.Get("Content-Security-Policy"))
}

func TestDoAdvancedModeHeadersAndScript(t *testing.T) {
	var seen http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>x</body></html>"))
	}))
	defer upstream.Close()

	rl := New(Config{})
	_, body := fetch(t, rl, Request{
		TargetURL: upstream.URL,
		Mode:      ModeAdvanced,
		Referer:   "https://player.example.com/watch",
	})

	assert.NotEmpty(t, seen.Get("Sec-CH-UA"))
	assert.NotEmpty(t, seen.Get("X-Forwarded-For"))
	assert.Equal(t, "https://player.example.com/watch", seen.Get("Referer"))
	assert.Equal(t, "https://player.example.com", seen.Get("Origin"))
	assert.Equal(t, "cross-site", seen.Get("Sec-Fetch-Site"))

	assert.Contains(t, string(body), "postMessage")
	assert.Contains(t, string(body), "player.example.com")
}

func TestDoMediaRangePassthrough(t *testing.T) {
	payload := []byte("0123456789")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bytes=2-5", r.Header.Get("Range"))
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Range", "bytes 2-5/10")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(payload[2:6])
	}))
	defer upstream.Close()

	rl := New(Config{})
	resp, body := fetch(t, rl, Request{TargetURL: upstream.URL, RangeHeader: "bytes=2-5"})

	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.False(t, resp.Rewritten, "media bodies stream through untouched")
	assert.Equal(t, "2345", string(body))
	assert.Equal(t, "bytes 2-5/10", resp.Header.Get("Content-Range"))
	assert.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
}

func TestDoRelaysUpstreamErrorStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html><body>blocked</body></html>"))
	}))
	defer upstream.Close()

	rl := New(Config{})
	resp, body := fetch(t, rl, Request{TargetURL: upstream.URL})

	// Many embed pages answer non-200 yet still render; relay them as-is.
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(body), "blocked")
	assert.True(t, resp.Rewritten)
}

func TestDoRejectsInvalidTarget(t *testing.T) {
	rl := New(Config{})
	_, err := rl.Do(context.Background(), Request{TargetURL: "not a url"})
	assert.Error(t, err)

	_, err = rl.Do(context.Background(), Request{TargetURL: "/relative/path"})
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeAdvanced, ParseMode("advanced"))
	assert.Equal(t, ModeAdvanced, ParseMode("ADVANCED"))
	assert.Equal(t, ModeStandard, ParseMode("standard"))
	assert.Equal(t, ModeStandard, ParseMode(""))
	assert.Equal(t, ModeStandard, ParseMode("bogus"))
}
