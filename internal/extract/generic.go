package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

func genericStrategies() []strategy {
	return []strategy{
		{name: "generic/direct-probe", timeout: 3 * time.Second, run: genericDirectProbe},
		{name: "generic/manifest-sniff", timeout: 3 * time.Second, run: genericManifestSniff},
	}
}

// genericDirectProbe checks whether the URL itself is a playable media file.
func genericDirectProbe(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	resp, err := c.Head(ctx, ref.OriginalURL)
	if err != nil {
		return nil, fmt.Errorf("head probe: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("head probe: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	container := containerFromContentType(contentType)
	if container == "" {
		container = containerFromURL(ref.OriginalURL)
	}
	if container == "" {
		return nil, fmt.Errorf("not a media file (content type %q)", contentType)
	}

	size, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	return &findings{candidates: []CandidateStream{{
		URL:             ref.OriginalURL,
		Container:       container,
		ApproxSizeBytes: size,
	}}}, nil
}

// genericManifestSniff fetches the first bytes and looks for an HLS header,
// catching playlists served with misleading content types or extensions.
func genericManifestSniff(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.OriginalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Range", "bytes=0-1023")

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sniff: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sniff: status %d", resp.StatusCode)
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return nil, fmt.Errorf("sniff read: %w", err)
	}

	if !strings.HasPrefix(strings.TrimSpace(string(head)), "#EXTM3U") {
		return nil, fmt.Errorf("no HLS header")
	}
	return &findings{candidates: []CandidateStream{{
		URL:       ref.OriginalURL,
		Quality:   "auto",
		Container: "hls",
	}}}, nil
}

func containerFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "mp4"):
		return "mp4"
	case strings.Contains(ct, "webm"):
		return "webm"
	case strings.Contains(ct, "mpegurl"):
		return "hls"
	case strings.Contains(ct, "quicktime"):
		return "mov"
	case strings.Contains(ct, "matroska"):
		return "mkv"
	case strings.Contains(ct, "mp2t"):
		return "ts"
	default:
		return ""
	}
}
