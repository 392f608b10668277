package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/streamlens/streamlens/internal/log"
)

const (
	// maxDepth caps master→media recursion so self-referencing manifests
	// cannot loop.
	maxDepth = 3

	// liveSnapshotSegments is how many leading segments a live playlist
	// resolves to.
	liveSnapshotSegments = 5

	// maxManifestBytes bounds how much playlist text is read from upstream.
	maxManifestBytes = 4 << 20
)

// ResolvedMedia is the terminal answer of manifest resolution.
type ResolvedMedia struct {
	URL      string   // single playable URL
	Segments []string // populated for progressive files and live snapshots
	Live     bool
	Method   string // which resolution path produced the answer
}

// Resolver fetches and recursively flattens HLS manifests.
type Resolver struct {
	client *http.Client
	logger zerolog.Logger
}

// NewResolver creates a Resolver using the supplied HTTP client.
func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{
		client: client,
		logger: log.WithComponent("manifest"),
	}
}

// Resolve fetches manifestURL and flattens it to concrete playable media.
func (r *Resolver) Resolve(ctx context.Context, manifestURL string) (*ResolvedMedia, error) {
	return r.resolve(ctx, manifestURL, 0)
}

func (r *Resolver) resolve(ctx context.Context, manifestURL string, depth int) (*ResolvedMedia, error) {
	if depth >= maxDepth {
		return nil, fmt.Errorf("manifest recursion exceeded %d levels at %s", maxDepth, manifestURL)
	}

	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, fmt.Errorf("parse manifest URL: %w", err)
	}

	content, err := r.fetch(ctx, manifestURL)
	if err != nil {
		return nil, err
	}

	pl, err := Parse(content, base)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", manifestURL, err)
	}

	if pl.Master {
		best := pl.MaxBandwidthVariant()
		r.logger.Debug().
			Str(log.FieldURL, manifestURL).
			Int(log.FieldBandwidth, best.Bandwidth).
			Str("variant", best.URL).
			Int("depth", depth).
			Msg("selected max-bandwidth variant")
		return r.resolve(ctx, best.URL, depth+1)
	}

	return r.flattenMedia(manifestURL, pl), nil
}

// flattenMedia turns a parsed media playlist into the terminal answer.
func (r *Resolver) flattenMedia(manifestURL string, pl *Playlist) *ResolvedMedia {
	first := pl.Segments[0]
	if isProgressiveContainer(first) {
		// A playlist of .mp4 parts is a disguised progressive file.
		return &ResolvedMedia{
			URL:      first,
			Segments: pl.Segments,
			Live:     pl.Live,
			Method:   "progressive-container",
		}
	}

	if pl.Live {
		snapshot := pl.Segments
		if len(snapshot) > liveSnapshotSegments {
			snapshot = snapshot[:liveSnapshotSegments]
		}
		return &ResolvedMedia{
			URL:      manifestURL,
			Segments: snapshot,
			Live:     true,
			Method:   "live-snapshot",
		}
	}

	// Raw TS segments are not independently useful to a generic player;
	// hand back the playlist itself as the HLS-playable reference.
	return &ResolvedMedia{
		URL:    manifestURL,
		Live:   false,
		Method: "vod-playlist",
	}
}

func (r *Resolver) fetch(ctx context.Context, manifestURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return "", fmt.Errorf("build manifest request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.apple.mpegurl, application/x-mpegurl, */*")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch manifest %s: %w", manifestURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch manifest %s: upstream status %d", manifestURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return "", fmt.Errorf("read manifest body: %w", err)
	}
	return string(body), nil
}

func isProgressiveContainer(segmentURL string) bool {
	u, err := url.Parse(segmentURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".mp4", ".m4v":
		return true
	}
	return false
}
