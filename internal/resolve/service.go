// Package resolve composes the resolution pipeline: detect the platform,
// consult the cache, run the extraction cascade, flatten manifests, store
// the result.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/streamlens/streamlens/internal/cache"
	"github.com/streamlens/streamlens/internal/extract"
	"github.com/streamlens/streamlens/internal/log"
	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/platform"
)

// ErrBadURL marks syntactically unusable input, surfaced as a client error.
var ErrBadURL = errors.New("unparsable video URL")

// Extractor runs one cascade. Satisfied by *extract.Extractor.
type Extractor interface {
	Extract(ctx context.Context, ref platform.VideoRef) *extract.Result
}

// ManifestResolver flattens streaming manifests. Satisfied by
// *manifest.Resolver.
type ManifestResolver interface {
	Resolve(ctx context.Context, manifestURL string) (*manifest.ResolvedMedia, error)
}

// Resolution is one terminal pipeline answer.
type Resolution struct {
	Result extract.Result
	Ref    platform.VideoRef
	Cached bool
}

// Service is safe for concurrent use. Identical in-flight resolutions are
// collapsed so one upstream cascade serves all duplicate callers.
type Service struct {
	store     cache.Store
	extractor Extractor
	manifests ManifestResolver
	group     singleflight.Group
	logger    zerolog.Logger
}

// New assembles a Service. A nil manifests skips in-pipeline flattening.
func New(store cache.Store, extractor Extractor, manifests ManifestResolver) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		manifests: manifests,
		logger:    log.WithComponent("resolve"),
	}
}

// Resolve runs the full pipeline for rawURL. With useCache, prior results
// younger than the store TTL short-circuit the cascade. Every returned
// Resolution owns its data; callers can never corrupt a cache entry.
func (s *Service) Resolve(ctx context.Context, rawURL string, useCache bool) (*Resolution, error) {
	ref, ok := platform.Detect(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadURL, rawURL)
	}
	key := ref.CacheKey()

	if useCache {
		if raw, hit := s.store.Get(key); hit {
			var result extract.Result
			if err := json.Unmarshal(raw, &result); err == nil {
				s.logger.Debug().
					Str(log.FieldEvent, "resolve.hit").
					Str(log.FieldCacheKey, key).
					Msg("serving cached resolution")
				recordResolution(ref.Platform, result.Outcome, true)
				return &Resolution{Result: result, Ref: ref, Cached: true}, nil
			}
			// A corrupt entry is dropped by falling through to a fresh run.
		}
	}

	raw, err, _ := s.group.Do(key, func() (any, error) {
		result := s.extractor.Extract(ctx, ref)
		s.flattenTopManifest(ctx, result)

		encoded, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode resolution: %w", err)
		}
		if useCache && result.Outcome != extract.OutcomeFailure {
			s.store.Put(key, encoded)
		}
		return encoded, nil
	})
	if err != nil {
		return nil, err
	}

	// Each caller decodes its own copy so duplicate callers collapsed by
	// singleflight never share mutable state.
	var result extract.Result
	if err := json.Unmarshal(raw.([]byte), &result); err != nil {
		return nil, fmt.Errorf("decode resolution: %w", err)
	}
	recordResolution(ref.Platform, result.Outcome, false)
	return &Resolution{Result: result, Ref: ref}, nil
}

// ResolveManifest flattens one manifest URL outside the cascade pipeline.
func (s *Service) ResolveManifest(ctx context.Context, manifestURL string) (*manifest.ResolvedMedia, error) {
	if s.manifests == nil {
		return nil, errors.New("manifest resolution disabled")
	}
	return s.manifests.Resolve(ctx, manifestURL)
}

// CacheStats exposes the backing store's counters.
func (s *Service) CacheStats() cache.Stats { return s.store.Stats() }

// ClearCache drops every cached resolution.
func (s *Service) ClearCache() { s.store.Clear() }

// flattenTopManifest upgrades an HLS top candidate to a progressive file
// when the playlist turns out to be a disguised container. Flattening is
// best effort; any failure leaves the manifest URL in place, which players
// can still consume directly.
func (s *Service) flattenTopManifest(ctx context.Context, result *extract.Result) {
	if s.manifests == nil {
		return
	}
	best, ok := result.Best()
	if !ok || best.Container != "hls" {
		return
	}
	media, err := s.manifests.Resolve(ctx, best.URL)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str(log.FieldURL, best.URL).
			Msg("manifest flattening failed, keeping playlist URL")
		return
	}
	if media.Method == "progressive-container" && media.URL != best.URL {
		result.Candidates[0].URL = media.URL
		result.Candidates[0].Container = "mp4"
	}
}
