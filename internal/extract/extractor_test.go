package extract

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamlens/streamlens/internal/platform"
)

func newTestExtractor(cfg Config, registry map[platform.Tag][]strategy) *Extractor {
	if cfg.StrategyTimeout <= 0 {
		cfg.StrategyTimeout = 500 * time.Millisecond
	}
	if cfg.CascadeDeadline <= 0 {
		cfg.CascadeDeadline = 2 * time.Second
	}
	return &Extractor{
		cfg:      cfg,
		logger:   zerolog.Nop(),
		registry: registry,
	}
}

func failing(name string) strategy {
	return strategy{
		name: name,
		run: func(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
			return nil, assert.AnError
		},
	}
}

func hanging(name string) strategy {
	return strategy{
		name: name,
		run: func(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
}

func succeeding(name string, f *findings) strategy {
	return strategy{
		name: name,
		run: func(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
			return f, nil
		},
	}
}

var ytRef = platform.VideoRef{
	Platform:    platform.YouTube,
	ID:          "dQw4w9WgXcQ",
	OriginalURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
}

func TestExtractAllStrategiesFailFallsBackToEmbed(t *testing.T) {
	e := newTestExtractor(Config{}, map[platform.Tag][]strategy{
		platform.YouTube: {failing("a"), failing("b"), failing("c")},
	})

	result := e.Extract(context.Background(), ytRef)

	assert.Equal(t, OutcomeEmbed, result.Outcome)
	assert.Equal(t, "fallback", result.StrategyUsed)
	assert.Contains(t, result.EmbedURL, "youtube-nocookie.com/embed/dQw4w9WgXcQ")
}

func TestExtractFirstSuccessShortCircuits(t *testing.T) {
	fast := &findings{candidates: []CandidateStream{{URL: "https://cdn.example.com/v.mp4", Quality: "720p"}}}

	e := newTestExtractor(Config{
		StrategyTimeout: 5 * time.Second,
		CascadeDeadline: 10 * time.Second,
	}, map[platform.Tag][]strategy{
		platform.YouTube: {hanging("slow-1"), succeeding("fast", fast), hanging("slow-2")},
	})

	start := time.Now()
	result := e.Extract(context.Background(), ytRef)
	elapsed := time.Since(start)

	assert.Equal(t, OutcomeDirect, result.Outcome)
	assert.Equal(t, "fast", result.StrategyUsed)
	assert.Less(t, elapsed, time.Second, "winner must not wait for hung strategies")
}

func TestExtractWaitsForAllFailuresBeforeFallback(t *testing.T) {
	slowFail := strategy{
		name: "slow-fail",
		run: func(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
			time.Sleep(100 * time.Millisecond)
			return nil, assert.AnError
		},
	}
	lateWin := strategy{
		name: "late-win",
		run: func(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
			time.Sleep(200 * time.Millisecond)
			return &findings{embedURL: "https://example.com/late"}, nil
		},
	}

	e := newTestExtractor(Config{}, map[platform.Tag][]strategy{
		platform.YouTube: {slowFail, lateWin},
	})

	result := e.Extract(context.Background(), ytRef)

	// An early failure must not preempt a later success.
	assert.Equal(t, OutcomeEmbed, result.Outcome)
	assert.Equal(t, "late-win", result.StrategyUsed)
	assert.Equal(t, "https://example.com/late", result.EmbedURL)
}

func TestExtractPerStrategyTimeoutBoundsHangs(t *testing.T) {
	e := newTestExtractor(Config{
		StrategyTimeout: 100 * time.Millisecond,
		CascadeDeadline: 5 * time.Second,
	}, map[platform.Tag][]strategy{
		platform.YouTube: {hanging("h1"), hanging("h2")},
	})

	start := time.Now()
	result := e.Extract(context.Background(), ytRef)
	elapsed := time.Since(start)

	assert.Equal(t, OutcomeEmbed, result.Outcome)
	assert.Equal(t, "fallback", result.StrategyUsed)
	assert.Less(t, elapsed, time.Second, "hung strategies must be cut by their own timeout")
}

func TestExtractOuterDeadlineBackstop(t *testing.T) {
	neverTimeout := strategy{
		name:    "stubborn",
		timeout: time.Hour,
		run: func(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	e := newTestExtractor(Config{
		StrategyTimeout: time.Hour,
		CascadeDeadline: 150 * time.Millisecond,
	}, map[platform.Tag][]strategy{
		platform.YouTube: {neverTimeout},
	})

	start := time.Now()
	result := e.Extract(context.Background(), ytRef)
	elapsed := time.Since(start)

	assert.Equal(t, OutcomeEmbed, result.Outcome)
	assert.Less(t, elapsed, time.Second)
}

func TestExtractUnsupportedWithoutFallbackIsFailure(t *testing.T) {
	ref := platform.VideoRef{
		Platform:    platform.Generic,
		OriginalURL: "https://example.com/page",
	}
	e := newTestExtractor(Config{}, map[platform.Tag][]strategy{
		platform.Generic: {failing("probe")},
	})

	result := e.Extract(context.Background(), ref)

	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Empty(t, result.EmbedURL)
}

func TestExtractRanksCandidates(t *testing.T) {
	found := &findings{candidates: []CandidateStream{
		{URL: "u1", Quality: "360p"},
		{URL: "u2", Quality: "unknown"},
		{URL: "u3", Quality: "1080p"},
		{URL: "u4", Quality: "720p"},
	}}
	e := newTestExtractor(Config{}, map[platform.Tag][]strategy{
		platform.YouTube: {succeeding("s", found)},
	})

	result := e.Extract(context.Background(), ytRef)

	require.Len(t, result.Candidates, 4)
	assert.Equal(t, "1080p", result.Candidates[0].Quality)
	assert.Equal(t, "720p", result.Candidates[1].Quality)
	assert.Equal(t, "360p", result.Candidates[2].Quality)
	assert.Equal(t, "unknown", result.Candidates[3].Quality, "unparsable labels rank last")

	best, ok := result.Best()
	require.True(t, ok)
	assert.Equal(t, "u3", best.URL)
}

func TestExtractRegistryCoversAllPlatforms(t *testing.T) {
	registry := builtinRegistry()
	for _, tag := range []platform.Tag{
		platform.YouTube, platform.Dailymotion, platform.Vimeo,
		platform.Facebook, platform.Instagram, platform.Twitter,
		platform.TikTok, platform.Twitch, platform.Generic,
	} {
		assert.NotEmpty(t, registry[tag], "platform %s has no strategies", tag)
	}
}
