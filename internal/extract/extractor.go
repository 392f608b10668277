package extract

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamlens/streamlens/internal/log"
	"github.com/streamlens/streamlens/internal/platform"
)

// strategy is one independent extraction technique for a platform. All
// strategies of a platform are raced; the first usable findings win.
type strategy struct {
	name    string
	timeout time.Duration // 0 means the extractor default
	run     func(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error)
}

// Config tunes cascade behavior.
type Config struct {
	// StrategyTimeout is the default per-strategy hard timeout.
	StrategyTimeout time.Duration
	// CascadeDeadline is the coarse outer backstop for one whole cascade.
	CascadeDeadline time.Duration
}

// Extractor runs the strategy cascade for detected video references.
type Extractor struct {
	client   *Client
	cfg      Config
	logger   zerolog.Logger
	registry map[platform.Tag][]strategy
}

// New creates an Extractor with the built-in strategy table.
func New(client *Client, cfg Config) *Extractor {
	if cfg.StrategyTimeout <= 0 {
		cfg.StrategyTimeout = 2500 * time.Millisecond
	}
	if cfg.CascadeDeadline <= 0 {
		cfg.CascadeDeadline = 15 * time.Second
	}
	return &Extractor{
		client:   client,
		cfg:      cfg,
		logger:   log.WithComponent("extract"),
		registry: builtinRegistry(),
	}
}

// builtinRegistry is the single configuration table mapping each platform to
// its ordered strategy list.
func builtinRegistry() map[platform.Tag][]strategy {
	return map[platform.Tag][]strategy{
		platform.YouTube:     youtubeStrategies(),
		platform.Dailymotion: dailymotionStrategies(),
		platform.Vimeo:       vimeoStrategies(),
		platform.Facebook:    facebookStrategies(),
		platform.Instagram:   instagramStrategies(),
		platform.Twitter:     twitterStrategies(),
		platform.TikTok:      tiktokStrategies(),
		platform.Twitch:      twitchStrategies(),
		platform.Generic:     genericStrategies(),
	}
}

// Extract runs the cascade for ref. It always returns a terminal Result
// within the cascade deadline: direct candidates, an embed fallback, or a
// Failure when ref has no platform player to fall back to.
func (e *Extractor) Extract(ctx context.Context, ref platform.VideoRef) *Result {
	start := time.Now()
	strategies := e.registry[ref.Platform]

	won, winner := e.race(ctx, strategies, ref)

	result := &Result{Platform: ref.Platform}
	switch {
	case won != nil && len(won.candidates) > 0:
		result.Outcome = OutcomeDirect
		result.Candidates = rankCandidates(won.candidates)
		result.Metadata = won.meta
		result.EmbedURL = won.embedURL
		result.StrategyUsed = winner
	case won != nil && won.embedURL != "":
		result.Outcome = OutcomeEmbed
		result.EmbedURL = won.embedURL
		result.Metadata = won.meta
		result.StrategyUsed = winner
	default:
		if fallback := FallbackEmbedURL(ref); fallback != "" {
			result.Outcome = OutcomeEmbed
			result.EmbedURL = fallback
			result.StrategyUsed = "fallback"
		} else {
			result.Outcome = OutcomeFailure
			result.StrategyUsed = "none"
		}
	}
	result.ElapsedMs = time.Since(start).Milliseconds()

	e.logger.Info().
		Str(log.FieldEvent, "cascade.done").
		Str(log.FieldPlatform, string(ref.Platform)).
		Str(log.FieldVideoID, ref.ID).
		Str(log.FieldStrategy, result.StrategyUsed).
		Str(log.FieldOutcome, string(result.Outcome)).
		Int64(log.FieldElapsed, result.ElapsedMs).
		Msg("cascade finished")
	recordCascade(ref.Platform, result.Outcome, time.Since(start))

	return result
}

type raced struct {
	name     string
	findings *findings
	err      error
}

// race launches every strategy concurrently and returns the first usable
// findings. It resolves on first success, not first response: failures are
// collected until either one strategy succeeds, all have failed, or the
// outer deadline fires. Losing strategies are cancelled and abandoned, never
// awaited.
func (e *Extractor) race(ctx context.Context, strategies []strategy, ref platform.VideoRef) (*findings, string) {
	if len(strategies) == 0 {
		return nil, ""
	}

	raceCtx, cancel := context.WithTimeout(ctx, e.cfg.CascadeDeadline)
	defer cancel()

	// Buffered so abandoned strategies never block on send.
	results := make(chan raced, len(strategies))

	for _, s := range strategies {
		go func(s strategy) {
			timeout := s.timeout
			if timeout <= 0 {
				timeout = e.cfg.StrategyTimeout
			}
			sctx, scancel := context.WithTimeout(raceCtx, timeout)
			defer scancel()

			f, err := s.run(sctx, e.client, ref)
			results <- raced{name: s.name, findings: f, err: err}
		}(s)
	}

	for pending := len(strategies); pending > 0; pending-- {
		select {
		case r := <-results:
			if r.err != nil {
				// Transient upstream errors are recovered locally; they
				// never propagate to the caller.
				e.logger.Debug().
					Err(r.err).
					Str(log.FieldStrategy, r.name).
					Str(log.FieldPlatform, string(ref.Platform)).
					Msg("strategy failed")
				recordStrategy(r.name, false)
				continue
			}
			if r.findings.usable() {
				recordStrategy(r.name, true)
				return r.findings, r.name
			}
			recordStrategy(r.name, false)
		case <-raceCtx.Done():
			e.logger.Warn().
				Str(log.FieldEvent, "cascade.deadline").
				Str(log.FieldPlatform, string(ref.Platform)).
				Int("abandoned", pending).
				Msg("cascade deadline fired, abandoning pending strategies")
			return nil, ""
		}
	}
	return nil, ""
}
