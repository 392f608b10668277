// Package extract runs platform-specific strategy cascades that turn a
// detected video reference into playable stream candidates.
package extract

import (
	"github.com/streamlens/streamlens/internal/platform"
)

// Outcome classifies the terminal state of one cascade run.
type Outcome string

const (
	// OutcomeDirect means at least one direct stream candidate was found.
	OutcomeDirect Outcome = "direct"
	// OutcomeEmbed means no direct stream, but an embeddable URL exists.
	// Degraded, not an error.
	OutcomeEmbed Outcome = "embed"
	// OutcomeFailure means nothing playable could be produced.
	OutcomeFailure Outcome = "failure"
)

// CandidateStream is one playable option discovered by a strategy. Fields
// are never mutated after the owning strategy returns.
type CandidateStream struct {
	URL             string            `json:"url"`
	Quality         string            `json:"quality,omitempty"`
	Container       string            `json:"container,omitempty"`
	ApproxSizeBytes int64             `json:"approxSizeBytes,omitempty"`
	FrameRate       float64           `json:"frameRate,omitempty"`
	RequiredHeaders map[string]string `json:"requiredHeaders,omitempty"`
}

// Metadata carries optional descriptive fields found along the way.
type Metadata struct {
	Title           string `json:"title,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	ThumbnailURL    string `json:"thumbnailUrl,omitempty"`
}

// Result is the cascade's immutable return value, constructed exactly once
// per resolution attempt.
type Result struct {
	Outcome      Outcome           `json:"outcome"`
	Platform     platform.Tag      `json:"platform"`
	Candidates   []CandidateStream `json:"candidates,omitempty"`
	EmbedURL     string            `json:"embedUrl,omitempty"`
	Metadata     *Metadata         `json:"metadata,omitempty"`
	StrategyUsed string            `json:"strategyUsed"`
	ElapsedMs    int64             `json:"elapsedMs"`
}

// Best returns the top-ranked candidate, or false when there is none.
func (r *Result) Best() (CandidateStream, bool) {
	if len(r.Candidates) == 0 {
		return CandidateStream{}, false
	}
	return r.Candidates[0], true
}

// findings is what one strategy invocation hands back to the cascade.
type findings struct {
	candidates []CandidateStream
	embedURL   string
	meta       *Metadata
}

// usable reports whether the findings short-circuit the race.
func (f *findings) usable() bool {
	return f != nil && (len(f.candidates) > 0 || f.embedURL != "")
}
