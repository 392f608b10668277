package api

import (
	"encoding/json"
	"net/http"

	"github.com/streamlens/streamlens/internal/extract"
)

// resolveResponse is the wire shape of a finished resolution.
type resolveResponse struct {
	Success        bool                      `json:"success"`
	DirectURL      string                    `json:"directUrl,omitempty"`
	EmbedURL       string                    `json:"embedUrl,omitempty"`
	Platform       string                    `json:"platform"`
	Quality        string                    `json:"quality,omitempty"`
	ExtractionTime int64                     `json:"extractionTime"`
	Method         string                    `json:"method"`
	CanExtract     bool                      `json:"canExtract"`
	StealthURLs    []string                  `json:"stealthUrls,omitempty"`
	Candidates     []extract.CandidateStream `json:"candidates,omitempty"`
	Metadata       *extract.Metadata         `json:"metadata,omitempty"`
	Fallback       bool                      `json:"fallback"`
	Cached         bool                      `json:"cached"`
}

// manifestVariant is one playable segment entry in a manifest response.
type manifestVariant struct {
	URL     string `json:"url"`
	Quality string `json:"quality,omitempty"`
	Format  string `json:"format,omitempty"`
}

type manifestResponse struct {
	Success        bool              `json:"success"`
	VideoURL       string            `json:"videoUrl,omitempty"`
	VideoURLs      []manifestVariant `json:"videoUrls,omitempty"`
	IsLive         *bool             `json:"isLive,omitempty"`
	Method         string            `json:"method"`
	ProcessingTime int64             `json:"processingTime"`
	Error          string            `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}
