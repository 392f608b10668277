package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

func dailymotionStrategies() []strategy {
	return []strategy{
		{name: "dailymotion/metadata-api", timeout: 2500 * time.Millisecond, run: dailymotionMetadataAPI},
		{name: "dailymotion/embed-scrape", timeout: 2500 * time.Millisecond, run: dailymotionEmbedScrape},
		{name: "dailymotion/oembed", timeout: 1500 * time.Millisecond, run: dailymotionOEmbed},
	}
}

// dailymotionMetadataAPI hits the player metadata endpoint that the embed
// player itself bootstraps from.
func dailymotionMetadataAPI(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		Title     string `json:"title"`
		Duration  int    `json:"duration"`
		Qualities map[string][]struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"qualities"`
		Posters map[string]string `json:"posters"`
	}
	endpoint := "https://www.dailymotion.com/player/metadata/video/" + ref.ID
	if err := c.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("metadata api: %w", err)
	}

	f := &findings{meta: &Metadata{Title: payload.Title, DurationSeconds: payload.Duration}}
	for quality, sources := range payload.Qualities {
		for _, src := range sources {
			container := ""
			switch src.Type {
			case "application/x-mpegURL":
				container = "hls"
			case "video/mp4":
				container = "mp4"
			}
			label := quality
			if quality != "auto" {
				label = quality + "p"
			}
			f.candidates = append(f.candidates, CandidateStream{
				URL:       src.URL,
				Quality:   label,
				Container: container,
			})
		}
	}
	for _, poster := range payload.Posters {
		f.meta.ThumbnailURL = poster
		break
	}

	if len(f.candidates) == 0 {
		return nil, fmt.Errorf("no qualities in metadata")
	}
	return f, nil
}

func dailymotionEmbedScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	doc, err := c.GetDocument(ctx, "https://www.dailymotion.com/embed/video/"+ref.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("embed page: %w", err)
	}
	return findingsFromOpenGraph(doc, "hls")
}

func dailymotionOEmbed(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	target := oembedURL("https://www.dailymotion.com/services/oembed", ref.OriginalURL)
	if err := c.GetJSON(ctx, target, &payload); err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}
	return &findings{
		embedURL: FallbackEmbedURL(ref),
		meta:     &Metadata{Title: payload.Title, ThumbnailURL: payload.ThumbnailURL},
	}, nil
}
