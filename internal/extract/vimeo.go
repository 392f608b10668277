package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

func vimeoStrategies() []strategy {
	return []strategy{
		{name: "vimeo/player-config", timeout: 2500 * time.Millisecond, run: vimeoPlayerConfig},
		{name: "vimeo/page-scrape", timeout: 2500 * time.Millisecond, run: vimeoPageScrape},
		{name: "vimeo/oembed", timeout: 1500 * time.Millisecond, run: vimeoOEmbed},
	}
}

// vimeoPlayerConfig reads the player bootstrap config, which lists
// progressive MP4 renditions and the HLS master URL.
func vimeoPlayerConfig(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		Request struct {
			Files struct {
				Progressive []struct {
					URL     string  `json:"url"`
					Quality string  `json:"quality"`
					FPS     float64 `json:"fps"`
				} `json:"progressive"`
				HLS struct {
					Cdns map[string]struct {
						URL string `json:"url"`
					} `json:"cdns"`
				} `json:"hls"`
			} `json:"files"`
		} `json:"request"`
		Video struct {
			Title    string `json:"title"`
			Duration int    `json:"duration"`
			Thumbs   map[string]string `json:"thumbs"`
		} `json:"video"`
	}

	endpoint := fmt.Sprintf("https://player.vimeo.com/video/%s/config", ref.ID)
	if err := c.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("player config: %w", err)
	}

	f := &findings{meta: &Metadata{
		Title:           payload.Video.Title,
		DurationSeconds: payload.Video.Duration,
	}}
	for _, thumb := range payload.Video.Thumbs {
		f.meta.ThumbnailURL = thumb
		break
	}

	for _, p := range payload.Request.Files.Progressive {
		f.candidates = append(f.candidates, CandidateStream{
			URL:       p.URL,
			Quality:   p.Quality,
			Container: "mp4",
			FrameRate: p.FPS,
		})
	}
	for _, cdn := range payload.Request.Files.HLS.Cdns {
		if cdn.URL != "" {
			f.candidates = append(f.candidates, CandidateStream{
				URL:       cdn.URL,
				Quality:   "auto",
				Container: "hls",
			})
			break
		}
	}

	if len(f.candidates) == 0 {
		return nil, fmt.Errorf("no files in player config")
	}
	return f, nil
}

func vimeoPageScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	doc, err := c.GetDocument(ctx, "https://vimeo.com/"+ref.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	return findingsFromOpenGraph(doc, "")
}

func vimeoOEmbed(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		Title        string `json:"title"`
		Duration     int    `json:"duration"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	target := oembedURL("https://vimeo.com/api/oembed.json", "https://vimeo.com/"+ref.ID)
	if err := c.GetJSON(ctx, target, &payload); err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}
	return &findings{
		embedURL: FallbackEmbedURL(ref),
		meta: &Metadata{
			Title:           payload.Title,
			DurationSeconds: payload.Duration,
			ThumbnailURL:    payload.ThumbnailURL,
		},
	}, nil
}
