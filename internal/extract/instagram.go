package extract

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

var igVideoURLRe = regexp.MustCompile(`"video_url"\s*:\s*"([^"]+)"`)

func instagramStrategies() []strategy {
	return []strategy{
		{name: "instagram/og-scrape", timeout: 2500 * time.Millisecond, run: instagramOGScrape},
		{name: "instagram/embed-scrape", timeout: 2500 * time.Millisecond, run: instagramEmbedScrape},
		{name: "instagram/api-probe", timeout: 2 * time.Second, run: instagramAPIProbe},
	}
}

func instagramOGScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	doc, err := c.GetDocument(ctx, ref.OriginalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("post page: %w", err)
	}
	return findingsFromOpenGraph(doc, "mp4")
}

// instagramEmbedScrape reads the captioned embed page, whose inline state
// still carries a raw video_url for public posts.
func instagramEmbedScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	target := fmt.Sprintf("https://www.instagram.com/p/%s/embed/captioned/", ref.ID)
	body, err := c.GetString(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("embed page: %w", err)
	}

	m := igVideoURLRe.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("no video_url in embed page")
	}
	return &findings{candidates: []CandidateStream{{
		URL:       unescapeJSONString(m[1]),
		Container: "mp4",
	}}}, nil
}

// instagramAPIProbe asks for the page's JSON representation. Works only
// while the post is public and the endpoint keeps answering anonymously.
func instagramAPIProbe(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		GraphQL struct {
			ShortcodeMedia struct {
				VideoURL         string `json:"video_url"`
				DisplayURL       string `json:"display_url"`
				VideoDuration    float64 `json:"video_duration"`
				EdgeMediaToCaption struct {
					Edges []struct {
						Node struct {
							Text string `json:"text"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"edge_media_to_caption"`
			} `json:"shortcode_media"`
		} `json:"graphql"`
	}

	target := fmt.Sprintf("https://www.instagram.com/p/%s/?__a=1&__d=dis", ref.ID)
	if err := c.GetJSON(ctx, target, &payload); err != nil {
		return nil, fmt.Errorf("api probe: %w", err)
	}

	media := payload.GraphQL.ShortcodeMedia
	if media.VideoURL == "" {
		return nil, fmt.Errorf("no video_url in api payload")
	}

	meta := &Metadata{
		ThumbnailURL:    media.DisplayURL,
		DurationSeconds: int(media.VideoDuration),
	}
	if edges := media.EdgeMediaToCaption.Edges; len(edges) > 0 {
		meta.Title = edges[0].Node.Text
	}
	return &findings{
		candidates: []CandidateStream{{URL: media.VideoURL, Container: "mp4"}},
		meta:       meta,
	}, nil
}
