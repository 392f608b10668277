package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

func twitchStrategies() []strategy {
	return []strategy{
		{name: "twitch/og-scrape", timeout: 2500 * time.Millisecond, run: twitchOGScrape},
		{name: "twitch/embed-probe", timeout: 2 * time.Second, run: twitchEmbedProbe},
	}
}

func twitchOGScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	doc, err := c.GetDocument(ctx, ref.OriginalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("channel page: %w", err)
	}

	f, err := findingsFromOpenGraph(doc, "")
	if err != nil {
		// Twitch pages rarely expose og:video anymore; metadata alone plus
		// the player embed is still a usable answer.
		title := metaContent(doc, "og:title", "twitter:title")
		if title == "" {
			return nil, err
		}
		return &findings{
			embedURL: twitchEmbedURL(ref),
			meta: &Metadata{
				Title:        title,
				ThumbnailURL: metaContent(doc, "og:image"),
			},
		}, nil
	}
	return f, nil
}

// twitchEmbedProbe verifies the player endpoint answers before handing it
// out as an embed result.
func twitchEmbedProbe(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	embed := twitchEmbedURL(ref)
	resp, err := c.Head(ctx, embed)
	if err != nil {
		return nil, fmt.Errorf("embed probe: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("embed probe: status %d", resp.StatusCode)
	}
	return &findings{embedURL: embed}, nil
}
