package extract

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

var ttPlayAddrRe = regexp.MustCompile(`"playAddr"\s*:\s*"([^"]+)"`)

func tiktokStrategies() []strategy {
	return []strategy{
		{name: "tiktok/page-scrape", timeout: 3 * time.Second, run: tiktokPageScrape},
		{name: "tiktok/mobile-scrape", timeout: 2500 * time.Millisecond, run: tiktokMobileScrape},
		{name: "tiktok/oembed", timeout: 1500 * time.Millisecond, run: tiktokOEmbed},
	}
}

// tiktokPageScrape pulls the playAddr out of the hydration state embedded in
// the watch page. The URL is bound to the fetching session's cookies, so it
// gets the page referer attached as a required header.
func tiktokPageScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	body, err := c.GetString(ctx, ref.OriginalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	m := ttPlayAddrRe.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("no playAddr in page")
	}
	return &findings{candidates: []CandidateStream{{
		URL:       unescapeJSONString(m[1]),
		Container: "mp4",
		RequiredHeaders: map[string]string{
			"Referer": "https://www.tiktok.com/",
		},
	}}}, nil
}

func tiktokMobileScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	doc, err := c.GetDocument(ctx, ref.OriginalURL, map[string]string{"User-Agent": mobileUA})
	if err != nil {
		return nil, fmt.Errorf("mobile page: %w", err)
	}
	f, err := findingsFromOpenGraph(doc, "mp4")
	if err != nil {
		return nil, err
	}
	for i := range f.candidates {
		f.candidates[i].RequiredHeaders = map[string]string{
			"Referer": "https://www.tiktok.com/",
		}
	}
	return f, nil
}

func tiktokOEmbed(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	target := oembedURL("https://www.tiktok.com/oembed", ref.OriginalURL)
	if err := c.GetJSON(ctx, target, &payload); err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}
	return &findings{
		embedURL: FallbackEmbedURL(ref),
		meta:     &Metadata{Title: payload.Title, ThumbnailURL: payload.ThumbnailURL},
	}, nil
}
