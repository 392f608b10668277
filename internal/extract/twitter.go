package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

func twitterStrategies() []strategy {
	return []strategy{
		{name: "twitter/syndication-api", timeout: 2500 * time.Millisecond, run: twitterSyndicationAPI},
		{name: "twitter/og-scrape", timeout: 2500 * time.Millisecond, run: twitterOGScrape},
		{name: "twitter/oembed", timeout: 1500 * time.Millisecond, run: twitterOEmbed},
	}
}

// twitterSyndicationAPI uses the CDN endpoint that backs embedded tweets; it
// answers without authentication and lists every bitrate variant.
func twitterSyndicationAPI(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		Text         string `json:"text"`
		MediaDetails []struct {
			Type      string `json:"type"`
			VideoInfo struct {
				Variants []struct {
					Bitrate     int    `json:"bitrate"`
					ContentType string `json:"content_type"`
					URL         string `json:"url"`
				} `json:"variants"`
			} `json:"video_info"`
			MediaURLHTTPS string `json:"media_url_https"`
		} `json:"mediaDetails"`
	}

	target := fmt.Sprintf("https://cdn.syndication.twimg.com/tweet-result?id=%s&token=a", ref.ID)
	if err := c.GetJSON(ctx, target, &payload); err != nil {
		return nil, fmt.Errorf("syndication api: %w", err)
	}

	f := &findings{meta: &Metadata{Title: payload.Text}}
	for _, media := range payload.MediaDetails {
		if media.Type != "video" && media.Type != "animated_gif" {
			continue
		}
		f.meta.ThumbnailURL = media.MediaURLHTTPS
		for _, v := range media.VideoInfo.Variants {
			switch v.ContentType {
			case "video/mp4":
				f.candidates = append(f.candidates, CandidateStream{
					URL:       v.URL,
					Quality:   twitterQualityFromURL(v.URL),
					Container: "mp4",
				})
			case "application/x-mpegURL":
				f.candidates = append(f.candidates, CandidateStream{
					URL:       v.URL,
					Quality:   "auto",
					Container: "hls",
				})
			}
		}
	}

	if len(f.candidates) == 0 {
		return nil, fmt.Errorf("no video variants in tweet")
	}
	return f, nil
}

// twitterQualityFromURL derives a label from the variant path, which encodes
// dimensions as /WIDTHxHEIGHT/.
func twitterQualityFromURL(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	for _, part := range parts {
		if w, h, ok := strings.Cut(part, "x"); ok && isDigits(w) && isDigits(h) {
			return h + "p"
		}
	}
	return ""
}

func twitterOGScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	doc, err := c.GetDocument(ctx, ref.OriginalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("status page: %w", err)
	}
	return findingsFromOpenGraph(doc, "")
}

func twitterOEmbed(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		AuthorName string `json:"author_name"`
	}
	target := oembedURL("https://publish.twitter.com/oembed", ref.OriginalURL)
	if err := c.GetJSON(ctx, target, &payload); err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}
	return &findings{
		embedURL: FallbackEmbedURL(ref),
		meta:     &Metadata{Title: payload.AuthorName},
	}, nil
}
