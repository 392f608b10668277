package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

// playerResponse mirrors the parts of the YouTube player payload we consume,
// whether it arrives from the innertube API or scraped out of page markup.
type playerResponse struct {
	StreamingData struct {
		Formats         []ytFormat `json:"formats"`
		AdaptiveFormats []ytFormat `json:"adaptiveFormats"`
		HLSManifestURL  string     `json:"hlsManifestUrl"`
	} `json:"streamingData"`
	VideoDetails struct {
		Title         string `json:"title"`
		LengthSeconds string `json:"lengthSeconds"`
		Thumbnail     struct {
			Thumbnails []struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
}

type ytFormat struct {
	URL           string `json:"url"`
	MimeType      string `json:"mimeType"`
	QualityLabel  string `json:"qualityLabel"`
	ContentLength string `json:"contentLength"`
	FPS           int    `json:"fps"`
}

func youtubeStrategies() []strategy {
	return []strategy{
		{name: "youtube/player-api", timeout: 3 * time.Second, run: youtubePlayerAPI},
		{name: "youtube/embed-scrape", timeout: 2500 * time.Millisecond, run: youtubeEmbedScrape},
		{name: "youtube/watch-scrape", timeout: 3 * time.Second, run: youtubeWatchScrape},
		{name: "youtube/mobile-scrape", timeout: 2500 * time.Millisecond, run: youtubeMobileScrape},
		{name: "youtube/oembed", timeout: 1500 * time.Millisecond, run: youtubeOEmbed},
	}
}

// youtubePlayerAPI calls the internal player endpoint with an Android client
// profile, which returns unciphered stream URLs for most videos.
func youtubePlayerAPI(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	payload := map[string]any{
		"videoId": ref.ID,
		"context": map[string]any{
			"client": map[string]any{
				"clientName":        "ANDROID",
				"clientVersion":     "19.09.37",
				"androidSdkVersion": 30,
				"hl":                "en",
			},
		},
	}

	var pr playerResponse
	endpoint := "https://www.youtube.com/youtubei/v1/player?prettyPrint=false"
	if err := c.PostJSON(ctx, endpoint, payload, &pr); err != nil {
		return nil, fmt.Errorf("player api: %w", err)
	}
	return youtubeFindings(&pr)
}

func youtubeEmbedScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	body, err := c.GetString(ctx, "https://www.youtube.com/embed/"+ref.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("embed page: %w", err)
	}
	return youtubeScrapeBody(body)
}

func youtubeWatchScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	body, err := c.GetString(ctx, "https://www.youtube.com/watch?v="+ref.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	return youtubeScrapeBody(body)
}

func youtubeMobileScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	body, err := c.GetString(ctx, "https://m.youtube.com/watch?v="+ref.ID, map[string]string{
		"User-Agent": mobileUA,
	})
	if err != nil {
		return nil, fmt.Errorf("mobile page: %w", err)
	}
	return youtubeScrapeBody(body)
}

// youtubeOEmbed yields metadata plus the privacy-domain embed URL. It never
// produces direct candidates, but a reachable embed is a usable outcome.
func youtubeOEmbed(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	var payload struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	target := oembedURL("https://www.youtube.com/oembed", "https://www.youtube.com/watch?v="+ref.ID)
	if err := c.GetJSON(ctx, target, &payload); err != nil {
		return nil, fmt.Errorf("oembed: %w", err)
	}
	return &findings{
		embedURL: FallbackEmbedURL(ref),
		meta:     &Metadata{Title: payload.Title, ThumbnailURL: payload.ThumbnailURL},
	}, nil
}

func youtubeScrapeBody(body string) (*findings, error) {
	blob, ok := jsonAfter(body, "ytInitialPlayerResponse")
	if !ok {
		return nil, fmt.Errorf("no player response in page")
	}
	var pr playerResponse
	if err := unmarshalLoose(blob, &pr); err != nil {
		return nil, fmt.Errorf("parse player response: %w", err)
	}
	return youtubeFindings(&pr)
}

func youtubeFindings(pr *playerResponse) (*findings, error) {
	f := &findings{}

	for _, fmtEntry := range append(pr.StreamingData.Formats, pr.StreamingData.AdaptiveFormats...) {
		if fmtEntry.URL == "" {
			// Ciphered format; deciphering player JS is too slow for a
			// raced strategy, another one can win instead.
			continue
		}
		// Formats without a quality label are audio-only.
		if fmtEntry.QualityLabel == "" {
			continue
		}
		size, _ := strconv.ParseInt(fmtEntry.ContentLength, 10, 64)
		f.candidates = append(f.candidates, CandidateStream{
			URL:             fmtEntry.URL,
			Quality:         fmtEntry.QualityLabel,
			Container:       containerFromMime(fmtEntry.MimeType),
			ApproxSizeBytes: size,
			FrameRate:       float64(fmtEntry.FPS),
		})
	}
	if hls := pr.StreamingData.HLSManifestURL; hls != "" {
		f.candidates = append(f.candidates, CandidateStream{
			URL:       hls,
			Quality:   "auto",
			Container: "hls",
		})
	}

	if len(f.candidates) == 0 {
		return nil, fmt.Errorf("no playable formats")
	}

	meta := &Metadata{Title: pr.VideoDetails.Title}
	if secs, err := strconv.Atoi(pr.VideoDetails.LengthSeconds); err == nil {
		meta.DurationSeconds = secs
	}
	if thumbs := pr.VideoDetails.Thumbnail.Thumbnails; len(thumbs) > 0 {
		meta.ThumbnailURL = thumbs[len(thumbs)-1].URL
	}
	f.meta = meta
	return f, nil
}

func containerFromMime(mime string) string {
	switch {
	case strings.Contains(mime, "mp4"):
		return "mp4"
	case strings.Contains(mime, "webm"):
		return "webm"
	case strings.Contains(mime, "mpegurl"):
		return "hls"
	default:
		return ""
	}
}
