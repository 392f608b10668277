package extract

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/streamlens/streamlens/internal/platform"
)

var (
	fbPlayableHDRe = regexp.MustCompile(`"playable_url_quality_hd"\s*:\s*"([^"]+)"`)
	fbPlayableSDRe = regexp.MustCompile(`"playable_url"\s*:\s*"([^"]+)"`)
	fbVideoHrefRe  = regexp.MustCompile(`href="(/video_redirect/[^"]+)"`)
)

func facebookStrategies() []strategy {
	return []strategy{
		{name: "facebook/watch-scrape", timeout: 3 * time.Second, run: facebookWatchScrape},
		{name: "facebook/mobile-scrape", timeout: 2500 * time.Millisecond, run: facebookMobileScrape},
		{name: "facebook/og-scrape", timeout: 2500 * time.Millisecond, run: facebookOGScrape},
	}
}

// facebookWatchScrape pulls playable_url fields out of the watch page's
// inline data. HD and SD variants are separate keys.
func facebookWatchScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	body, err := c.GetString(ctx, ref.OriginalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	f := &findings{}
	if m := fbPlayableHDRe.FindStringSubmatch(body); m != nil {
		f.candidates = append(f.candidates, CandidateStream{
			URL:       unescapeJSONString(m[1]),
			Quality:   "720p",
			Container: "mp4",
		})
	}
	if m := fbPlayableSDRe.FindStringSubmatch(body); m != nil {
		f.candidates = append(f.candidates, CandidateStream{
			URL:       unescapeJSONString(m[1]),
			Quality:   "360p",
			Container: "mp4",
		})
	}
	if len(f.candidates) == 0 {
		return nil, fmt.Errorf("no playable_url in page")
	}
	return f, nil
}

// facebookMobileScrape uses the basic mobile site, which links videos
// through plain redirect anchors.
func facebookMobileScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	target := "https://mbasic.facebook.com/video.php?v=" + ref.ID
	body, err := c.GetString(ctx, target, map[string]string{"User-Agent": mobileUA})
	if err != nil {
		return nil, fmt.Errorf("mobile page: %w", err)
	}

	m := fbVideoHrefRe.FindStringSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("no video redirect on mobile page")
	}
	return &findings{candidates: []CandidateStream{{
		URL:       "https://mbasic.facebook.com" + unescapeJSONString(m[1]),
		Container: "mp4",
	}}}, nil
}

func facebookOGScrape(ctx context.Context, c *Client, ref platform.VideoRef) (*findings, error) {
	doc, err := c.GetDocument(ctx, ref.OriginalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("og page: %w", err)
	}
	return findingsFromOpenGraph(doc, "")
}
