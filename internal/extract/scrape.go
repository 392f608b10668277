package extract

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metaContent returns the content attribute of the first matching
// OpenGraph/meta tag.
func metaContent(doc *goquery.Document, properties ...string) string {
	for _, prop := range properties {
		sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, prop, prop)
		if content, ok := doc.Find(sel).First().Attr("content"); ok && content != "" {
			return content
		}
	}
	return ""
}

// findingsFromOpenGraph builds findings from OpenGraph video tags. Most
// platforms expose at least og:video on their public watch pages.
func findingsFromOpenGraph(doc *goquery.Document, containerHint string) (*findings, error) {
	videoURL := metaContent(doc,
		"og:video:secure_url", "og:video:url", "og:video", "twitter:player:stream")
	if videoURL == "" {
		return nil, fmt.Errorf("no og:video tag")
	}

	container := containerHint
	if container == "" {
		container = containerFromURL(videoURL)
	}

	quality := ""
	if h := metaContent(doc, "og:video:height"); h != "" {
		quality = h + "p"
	}

	f := &findings{
		candidates: []CandidateStream{{
			URL:       videoURL,
			Quality:   quality,
			Container: container,
		}},
		meta: &Metadata{
			Title:        metaContent(doc, "og:title", "twitter:title"),
			ThumbnailURL: metaContent(doc, "og:image", "twitter:image"),
		},
	}
	return f, nil
}

func containerFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u8":
		return "hls"
	case ".mp4", ".m4v":
		return "mp4"
	case ".webm":
		return "webm"
	case ".mov":
		return "mov"
	case ".mkv":
		return "mkv"
	case ".ts":
		return "ts"
	default:
		return ""
	}
}
