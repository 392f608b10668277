// Package platform classifies raw video links into a platform tag and a
// canonical video identifier.
package platform

import (
	"net/url"
	"regexp"
	"strings"
)

// Tag identifies a supported video platform.
type Tag string

const (
	YouTube     Tag = "youtube"
	Dailymotion Tag = "dailymotion"
	Vimeo       Tag = "vimeo"
	Facebook    Tag = "facebook"
	Instagram   Tag = "instagram"
	Twitter     Tag = "twitter"
	TikTok      Tag = "tiktok"
	Twitch      Tag = "twitch"
	Generic     Tag = "generic"
)

// VideoRef is the canonical identity of one inbound video link. It is
// created once per request and never mutated.
type VideoRef struct {
	Platform    Tag
	ID          string
	OriginalURL string
}

// CacheKey returns the memoization key for this reference. When no ID could
// be extracted the raw URL serves as the key.
func (r VideoRef) CacheKey() string {
	if r.ID == "" {
		return r.OriginalURL
	}
	return string(r.Platform) + ":" + r.ID
}

var (
	vimeoIDRe   = regexp.MustCompile(`^/(?:video/)?(\d+)`)
	tiktokIDRe  = regexp.MustCompile(`/video/(\d+)`)
	twitterIDRe = regexp.MustCompile(`/status(?:es)?/(\d+)`)
)

// Detect classifies a raw URL. The boolean is false only when the URL is
// syntactically unusable; an unrecognized but well-formed URL still yields a
// generic reference for the cascade to probe.
func Detect(raw string) (VideoRef, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return VideoRef{}, false
	}

	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	ref := VideoRef{OriginalURL: raw}

	switch {
	case host == "youtu.be":
		ref.Platform = YouTube
		ref.ID = firstSegment(u.Path)
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com") || host == "youtube-nocookie.com":
		ref.Platform = YouTube
		ref.ID = youtubeID(u)
	case host == "dai.ly":
		ref.Platform = Dailymotion
		ref.ID = firstSegment(u.Path)
	case host == "dailymotion.com" || strings.HasSuffix(host, ".dailymotion.com"):
		ref.Platform = Dailymotion
		ref.ID = afterSegment(u.Path, "video")
	case host == "vimeo.com" || strings.HasSuffix(host, ".vimeo.com"):
		ref.Platform = Vimeo
		if m := vimeoIDRe.FindStringSubmatch(u.Path); m != nil {
			ref.ID = m[1]
		}
	case host == "facebook.com" || strings.HasSuffix(host, ".facebook.com") || host == "fb.watch":
		ref.Platform = Facebook
		ref.ID = facebookID(u)
	case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com"):
		ref.Platform = Instagram
		ref.ID = instagramID(u.Path)
	case host == "twitter.com" || host == "x.com" || strings.HasSuffix(host, ".twitter.com"):
		ref.Platform = Twitter
		if m := twitterIDRe.FindStringSubmatch(u.Path); m != nil {
			ref.ID = m[1]
		}
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		ref.Platform = TikTok
		if m := tiktokIDRe.FindStringSubmatch(u.Path); m != nil {
			ref.ID = m[1]
		}
	case host == "twitch.tv" || strings.HasSuffix(host, ".twitch.tv"):
		ref.Platform = Twitch
		ref.ID = twitchID(u.Path)
	default:
		// Well-formed but not a known platform link. Still a valid generic
		// reference; the cascade probes it. No ID is extracted, so the raw
		// URL keys the cache and same-named files on different hosts never
		// collide.
		ref.Platform = Generic
	}

	return ref, true
}

func youtubeID(u *url.URL) string {
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	for _, prefix := range []string{"/embed/", "/shorts/", "/live/", "/v/"} {
		if strings.HasPrefix(u.Path, prefix) {
			return firstSegment(strings.TrimPrefix(u.Path, prefix))
		}
	}
	return ""
}

func facebookID(u *url.URL) string {
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if id := afterSegment(u.Path, "videos"); id != "" {
		return id
	}
	if id := afterSegment(u.Path, "reel"); id != "" {
		return id
	}
	if u.Hostname() == "fb.watch" {
		return firstSegment(u.Path)
	}
	return ""
}

func instagramID(p string) string {
	for _, marker := range []string{"reel", "reels", "p", "tv"} {
		if id := afterSegment(p, marker); id != "" {
			return id
		}
	}
	return ""
}

func twitchID(p string) string {
	if id := afterSegment(p, "videos"); id != "" {
		return id
	}
	if id := afterSegment(p, "clip"); id != "" {
		return id
	}
	// Channel pages: /<channel>
	return firstSegment(p)
}

// firstSegment returns the first non-empty path segment.
func firstSegment(p string) string {
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}

// afterSegment returns the path segment immediately following marker.
func afterSegment(p, marker string) string {
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i, seg := range segs {
		if seg == marker && i+1 < len(segs) && segs[i+1] != "" {
			return segs[i+1]
		}
	}
	return ""
}
