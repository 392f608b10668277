package extract

import (
	"fmt"
	"net/url"

	"github.com/streamlens/streamlens/internal/platform"
)

// FallbackEmbedURL constructs the platform-native embeddable player URL used
// when every strategy fails. Empty only for generic references, which have
// no player to fall back to.
func FallbackEmbedURL(ref platform.VideoRef) string {
	switch ref.Platform {
	case platform.YouTube:
		return fmt.Sprintf("https://www.youtube-nocookie.com/embed/%s?autoplay=1&rel=0", ref.ID)
	case platform.Dailymotion:
		return fmt.Sprintf("https://www.dailymotion.com/embed/video/%s?autoplay=1", ref.ID)
	case platform.Vimeo:
		return fmt.Sprintf("https://player.vimeo.com/video/%s?autoplay=1", ref.ID)
	case platform.Facebook:
		return "https://www.facebook.com/plugins/video.php?autoplay=1&href=" + url.QueryEscape(ref.OriginalURL)
	case platform.Instagram:
		if ref.ID == "" {
			return ""
		}
		return fmt.Sprintf("https://www.instagram.com/p/%s/embed/", ref.ID)
	case platform.Twitter:
		return "https://twitframe.com/show?url=" + url.QueryEscape(ref.OriginalURL)
	case platform.TikTok:
		return fmt.Sprintf("https://www.tiktok.com/embed/v2/%s", ref.ID)
	case platform.Twitch:
		return twitchEmbedURL(ref)
	default:
		return ""
	}
}

func twitchEmbedURL(ref platform.VideoRef) string {
	// VOD IDs are numeric; anything else is treated as a channel name.
	if ref.ID != "" && isDigits(ref.ID) {
		return fmt.Sprintf("https://player.twitch.tv/?video=v%s&parent=localhost&autoplay=true", ref.ID)
	}
	return fmt.Sprintf("https://player.twitch.tv/?channel=%s&parent=localhost&autoplay=true", ref.ID)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StealthURLs lists embed endpoints worth relaying for a reference, best
// first. The first entry matches FallbackEmbedURL.
func StealthURLs(ref platform.VideoRef) []string {
	primary := FallbackEmbedURL(ref)
	if primary == "" {
		return nil
	}
	urls := []string{primary}
	switch ref.Platform {
	case platform.YouTube:
		urls = append(urls,
			fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1", ref.ID),
			fmt.Sprintf("https://m.youtube.com/watch?v=%s", ref.ID),
		)
	case platform.Vimeo:
		urls = append(urls, fmt.Sprintf("https://vimeo.com/%s", ref.ID))
	case platform.Dailymotion:
		urls = append(urls, fmt.Sprintf("https://www.dailymotion.com/video/%s", ref.ID))
	}
	return urls
}
