package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectYouTubeVariants(t *testing.T) {
	variants := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	for _, raw := range variants {
		ref, ok := Detect(raw)
		require.True(t, ok, raw)
		assert.Equal(t, YouTube, ref.Platform, raw)
		assert.Equal(t, "dQw4w9WgXcQ", ref.ID, raw)
	}
}

func TestDetectTable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		tag  Tag
		id   string
	}{
		{"dailymotion watch", "https://www.dailymotion.com/video/x8abcde", Dailymotion, "x8abcde"},
		{"dailymotion short", "https://dai.ly/x8abcde", Dailymotion, "x8abcde"},
		{"vimeo", "https://vimeo.com/123456789", Vimeo, "123456789"},
		{"vimeo video path", "https://vimeo.com/video/123456789", Vimeo, "123456789"},
		{"facebook watch", "https://www.facebook.com/watch/?v=1234567890", Facebook, "1234567890"},
		{"facebook videos", "https://www.facebook.com/somepage/videos/1234567890/", Facebook, "1234567890"},
		{"instagram reel", "https://www.instagram.com/reel/Cabc123xyz/", Instagram, "Cabc123xyz"},
		{"instagram post", "https://www.instagram.com/p/Cabc123xyz/", Instagram, "Cabc123xyz"},
		{"twitter status", "https://twitter.com/user/status/1234567890123456789", Twitter, "1234567890123456789"},
		{"x.com status", "https://x.com/user/status/1234567890123456789", Twitter, "1234567890123456789"},
		{"tiktok", "https://www.tiktok.com/@someone/video/7012345678901234567", TikTok, "7012345678901234567"},
		{"twitch vod", "https://www.twitch.tv/videos/1234567890", Twitch, "1234567890"},
		{"twitch channel", "https://www.twitch.tv/somechannel", Twitch, "somechannel"},
		{"direct mp4", "https://cdn.example.com/media/clip.mp4", Generic, ""},
		{"direct m3u8", "https://cdn.example.com/live/master.m3u8", Generic, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := Detect(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.tag, ref.Platform)
			assert.Equal(t, tt.id, ref.ID)
			assert.Equal(t, tt.raw, ref.OriginalURL)
		})
	}
}

func TestDetectInvalid(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://example.com/file.mp4", "http://"} {
		_, ok := Detect(raw)
		assert.False(t, ok, raw)
	}
}

func TestDetectUnknownHostWithoutExtension(t *testing.T) {
	ref, ok := Detect("https://example.com/page")
	require.True(t, ok)
	assert.Equal(t, Generic, ref.Platform)
	assert.Empty(t, ref.ID)
	assert.Equal(t, "https://example.com/page", ref.CacheKey())
}

func TestCacheKey(t *testing.T) {
	ref := VideoRef{Platform: YouTube, ID: "abc", OriginalURL: "https://youtu.be/abc"}
	assert.Equal(t, "youtube:abc", ref.CacheKey())
}
