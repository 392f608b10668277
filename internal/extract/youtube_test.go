package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchPageFixture = `<!DOCTYPE html><html><head><title>t</title></head><body>
<script>var ytInitialPlayerResponse = {
  "streamingData": {
    "formats": [
      {"url": "https://rr1.example.com/videoplayback?itag=18", "mimeType": "video/mp4; codecs=\"avc1.42001E\"", "qualityLabel": "360p", "contentLength": "1048576", "fps": 30},
      {"url": "", "mimeType": "video/mp4", "qualityLabel": "720p"}
    ],
    "adaptiveFormats": [
      {"url": "https://rr1.example.com/videoplayback?itag=137", "mimeType": "video/mp4; codecs=\"avc1.640028\"", "qualityLabel": "1080p", "contentLength": "8388608", "fps": 30},
      {"url": "https://rr1.example.com/videoplayback?itag=140", "mimeType": "audio/mp4; codecs=\"mp4a.40.2\""}
    ],
    "hlsManifestUrl": "https://manifest.example.com/hls/master.m3u8"
  },
  "videoDetails": {
    "title": "Test Clip",
    "lengthSeconds": "212",
    "thumbnail": {"thumbnails": [{"url": "https://i.example.com/default.jpg"}, {"url": "https://i.example.com/maxres.jpg"}]}
  }
};if (window.ytcsi) {}</script>
</body></html>`

func TestYouTubeScrapeBody(t *testing.T) {
	f, err := youtubeScrapeBody(watchPageFixture)
	require.NoError(t, err)
	require.True(t, f.usable())

	// Ciphered (empty URL) and audio-only (no quality label) formats are
	// skipped; the HLS manifest is appended as an auto candidate.
	require.Len(t, f.candidates, 3)
	assert.Equal(t, "360p", f.candidates[0].Quality)
	assert.Equal(t, "mp4", f.candidates[0].Container)
	assert.Equal(t, int64(1048576), f.candidates[0].ApproxSizeBytes)
	assert.Equal(t, "1080p", f.candidates[1].Quality)
	assert.Equal(t, "auto", f.candidates[2].Quality)
	assert.Equal(t, "hls", f.candidates[2].Container)

	require.NotNil(t, f.meta)
	assert.Equal(t, "Test Clip", f.meta.Title)
	assert.Equal(t, 212, f.meta.DurationSeconds)
	assert.Equal(t, "https://i.example.com/maxres.jpg", f.meta.ThumbnailURL)
}

func TestYouTubeScrapeBodyNoPlayerResponse(t *testing.T) {
	_, err := youtubeScrapeBody("<html><body>nothing here</body></html>")
	assert.Error(t, err)
}

func TestYouTubeFindingsRejectsAllCiphered(t *testing.T) {
	pr := &playerResponse{}
	pr.StreamingData.Formats = []ytFormat{{URL: "", QualityLabel: "720p"}}

	_, err := youtubeFindings(pr)
	assert.Error(t, err)
}

func TestContainerFromMime(t *testing.T) {
	assert.Equal(t, "mp4", containerFromMime(`video/mp4; codecs="avc1"`))
	assert.Equal(t, "webm", containerFromMime("video/webm"))
	assert.Equal(t, "hls", containerFromMime("application/vnd.apple.mpegurl"))
	assert.Equal(t, "", containerFromMime("application/octet-stream"))
}
