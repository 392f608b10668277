package manifest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

const masterFixture = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=500000,RESOLUTION=640x360
low/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1500000,RESOLUTION=1280x720
mid/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=3000000,RESOLUTION=1920x1080
high/index.m3u8
`

func TestParseMaster(t *testing.T) {
	base := mustParseURL(t, "https://cdn.example.com/hls/master.m3u8")

	pl, err := Parse(masterFixture, base)
	require.NoError(t, err)
	require.True(t, pl.Master)
	require.Len(t, pl.Variants, 3)

	assert.Equal(t, 500000, pl.Variants[0].Bandwidth)
	assert.Equal(t, "640x360", pl.Variants[0].Resolution)
	assert.Equal(t, "https://cdn.example.com/hls/low/index.m3u8", pl.Variants[0].URL)

	best := pl.MaxBandwidthVariant()
	assert.Equal(t, 3000000, best.Bandwidth)
	assert.Equal(t, "https://cdn.example.com/hls/high/index.m3u8", best.URL)
}

func TestParseMasterQuotedCodecs(t *testing.T) {
	content := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=800000,CODECS="avc1.4d401f,mp4a.40.2",RESOLUTION=960x540
variant.m3u8
`
	pl, err := Parse(content, mustParseURL(t, "https://cdn.example.com/x/master.m3u8"))
	require.NoError(t, err)
	require.Len(t, pl.Variants, 1)
	assert.Equal(t, 800000, pl.Variants[0].Bandwidth)
	assert.Equal(t, "960x540", pl.Variants[0].Resolution)
}

func TestParseMediaRelativeSegments(t *testing.T) {
	content := `#EXTM3U
#EXT-X-PLAYLIST-TYPE:VOD
#EXTINF:10.0,
seg-001.ts
#EXTINF:10.0,
seg-002.ts
#EXT-X-ENDLIST
`
	base := mustParseURL(t, "https://cdn.example.com/vod/720p/index.m3u8")
	pl, err := Parse(content, base)
	require.NoError(t, err)

	assert.False(t, pl.Master)
	assert.False(t, pl.Live)
	require.Len(t, pl.Segments, 2)
	// Segments resolve against the manifest's own URL, not the caller's input.
	assert.Equal(t, "https://cdn.example.com/vod/720p/seg-001.ts", pl.Segments[0])
	assert.Equal(t, "https://cdn.example.com/vod/720p/seg-002.ts", pl.Segments[1])
}

func TestParseMediaLiveness(t *testing.T) {
	live := "#EXTM3U\n#EXTINF:6.0,\nseg1.ts\n#EXTINF:6.0,\nseg2.ts\n"
	ended := live + "#EXT-X-ENDLIST\n"

	base := mustParseURL(t, "https://cdn.example.com/live/index.m3u8")

	pl, err := Parse(live, base)
	require.NoError(t, err)
	assert.True(t, pl.Live, "no ENDLIST and no VOD type means live")

	pl, err = Parse(ended, base)
	require.NoError(t, err)
	assert.False(t, pl.Live, "ENDLIST means not live")
}

func TestParseErrors(t *testing.T) {
	base := mustParseURL(t, "https://cdn.example.com/index.m3u8")

	_, err := Parse("", base)
	require.ErrorIs(t, err, ErrBadManifest)

	_, err = Parse("   \n\n  ", base)
	require.ErrorIs(t, err, ErrBadManifest)

	_, err = Parse("#EXTM3U\n# just comments\n", base)
	require.ErrorIs(t, err, ErrBadManifest)

	_, err = Parse("#EXTM3U\n#EXTINF:10.0,\n", base)
	require.ErrorIs(t, err, ErrBadManifest)
}

func TestParseAbsoluteSegmentsKept(t *testing.T) {
	content := "#EXTM3U\n#EXTINF:4.0,\nhttps://other.example.net/a.ts\n#EXT-X-ENDLIST\n"
	pl, err := Parse(content, mustParseURL(t, "https://cdn.example.com/index.m3u8"))
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.net/a.ts", pl.Segments[0])
}
