package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityHeight(t *testing.T) {
	cases := []struct {
		label string
		want  int
	}{
		{"720p", 720},
		{"1080P", 1080},
		{"1080p60", 1080},
		{"720p50", 720},
		{"480 p", 480},
		{"1920x1080", 1080},
		{"1280X720", 720},
		{"hd", -1},
		{"auto", -1},
		{"", -1},
		{"4k", -1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, qualityHeight(tc.label), "label %q", tc.label)
	}
}

func TestRankCandidatesStableDescending(t *testing.T) {
	in := []CandidateStream{
		{URL: "a", Quality: "480p"},
		{URL: "b", Quality: "auto"},
		{URL: "c", Quality: "1080p"},
		{URL: "d", Quality: "480p"},
		{URL: "e", Quality: "hd"},
	}
	ranked := rankCandidates(in)

	require.Len(t, ranked, 5)
	assert.Equal(t, "c", ranked[0].URL)
	// Equal heights keep declaration order.
	assert.Equal(t, "a", ranked[1].URL)
	assert.Equal(t, "d", ranked[2].URL)
	// Unparsable labels trail, also in declaration order.
	assert.Equal(t, "b", ranked[3].URL)
	assert.Equal(t, "e", ranked[4].URL)

	// Input slice is untouched.
	assert.Equal(t, "a", in[0].URL)
}

func TestPickPreferred(t *testing.T) {
	ranked := rankCandidates([]CandidateStream{
		{URL: "hi", Quality: "1080p"},
		{URL: "mid", Quality: "720p"},
		{URL: "lo", Quality: "360p"},
	})

	c, ok := PickPreferred(ranked, "720p")
	require.True(t, ok)
	assert.Equal(t, "mid", c.URL)

	// No candidate at or below the request: best overall wins.
	c, ok = PickPreferred(ranked, "240p")
	require.True(t, ok)
	assert.Equal(t, "hi", c.URL)

	// Unparsable preference means best overall.
	c, ok = PickPreferred(ranked, "best")
	require.True(t, ok)
	assert.Equal(t, "hi", c.URL)

	_, ok = PickPreferred(nil, "720p")
	assert.False(t, ok)
}
