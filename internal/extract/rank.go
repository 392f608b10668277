package extract

import (
	"regexp"
	"sort"
	"strconv"
)

var heightRe = regexp.MustCompile(`(\d{3,4})\s*[pP]\d*\b|[xX](\d{3,4})\b`)

// qualityHeight extracts the vertical resolution from a quality label such
// as "720p", "1080p60" or "1920x1080". Unparsable labels return -1 so they
// rank behind every parsed height.
func qualityHeight(label string) int {
	m := heightRe.FindStringSubmatch(label)
	if m == nil {
		return -1
	}
	for _, g := range m[1:] {
		if g != "" {
			h, err := strconv.Atoi(g)
			if err != nil {
				return -1
			}
			return h
		}
	}
	return -1
}

// rankCandidates orders candidates by parsed height descending. The sort is
// stable so declaration order breaks ties and unlabeled candidates keep
// their relative order at the tail.
func rankCandidates(candidates []CandidateStream) []CandidateStream {
	ranked := make([]CandidateStream, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return qualityHeight(ranked[i].Quality) > qualityHeight(ranked[j].Quality)
	})
	return ranked
}

// PickPreferred returns the best candidate at or below the requested height,
// falling back to the overall best when none qualifies. Candidates must
// already be ranked.
func PickPreferred(ranked []CandidateStream, preferred string) (CandidateStream, bool) {
	if len(ranked) == 0 {
		return CandidateStream{}, false
	}
	want := qualityHeight(preferred)
	if want < 0 {
		return ranked[0], true
	}
	for _, c := range ranked {
		if h := qualityHeight(c.Quality); h >= 0 && h <= want {
			return c, true
		}
	}
	return ranked[0], true
}
