// Package manifest resolves HLS playlist references down to playable media.
package manifest

import (
	"bufio"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Variant is one alternate-quality entry of a master playlist.
type Variant struct {
	URL        string
	Bandwidth  int
	Resolution string // e.g. "1280x720", empty when undeclared
}

// Playlist is the parsed form of one manifest document.
type Playlist struct {
	Master   bool
	Variants []Variant // master only, declaration order
	Segments []string  // media only, absolute URLs
	Live     bool      // media only
}

// ErrBadManifest marks content that is neither a master nor a media playlist.
var ErrBadManifest = fmt.Errorf("not a recognizable HLS playlist")

// Parse classifies and parses manifest text. Relative URIs are resolved
// against base, the URL the manifest itself was fetched from.
func Parse(content string, base *url.URL) (*Playlist, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty manifest: %w", ErrBadManifest)
	}

	switch {
	case strings.Contains(content, "#EXT-X-STREAM-INF"):
		return parseMaster(content, base)
	case strings.Contains(content, "#EXTINF"):
		return parseMedia(content, base)
	default:
		return nil, ErrBadManifest
	}
}

func parseMaster(content string, base *url.URL) (*Playlist, error) {
	pl := &Playlist{Master: true}
	scanner := bufio.NewScanner(strings.NewReader(content))

	var pending *Variant
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#EXT-X-STREAM-INF:") {
			v := Variant{}
			attrs := strings.TrimPrefix(line, "#EXT-X-STREAM-INF:")
			for _, attr := range splitAttributes(attrs) {
				key, val, ok := strings.Cut(attr, "=")
				if !ok {
					continue
				}
				switch strings.ToUpper(strings.TrimSpace(key)) {
				case "BANDWIDTH":
					v.Bandwidth, _ = strconv.Atoi(strings.TrimSpace(val))
				case "RESOLUTION":
					v.Resolution = strings.Trim(val, `"`)
				}
			}
			pending = &v
			continue
		}

		// The variant URI is the next non-comment line after its attribute line.
		if !strings.HasPrefix(line, "#") && pending != nil {
			pending.URL = resolveRef(base, line)
			pl.Variants = append(pl.Variants, *pending)
			pending = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(pl.Variants) == 0 {
		return nil, fmt.Errorf("master playlist without variants: %w", ErrBadManifest)
	}
	return pl, nil
}

func parseMedia(content string, base *url.URL) (*Playlist, error) {
	pl := &Playlist{}
	scanner := bufio.NewScanner(strings.NewReader(content))

	var (
		hasEndList bool
		hasVODType bool
		pendingSeg bool
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-PLAYLIST-TYPE:VOD"):
			hasVODType = true
		case line == "#EXT-X-ENDLIST":
			hasEndList = true
		case strings.HasPrefix(line, "#EXTINF:"):
			pendingSeg = true
		case !strings.HasPrefix(line, "#") && pendingSeg:
			pl.Segments = append(pl.Segments, resolveRef(base, line))
			pendingSeg = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	pl.Live = !hasVODType && !hasEndList
	if len(pl.Segments) == 0 {
		return nil, fmt.Errorf("media playlist without segments: %w", ErrBadManifest)
	}
	return pl, nil
}

// MaxBandwidthVariant returns the variant with the highest declared
// bandwidth; earlier declaration wins ties.
func (p *Playlist) MaxBandwidthVariant() Variant {
	best := p.Variants[0]
	for _, v := range p.Variants[1:] {
		if v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best
}

// splitAttributes splits an attribute list on commas outside quoted values.
func splitAttributes(s string) []string {
	var (
		parts  []string
		start  int
		quoted bool
	)
	for i, r := range s {
		switch r {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// resolveRef resolves a possibly-relative playlist reference against the
// manifest's own URL.
func resolveRef(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
