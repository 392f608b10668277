package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// jsonAfter locates marker in body and returns the balanced JSON object that
// follows it. Scraped pages embed player state as inline script
// assignments; a plain regex cannot bound nested braces, so the object is
// scanned with string-aware brace counting.
func jsonAfter(body, marker string) (string, bool) {
	idx := strings.Index(body, marker)
	if idx < 0 {
		return "", false
	}
	rest := body[idx+len(marker):]
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return "", false
	}
	return balancedJSON(rest[start:])
}

// balancedJSON returns the prefix of s that forms one complete JSON object.
func balancedJSON(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// unmarshalLoose decodes scraped JSON, tolerating trailing garbage by
// re-bounding the object first.
func unmarshalLoose(s string, v any) error {
	if bounded, ok := balancedJSON(s); ok {
		s = bounded
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("unmarshal scraped json: %w", err)
	}
	return nil
}

// unescapeJSONString resolves escape sequences inside a scraped JSON string
// value (\/ and & are ubiquitous in playable URLs).
func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return strings.ReplaceAll(s, `\/`, "/")
	}
	return out
}
