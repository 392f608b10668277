package relay

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
)

// neutralizerScript defeats the frame-busting checks embed pages run on
// load: self-referencing parent/top/frameElement, a spoofed document host,
// and scrubbed automation markers.
const neutralizerScript = `(function () {
  try {
    Object.defineProperty(window, 'parent', { get: function () { return window; } });
    Object.defineProperty(window, 'top', { get: function () { return window; } });
    Object.defineProperty(window, 'frameElement', { get: function () { return null; } });
  } catch (e) {}
  try {
    if (SPOOFED_HOST) {
      Object.defineProperty(document, 'domain', { get: function () { return SPOOFED_HOST; }, set: function () {} });
      Object.defineProperty(location, 'hostname', { get: function () { return SPOOFED_HOST; } });
    }
  } catch (e) {}
  try {
    Object.defineProperty(navigator, 'webdriver', { get: function () { return undefined; } });
    Object.defineProperty(navigator, 'plugins', { get: function () { return [1, 2, 3]; } });
  } catch (e) {}
})();`

// advancedScript additionally silences the channels a page can use to learn
// it is framed: cross-window messaging and focus probing.
const advancedScript = `(function () {
  try {
    window.postMessage = function () {};
    var orig = window.addEventListener;
    window.addEventListener = function (type, listener, opts) {
      if (type === 'message' || type === 'blur' || type === 'focus') { return; }
      return orig.call(window, type, listener, opts);
    };
  } catch (e) {}
})();`

// injectNeutralizer inserts the rewrite payload before </head>, or at the
// top of <body> when the document has no head, or as a raw prefix when it
// has neither.
func injectNeutralizer(markup []byte, mode Mode, spoofedHost string) []byte {
	script := buildScript(mode, spoofedHost)

	if idx := indexFold(markup, "</head>"); idx >= 0 {
		return spliceAt(markup, idx, script)
	}
	if idx := indexFold(markup, "<body"); idx >= 0 {
		// Skip past the body tag's closing bracket.
		if end := bytes.IndexByte(markup[idx:], '>'); end >= 0 {
			return spliceAt(markup, idx+end+1, script)
		}
	}
	out := make([]byte, 0, len(script)+len(markup))
	out = append(out, script...)
	return append(out, markup...)
}

func buildScript(mode Mode, spoofedHost string) []byte {
	body := strings.ReplaceAll(neutralizerScript, "SPOOFED_HOST", jsString(spoofedHost))
	if mode == ModeAdvanced {
		body += "\n" + advancedScript
	}
	return []byte("<script>" + body + "</script>")
}

func jsString(s string) string {
	if s == "" {
		return "''"
	}
	s = strings.ReplaceAll(s, `\`, ``)
	s = strings.ReplaceAll(s, `'`, ``)
	s = strings.ReplaceAll(s, `<`, ``)
	return "'" + s + "'"
}

func spliceAt(markup []byte, idx int, insert []byte) []byte {
	out := make([]byte, 0, len(markup)+len(insert))
	out = append(out, markup[:idx]...)
	out = append(out, insert...)
	return append(out, markup[idx:]...)
}

// indexFold is a case-insensitive bytes.Index for ASCII needles.
func indexFold(haystack []byte, needle string) int {
	return bytes.Index(bytes.ToLower(haystack), []byte(needle))
}

// forgedClientIP fabricates a plausible public address for the forwarded-IP
// headers in advanced mode.
func forgedClientIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", 11+rand.IntN(200), rand.IntN(256), rand.IntN(256), 1+rand.IntN(254))
}
