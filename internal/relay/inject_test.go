package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjectNeutralizerBeforeHeadClose(t *testing.T) {
	out := string(injectNeutralizer([]byte("<HTML><HEAD></HEAD><BODY>x</BODY></HTML>"), ModeStandard, "example.com"))

	scriptAt := strings.Index(out, "<script>")
	headCloseAt := strings.Index(strings.ToLower(out), "</head>")
	assert.True(t, scriptAt >= 0 && scriptAt < headCloseAt)
	assert.Contains(t, out, "'example.com'")
	assert.NotContains(t, out, "postMessage = function")
}

func TestInjectNeutralizerTopOfBodyWhenNoHead(t *testing.T) {
	out := string(injectNeutralizer([]byte(`<html><body class="page">x</body></html>`), ModeAdvanced, ""))

	bodyAt := strings.Index(out, `<body class="page">`)
	scriptAt := strings.Index(out, "<script>")
	assert.Equal(t, bodyAt+len(`<body class="page">`), scriptAt)
	assert.Contains(t, out, "postMessage = function")
}

func TestInjectNeutralizerBareFragment(t *testing.T) {
	out := string(injectNeutralizer([]byte("<p>no head, no body</p>"), ModeStandard, ""))
	assert.True(t, strings.HasPrefix(out, "<script>"))
	assert.True(t, strings.HasSuffix(out, "<p>no head, no body</p>"))
}

func TestJSStringSanitizes(t *testing.T) {
	assert.Equal(t, "''", jsString(""))
	assert.Equal(t, "'example.com'", jsString("example.com"))
	assert.Equal(t, "'evilscript'", jsString(`evil'<script`))
}
