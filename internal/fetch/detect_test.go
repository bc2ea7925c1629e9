package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCloudflareChallenge(t *testing.T) {
	challenge := `<html><head><title>Just a moment...</title></head>
<body><script src="/cdn-cgi/challenge-platform/h/b/orchestrate"></script>
<noscript>Enable JavaScript and cookies to continue</noscript></body></html>`
	assert.True(t, DetectCloudflareChallenge(challenge))

	// A single mention is not a challenge page.
	blogPost := `<html><body><p>We moved our DNS to Cloudflare and enabled Turnstile.</p></body></html>`
	assert.False(t, DetectCloudflareChallenge(blogPost))

	assert.False(t, DetectCloudflareChallenge("<html><body>normal page</body></html>"))
}

func TestDetectSPA(t *testing.T) {
	assert.True(t, DetectSPA(`<html><body><div id="root"></div></body></html>`))
	assert.True(t, DetectSPA(`<html><body><div id="__next"></div><script>__NEXT_DATA__={}</script></body></html>`))
	assert.False(t, DetectSPA(`<html><body><article>server rendered</article></body></html>`))
}

func TestNeedsRendering(t *testing.T) {
	empty := `<html><body><div id="root"></div></body></html>`
	assert.True(t, NeedsRendering(empty), "app shell with no text needs rendering")

	thin := `<html><body><p>` + strings.Repeat("word ", 80) + `</p><div id="app"></div></body></html>`
	assert.True(t, NeedsRendering(thin), "thin text plus an app mount point needs rendering")

	thinNoSPA := `<html><body><p>` + strings.Repeat("word ", 80) + `</p></body></html>`
	assert.False(t, NeedsRendering(thinNoSPA), "thin but static content stands on its own")

	rich := `<html><body><div id="root"></div><p>` + strings.Repeat("word ", 200) + `</p></body></html>`
	assert.False(t, NeedsRendering(rich), "plenty of static text needs no render")
}

func TestStaticWordCountIgnoresScripts(t *testing.T) {
	html := `<html><body><p>three little words</p><script>` +
		strings.Repeat("var x = 1; ", 100) + `</script></body></html>`
	assert.Equal(t, 3, staticWordCount(html))
}
