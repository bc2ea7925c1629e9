package fetch

import (
	"regexp"
	"strings"
)

// cloudflarePatterns are markers of a Cloudflare challenge interstitial.
// A real challenge page contains several of them, so a single match (say, a
// blog post about Cloudflare) is not enough.
var cloudflarePatterns = []string{
	"cf-browser-verification",
	"challenge-platform",
	"cf_chl_opt",
	"__cf_chl_",
	"turnstile",
	"checking your browser",
	"just a moment",
	"enable javascript and cookies to continue",
}

// detectWindow bounds how much of the body detection scans.
const detectWindow = 100 << 10

// DetectCloudflareChallenge reports whether the HTML looks like a Cloudflare
// challenge page rather than real content. Requires at least two pattern
// matches in the first 100KB.
func DetectCloudflareChallenge(html string) bool {
	if len(html) > detectWindow {
		html = html[:detectWindow]
	}
	html = strings.ToLower(html)

	var hits int
	for _, p := range cloudflarePatterns {
		if strings.Contains(html, p) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}

// spaMarkers identify client-side app mount points and framework fingerprints.
var spaMarkers = []string{
	`id="root"`,
	`id="app"`,
	`id="__next"`,
	`id="__nuxt"`,
	`id="svelte"`,
	"data-reactroot",
	"ng-version=",
	"__NEXT_DATA__",
}

// DetectSPA reports whether the static HTML looks like a client-rendered app
// shell.
func DetectSPA(html string) bool {
	if len(html) > detectWindow {
		html = html[:detectWindow]
	}
	for _, m := range spaMarkers {
		if strings.Contains(html, m) {
			return true
		}
	}
	return false
}

var (
	tagScrubber    = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</\w+>`)
	markupScrubber = regexp.MustCompile(`<[^>]*>`)
)

// staticWordCount is a cheap text-volume estimate used only to decide whether
// rendering is worth attempting; the scoring engine does its own counting on
// the parsed tree.
func staticWordCount(html string) int {
	if len(html) > detectWindow {
		html = html[:detectWindow]
	}
	text := tagScrubber.ReplaceAllString(html, " ")
	text = markupScrubber.ReplaceAllString(text, " ")
	return len(strings.Fields(text))
}

// NeedsRendering reports whether the static HTML is too thin to audit and a
// headless render should be attempted.
func NeedsRendering(html string) bool {
	words := staticWordCount(html)
	if words < 50 {
		return true
	}
	return words < 100 && DetectSPA(html)
}
