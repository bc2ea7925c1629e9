// Package evidence defines the normalized, immutable snapshot of a fetched
// page that the scoring engine evaluates. All checks read from one Evidence
// value; nothing mutates it after Build, so checks are safe to run in parallel.
package evidence

import (
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Input carries the raw output of the page fetcher into Build.
// It is a plain value so callers (CLI, hosted service, tests) can construct
// it without depending on the fetch layer.
type Input struct {
	URL                 string
	HTML                string
	RenderedHTML        string // empty if rendering was not attempted or failed
	StatusCode          int
	Headers             http.Header
	RobotsTxt           string
	RobotsTxtFound      bool
	SitemapFound        bool
	ResponseTimeMs      int
	AIUserAgentStatus   int // HTTP status of the simulated AI-UA probe; 0 = not attempted
	SPALikely           bool
	CloudflareChallenge bool
	RenderTimedOut      bool
}

// Rendering holds acquisition metadata that checks consult alongside the DOM.
type Rendering struct {
	SPALikely           bool `json:"spa_likely"`
	CloudflareChallenge bool `json:"cloudflare_challenge"`
	RenderTimedOut      bool `json:"render_timed_out"`
	RobotsTxtFound      bool `json:"robots_txt_found"`
	SitemapFound        bool `json:"sitemap_found"`
	ResponseTimeMs      int  `json:"response_time_ms"`
	AIUserAgentStatus   int  `json:"ai_user_agent_status"`
}

// Evidence is the read-only input to every check.
type Evidence struct {
	FinalURL     string
	HTML         string
	RenderedHTML string
	Status       int
	Headers      http.Header
	Robots       *Robots
	Schemas      []SchemaBlock
	Rendering    Rendering

	doc         *goquery.Document
	renderedDoc *goquery.Document
}

// Build constructs an Evidence from fetcher output. It never fails: malformed
// HTML parses to a best-effort tree, absent robots.txt yields empty rules, and
// malformed JSON-LD blocks are recorded with their parse error.
func Build(in Input) *Evidence {
	headers := in.Headers
	if headers == nil {
		headers = http.Header{}
	}

	ev := &Evidence{
		FinalURL:     in.URL,
		HTML:         in.HTML,
		RenderedHTML: in.RenderedHTML,
		Status:       in.StatusCode,
		Headers:      headers,
		Rendering: Rendering{
			SPALikely:           in.SPALikely,
			CloudflareChallenge: in.CloudflareChallenge,
			RenderTimedOut:      in.RenderTimedOut,
			RobotsTxtFound:      in.RobotsTxtFound,
			SitemapFound:        in.SitemapFound,
			ResponseTimeMs:      in.ResponseTimeMs,
			AIUserAgentStatus:   in.AIUserAgentStatus,
		},
	}

	ev.doc = parseDoc(in.HTML)
	if in.RenderedHTML != "" {
		ev.renderedDoc = parseDoc(in.RenderedHTML)
	}

	ev.Robots = buildRobots(in.RobotsTxt, ev.doc, headers)
	ev.Schemas = ExtractSchemas(ev.ContentDoc())

	return ev
}

// parseDoc parses markup into a goquery document. goquery's underlying
// html parser is error-tolerant, so the only failure mode is a reader error,
// which cannot happen with a string reader; on the impossible path we fall
// back to an empty document.
func parseDoc(markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader("<html></html>"))
	}
	return doc
}

// Doc returns the static HTML tree. Never nil.
func (e *Evidence) Doc() *goquery.Document { return e.doc }

// RenderedDoc returns the post-JavaScript tree, or nil when rendering was not
// performed. Checks that depend on it must degrade gracefully when nil.
func (e *Evidence) RenderedDoc() *goquery.Document { return e.renderedDoc }

// HasRenderedDOM reports whether a rendered snapshot is available.
func (e *Evidence) HasRenderedDOM() bool { return e.renderedDoc != nil }

// ContentDoc returns the best available view of the page content: the
// rendered tree when present, otherwise the static tree.
func (e *Evidence) ContentDoc() *goquery.Document {
	if e.renderedDoc != nil {
		return e.renderedDoc
	}
	return e.doc
}

// Organization returns the first Organization-like schema block, or nil.
func (e *Evidence) Organization() *SchemaBlock {
	for i := range e.Schemas {
		if e.Schemas[i].IsOrganization() {
			return &e.Schemas[i]
		}
	}
	return nil
}

// SchemaTypes returns the deduplicated list of @type values across all
// well-formed schema blocks, in document order.
func (e *Evidence) SchemaTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, b := range e.Schemas {
		for _, t := range b.Types {
			if t != "" && !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types
}
