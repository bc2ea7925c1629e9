package scoring

import (
	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// htmlEv builds evidence from static HTML only, the degraded-acquisition case.
func htmlEv(html string) *evidence.Evidence {
	return evidence.Build(evidence.Input{
		URL:        "https://example.com/page",
		HTML:       html,
		StatusCode: 200,
	})
}

// renderedEv builds evidence where rendering succeeded and produced the same
// markup, the common server-rendered case.
func renderedEv(html string) *evidence.Evidence {
	return evidence.Build(evidence.Input{
		URL:          "https://example.com/page",
		HTML:         html,
		RenderedHTML: html,
		StatusCode:   200,
	})
}
