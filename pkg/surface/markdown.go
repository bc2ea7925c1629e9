package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/aeoscope/aeoscope/pkg/scoring"
)

// MarkdownRenderer produces a Markdown audit report, suitable for pasting
// into issues or serving as a hosted report body.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, result *scoring.ScoreResult) error {
	_, err := io.WriteString(w, buildMarkdownReport(result))
	return err
}

func buildMarkdownReport(result *scoring.ScoreResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## AEO Score: %s — %.0f/%.0f (%s)\n\n",
		result.Grade, result.GatedScore, result.MaxScore, result.Band)
	if result.URL != "" {
		fmt.Fprintf(&b, "`%s`\n\n", result.URL)
	}

	for _, g := range result.Gates {
		if g.Applied && g.Tier < 3 {
			fmt.Fprintf(&b, "> **Score capped at %.0f** — %s\n\n", g.Cap, g.Reason)
		}
	}

	b.WriteString("| Category | Points |\n|---|---|\n")
	for _, c := range result.Categories {
		fmt.Fprintf(&b, "| %s | %.1f / %.0f |\n", categoryLabel(c.Category), c.RawPoints, c.MaxPoints)
	}
	fmt.Fprintf(&b, "\n%d passed, %d partial, %d failed\n\n",
		result.ChecksPassed, result.ChecksPartial, result.ChecksFailed)

	if len(result.Issues) > 0 {
		b.WriteString("### Issues\n\n")
		for _, issue := range result.Issues {
			fmt.Fprintf(&b, "- **%s** (%s): %s", issue.ID, issue.Severity, issue.Message)
			if issue.Remediation != "" {
				fmt.Fprintf(&b, " — %s", issue.Remediation)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
