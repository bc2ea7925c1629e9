package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aeoscope/aeoscope/pkg/scoring"
)

// TerminalRenderer renders a ScoreResult as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func gradeColor(grade string) string {
	if noColor() {
		return ""
	}
	switch grade {
	case "A+", "A", "B":
		return colorGreen
	case "C":
		return colorYellow
	case "D", "F":
		return colorRed
	default:
		return ""
	}
}

func severityColor(s scoring.Severity) string {
	if noColor() {
		return ""
	}
	switch s {
	case scoring.SeverityCritical:
		return colorRed
	case scoring.SeverityWarning:
		return colorYellow
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, result *scoring.ScoreResult) error {
	gc := gradeColor(result.Grade)

	// Header
	fmt.Fprintf(w, "%s\n",
		bold(fmt.Sprintf("AEO Score: %s — %.0f/%.0f (%s)",
			colored(result.Grade, gc), result.GatedScore, result.MaxScore, result.Band)))
	if result.URL != "" {
		fmt.Fprintf(w, "%s\n", dim(result.URL))
	}
	fmt.Fprintln(w)

	// Gate caps, if any fired
	for _, g := range result.Gates {
		if g.Applied && g.Tier < 3 {
			fmt.Fprintf(w, "%s score capped at %.0f: %s\n",
				colored("▼", colorRed), g.Cap, g.Reason)
		}
	}
	if result.GatedScore < result.RawScore {
		fmt.Fprintf(w, "%s\n\n", dim(fmt.Sprintf("(uncapped score would be %.0f)", result.RawScore)))
	} else {
		fmt.Fprintln(w)
	}

	// Category table
	fmt.Fprintln(w, "Categories:")
	for _, c := range result.Categories {
		fmt.Fprintf(w, "  %-18s %5.1f / %.0f\n", categoryLabel(c.Category), c.RawPoints, c.MaxPoints)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Checks: %d passed, %d partial, %d failed\n",
		result.ChecksPassed, result.ChecksPartial, result.ChecksFailed)
	fmt.Fprintf(w, "Entity strength %d/100, authority signal %d/100\n\n",
		result.EntityStrength, result.AuthoritySignal)

	// Issues
	if len(result.Issues) == 0 {
		fmt.Fprintln(w, "No issues found.")
		return nil
	}
	fmt.Fprintln(w, "Issues:")
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  %s %s %s\n",
			colored("●", severityColor(issue.Severity)),
			bold(issue.ID),
			issue.Message)
		if issue.Remediation != "" {
			for _, line := range wrapText(issue.Remediation, 70) {
				fmt.Fprintf(w, "    %s\n", dim(line))
			}
		}
	}
	fmt.Fprintln(w)

	return nil
}

func categoryLabel(c scoring.Category) string {
	switch c {
	case scoring.CategoryTechnical:
		return "Technical SEO"
	case scoring.CategoryStructuredData:
		return "Structured data"
	case scoring.CategoryCrawlerAccess:
		return "AI crawler access"
	case scoring.CategoryAuthority:
		return "Authority"
	}
	return string(c)
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
