package surface_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/aeoscope/aeoscope/pkg/scoring"
	"github.com/aeoscope/aeoscope/pkg/surface"
)

func sampleResult() *scoring.ScoreResult {
	return &scoring.ScoreResult{
		URL:        "https://example.com/",
		RawScore:   72,
		GatedScore: 45,
		MaxScore:   scoring.TotalPoints,
		Grade:      "C",
		Band:       "Moderate",
		BandColor:  "#eab308",
		Categories: []scoring.CategorySummary{
			{Category: scoring.CategoryTechnical, RawPoints: 42, MaxPoints: 50},
			{Category: scoring.CategoryStructuredData, RawPoints: 8, MaxPoints: 24},
			{Category: scoring.CategoryCrawlerAccess, RawPoints: 16, MaxPoints: 16},
			{Category: scoring.CategoryAuthority, RawPoints: 6, MaxPoints: 10},
		},
		Gates: []scoring.GateResult{
			{Tier: 0, Name: scoring.GateAICrawlerBlock, Cap: scoring.TotalPoints, Reason: "AI crawlers can access the site"},
			{Tier: 1, Name: scoring.GateMissingOrgSchema, Applied: true, Cap: 45, Reason: "no Organization schema identifies the entity behind the site"},
			{Tier: 2, Name: scoring.GateIncompleteStructuredData, Cap: scoring.TotalPoints, Reason: "superseded"},
			{Tier: 3, Name: scoring.GateBase, Cap: scoring.TotalPoints, Reason: "superseded by a lower tier"},
		},
		ChecksPassed:  21,
		ChecksPartial: 3,
		ChecksFailed:  5,
		Issues: []scoring.CheckResult{
			{
				ID:          "org_schema_present",
				Category:    scoring.CategoryStructuredData,
				Verdict:     scoring.VerdictFail,
				Severity:    scoring.SeverityCritical,
				MaxPoints:   6,
				Message:     "No Organization schema found",
				Remediation: "Add Organization JSON-LD with name, url, and logo",
			},
			{
				ID:        "meta_description",
				Category:  scoring.CategoryTechnical,
				Verdict:   scoring.VerdictPartial,
				Severity:  scoring.SeverityInfo,
				MaxPoints: 4,
				Message:   "Meta description too short (80 characters)",
			},
		},
		EntityStrength:  12,
		AuthoritySignal: 55,
	}
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	// Set NO_COLOR to avoid ANSI codes in test comparison
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "AEO Score: C — 45/100 (Moderate)") {
		t.Errorf("header missing from output:\n%s", output)
	}
	if !strings.Contains(output, "score capped at 45") {
		t.Error("expected the tier 1 cap notice")
	}
	if !strings.Contains(output, "uncapped score would be 72") {
		t.Error("expected the uncapped score note")
	}
	if !strings.Contains(output, "Structured data") {
		t.Error("expected the category table")
	}
	if !strings.Contains(output, "21 passed, 3 partial, 5 failed") {
		t.Error("expected the check counts")
	}
	if !strings.Contains(output, "org_schema_present") {
		t.Error("expected the critical issue")
	}
	if !strings.Contains(output, "Add Organization JSON-LD") {
		t.Error("expected remediation text")
	}
}

func TestTerminalRenderer_CleanResult(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	result := sampleResult()
	result.Issues = nil
	result.Gates = []scoring.GateResult{
		{Tier: 3, Name: scoring.GateBase, Applied: true, Cap: scoring.TotalPoints, Reason: "no structural failure detected"},
	}
	result.RawScore, result.GatedScore = 100, 100
	result.Grade, result.Band = "A+", "Excellent"

	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).Render(&buf, result); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "No issues found.") {
		t.Error("expected 'No issues found.' message")
	}
	if strings.Contains(output, "capped") {
		t.Error("no cap notice expected for a clean result")
	}
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	// Without NO_COLOR, output should have ANSI codes
	os.Unsetenv("NO_COLOR")

	var buf bytes.Buffer
	if err := (&surface.TerminalRenderer{}).Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("expected ANSI escape codes when NO_COLOR is not set")
	}
}

func TestJSONRendererFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.JSONRenderer{}).Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	for _, field := range []string{
		`"score": 45`, `"max_score": 100`, `"grade": "C"`, `"band": "Moderate"`,
		`"checks_passed": 21`, `"checks_failed": 5`, `"issues"`, `"execution_time"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("JSON output missing %s", field)
		}
	}
}

func TestMarkdownRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&surface.MarkdownRenderer{}).Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "## AEO Score: C — 45/100 (Moderate)") {
		t.Error("expected markdown header")
	}
	if !strings.Contains(out, "**Score capped at 45**") {
		t.Error("expected cap callout")
	}
	if !strings.Contains(out, "| Technical SEO | 42.0 / 50 |") {
		t.Error("expected category table row")
	}
}
