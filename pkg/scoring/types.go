// Package scoring implements the AEO audit scoring engine. It evaluates a
// fixed registry of checks against page evidence and produces an explainable,
// evidence-backed score, with cascading tier gates that cap the total when a
// structural failure makes the rest moot.
package scoring

// Verdict is the outcome of a single check.
type Verdict string

const (
	VerdictPass          Verdict = "PASS"
	VerdictFail          Verdict = "FAIL"
	VerdictPartial       Verdict = "PARTIAL"
	VerdictNotApplicable Verdict = "NOT_APPLICABLE"
)

// Severity indicates how concerning a finding is. It orders the issue list
// and never influences points.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Category groups checks into the four audit areas.
type Category string

const (
	CategoryTechnical      Category = "technical_seo"
	CategoryStructuredData Category = "structured_data"
	CategoryCrawlerAccess  Category = "ai_crawler_access"
	CategoryAuthority      Category = "authority"
)

// Categories lists the audit areas in declaration order. The issue list uses
// this order as a tie-break after severity.
var Categories = []Category{
	CategoryTechnical,
	CategoryStructuredData,
	CategoryCrawlerAccess,
	CategoryAuthority,
}

func categoryRank(c Category) int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

// CheckResult is the output of a single check after the engine normalizes it
// against the registry entry (id, category, point bounds).
type CheckResult struct {
	ID            string   `json:"id"`
	Category      Category `json:"category"`
	Verdict       Verdict  `json:"verdict"`
	PointsAwarded float64  `json:"points_awarded"`
	MaxPoints     float64  `json:"max_points"`
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	Remediation   string   `json:"remediation,omitempty"`
}

// CategorySummary aggregates one category's results plus any gate signals
// derived from them.
type CategorySummary struct {
	Category  Category        `json:"category"`
	RawPoints float64         `json:"raw_points"`
	MaxPoints float64         `json:"max_points"`
	Signals   map[string]bool `json:"signals,omitempty"`
}

// Ratio returns RawPoints/MaxPoints, or 0 for an empty category.
func (c CategorySummary) Ratio() float64 {
	if c.MaxPoints == 0 {
		return 0
	}
	return c.RawPoints / c.MaxPoints
}

// GateResult records one tier gate evaluation. Cap is the ceiling the gate
// imposes when applied; an unapplied gate reports TotalPoints.
type GateResult struct {
	Tier    int     `json:"tier"`
	Name    string  `json:"name"`
	Applied bool    `json:"applied"`
	Cap     float64 `json:"cap"`
	Reason  string  `json:"reason"`
}

// ScoreResult is the complete output of one audit evaluation.
// Immutable once computed.
type ScoreResult struct {
	URL             string            `json:"url,omitempty"`
	RawScore        float64           `json:"raw_score"`
	GatedScore      float64           `json:"score"`
	MaxScore        float64           `json:"max_score"`
	Grade           string            `json:"grade"`
	Band            string            `json:"band"`
	BandColor       string            `json:"band_color"`
	ChecksPassed    int               `json:"checks_passed"`
	ChecksFailed    int               `json:"checks_failed"`
	ChecksPartial   int               `json:"checks_partial"`
	Categories      []CategorySummary `json:"categories"`
	Gates           []GateResult      `json:"gates"`
	Breakdown       []CheckResult     `json:"breakdown"`
	Issues          []CheckResult     `json:"issues"`
	EntityStrength  int               `json:"entity_strength"`
	AuthoritySignal int               `json:"authority_signal"`
	ExecutionTimeMs int64             `json:"execution_time"`
}

// GradeFromScore maps a gated score to a letter grade. The breakpoints are a
// compatibility surface for report consumers.
func GradeFromScore(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 65:
		return "B"
	case score >= 45:
		return "C"
	case score >= 25:
		return "D"
	default:
		return "F"
	}
}

// BandFromScore maps a gated score to a qualitative visibility band and its
// display color.
func BandFromScore(score float64) (band, color string) {
	switch {
	case score >= 80:
		return "Excellent", "#22c55e"
	case score >= 65:
		return "Strong", "#84cc16"
	case score >= 45:
		return "Moderate", "#eab308"
	case score >= 25:
		return "Weak", "#f97316"
	default:
		return "Critical", "#ef4444"
	}
}
