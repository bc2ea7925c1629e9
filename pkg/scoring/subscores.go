package scoring

import (
	"math"
	"strings"

	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// Supplemental sub-scores reported alongside the gated score. They summarize
// two narrow questions on a 0-100 scale and never influence the score itself.

// entityStrength measures how recognizable the site's entity is: Organization
// schema completeness, corroborating sameAs profiles, and brand consistency
// between schema and page.
func entityStrength(ev *evidence.Evidence) int {
	org := ev.Organization()
	if org == nil {
		return 0
	}

	ratio, _ := orgCompletenessRatio(org)
	score := ratio * 50

	sameAs := len(org.StrSlice("sameAs"))
	if sameAs > 5 {
		sameAs = 5
	}
	score += float64(sameAs) * 6

	if name := strings.TrimSpace(org.Str("name")); name != "" {
		doc := ev.ContentDoc()
		visible := strings.ToLower(doc.Find("title").Text() + " " + doc.Find("h1").Text())
		if strings.Contains(visible, strings.ToLower(name)) {
			score += 20
		}
	}

	return clampInt(int(math.Round(score)), 0, 100)
}

// authoritySignalWeights distributes the 0-100 authority signal across the
// checks that speak to trustworthiness.
var authoritySignalWeights = map[string]float64{
	"author_attribution": 35,
	"citation_density":   25,
	"trust_signals":      30,
	"https":              5,
	"canonical_tag":      5,
}

// authoritySignal rolls the trust-related check outcomes into one number,
// weighting each check's earned fraction of its points.
func authoritySignal(results []CheckResult) int {
	var score float64
	for _, r := range results {
		w, ok := authoritySignalWeights[r.ID]
		if !ok || r.MaxPoints == 0 {
			continue
		}
		score += w * (r.PointsAwarded / r.MaxPoints)
	}
	return clampInt(int(math.Round(score)), 0, 100)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
