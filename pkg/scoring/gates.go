package scoring

import (
	"fmt"
	"math"
)

// Gate signal names raised by the aggregator from check verdicts.
const (
	SignalBlocksAllAICrawlers       = "blocks_all_ai_crawlers"
	SignalMissingOrganizationSchema = "missing_organization_schema"
)

// Gate names in tier order.
const (
	GateAICrawlerBlock           = "ai_crawler_block"
	GateMissingOrgSchema         = "missing_organization_schema"
	GateIncompleteStructuredData = "incomplete_structured_data"
	GateBase                     = "base"
)

// evaluateGates runs the tier pipeline against the aggregated category
// summaries. Every gate is evaluated independently and reported, applied or
// not, so the result explains why a score was or was not capped. The gates
// encode the product's core stance: if AI crawlers cannot reach the site,
// or answer engines cannot identify the entity behind it, nothing else the
// page does well matters much.
func (e *Engine) evaluateGates(summaries []CategorySummary) []GateResult {
	signals := make(map[string]bool)
	var structured CategorySummary
	for _, s := range summaries {
		for name, on := range s.Signals {
			if on {
				signals[name] = true
			}
		}
		if s.Category == CategoryStructuredData {
			structured = s
		}
	}

	tier0 := GateResult{Tier: 0, Name: GateAICrawlerBlock, Cap: TotalPoints,
		Reason: "AI crawlers can access the site"}
	if signals[SignalBlocksAllAICrawlers] {
		tier0.Applied = true
		tier0.Cap = e.cfg.Tier0Cap
		tier0.Reason = "all monitored AI crawlers are blocked from the site"
	}

	tier1 := GateResult{Tier: 1, Name: GateMissingOrgSchema, Cap: TotalPoints,
		Reason: "Organization schema is present"}
	if signals[SignalMissingOrganizationSchema] {
		tier1.Applied = true
		tier1.Cap = e.cfg.Tier1Cap
		tier1.Reason = "no Organization schema identifies the entity behind the site"
	}

	ratio := structured.Ratio()
	tier2 := GateResult{Tier: 2, Name: GateIncompleteStructuredData, Cap: TotalPoints,
		Reason: fmt.Sprintf("structured data completeness %.0f%% meets the threshold", ratio*100)}
	if !tier1.Applied && ratio < e.cfg.Tier2Threshold {
		tier2.Applied = true
		tier2.Cap = clamp(math.Round(e.cfg.Tier2CapFloor+e.cfg.Tier2Slope*ratio),
			e.cfg.Tier2CapFloor, e.cfg.Tier2CapCeil)
		tier2.Reason = fmt.Sprintf("structured data is only %.0f%% complete", ratio*100)
	}

	tier3 := GateResult{Tier: 3, Name: GateBase, Cap: TotalPoints,
		Reason: "no structural failure detected"}
	tier3.Applied = !tier0.Applied && !tier1.Applied && !tier2.Applied
	if !tier3.Applied {
		tier3.Reason = "superseded by a lower tier"
	}

	return []GateResult{tier0, tier1, tier2, tier3}
}

// applyCaps returns min(raw, caps of all applied gates). When several gates
// apply, the tightest cap wins.
func applyCaps(raw float64, gates []GateResult) float64 {
	score := raw
	for _, g := range gates {
		if g.Applied && g.Cap < score {
			score = g.Cap
		}
	}
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
