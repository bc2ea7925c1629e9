package scoring

import "fmt"

// Config holds the tier gate parameters. The check weights themselves live in
// the registry table; this struct carries everything the gate pipeline needs,
// versioned so persisted audits can record which rules scored them.
type Config struct {
	// Version identifies the scoring ruleset recorded with each audit.
	Version string

	// Tier0Cap is the score ceiling when all monitored AI crawlers are blocked.
	Tier0Cap float64
	// Tier1Cap is the score ceiling when no Organization schema is present.
	Tier1Cap float64

	// Tier2Threshold is the structured-data completeness ratio below which the
	// sliding Tier 2 cap engages.
	Tier2Threshold float64
	// Tier2CapFloor and Tier2CapCeil bound the sliding cap; Tier2Slope scales
	// the completeness ratio between them (cap = floor + slope*ratio, clamped).
	Tier2CapFloor float64
	Tier2CapCeil  float64
	Tier2Slope    float64
}

// Defaults returns the production scoring configuration.
func Defaults() Config {
	return Config{
		Version:        "2025.1",
		Tier0Cap:       10,
		Tier1Cap:       45,
		Tier2Threshold: 0.8,
		Tier2CapFloor:  75,
		Tier2CapCeil:   85,
		Tier2Slope:     10,
	}
}

func (c Config) validate() error {
	if c.Tier0Cap <= 0 || c.Tier0Cap >= c.Tier1Cap {
		return fmt.Errorf("tier 0 cap %v must be positive and below tier 1 cap %v", c.Tier0Cap, c.Tier1Cap)
	}
	if c.Tier1Cap >= c.Tier2CapFloor {
		return fmt.Errorf("tier 1 cap %v must be below tier 2 floor %v", c.Tier1Cap, c.Tier2CapFloor)
	}
	if c.Tier2CapFloor > c.Tier2CapCeil || c.Tier2CapCeil > TotalPoints {
		return fmt.Errorf("tier 2 cap range [%v,%v] is invalid", c.Tier2CapFloor, c.Tier2CapCeil)
	}
	if c.Tier2Threshold <= 0 || c.Tier2Threshold > 1 {
		return fmt.Errorf("tier 2 threshold %v must be in (0,1]", c.Tier2Threshold)
	}
	if c.Tier2Slope < 0 {
		return fmt.Errorf("tier 2 slope %v must be non-negative", c.Tier2Slope)
	}
	return nil
}
