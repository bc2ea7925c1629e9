package scoring

import "fmt"

// TotalPoints is the maximum raw score. Check weights must sum to it exactly.
const TotalPoints = 100.0

// NumChecks is the size of the check registry. The audit contract fixes both
// the set of checks and their weights, so a registry of any other size is a
// wiring bug.
const NumChecks = 29

// CheckSpec declares one check: its stable identifier, category, weight, and
// evaluation function.
type CheckSpec struct {
	ID        string
	Category  Category
	MaxPoints float64
	Eval      CheckFunc
}

// GateSignal maps a named gate trigger to the check verdict that raises it.
// Signals are evaluated by the aggregator after all checks complete and feed
// the tier gate pipeline.
type GateSignal struct {
	Name    string
	CheckID string
	Verdict Verdict
}

// Registry is the validated, immutable table of checks and gate signals.
type Registry struct {
	checks  []CheckSpec
	index   map[string]int
	signals []GateSignal
}

// NewRegistry validates the check table and signal mappings. It fails fast on
// any inconsistency so a misconfigured engine can never score a page.
func NewRegistry(checks []CheckSpec, signals []GateSignal) (*Registry, error) {
	if len(checks) != NumChecks {
		return nil, fmt.Errorf("registry has %d checks, want %d", len(checks), NumChecks)
	}

	index := make(map[string]int, len(checks))
	var sum float64
	for i, c := range checks {
		if c.ID == "" {
			return nil, fmt.Errorf("check at position %d has empty id", i)
		}
		if _, dup := index[c.ID]; dup {
			return nil, fmt.Errorf("duplicate check id %q", c.ID)
		}
		if categoryRank(c.Category) >= len(Categories) {
			return nil, fmt.Errorf("check %q has unknown category %q", c.ID, c.Category)
		}
		if c.MaxPoints <= 0 {
			return nil, fmt.Errorf("check %q has non-positive max points %v", c.ID, c.MaxPoints)
		}
		if c.Eval == nil {
			return nil, fmt.Errorf("check %q has no eval func", c.ID)
		}
		index[c.ID] = i
		sum += c.MaxPoints
	}
	if sum != TotalPoints {
		return nil, fmt.Errorf("check weights sum to %v, want %v", sum, TotalPoints)
	}

	seen := make(map[string]bool, len(signals))
	for _, s := range signals {
		if s.Name == "" {
			return nil, fmt.Errorf("gate signal with empty name")
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate gate signal %q", s.Name)
		}
		seen[s.Name] = true
		if _, ok := index[s.CheckID]; !ok {
			return nil, fmt.Errorf("gate signal %q references unknown check %q", s.Name, s.CheckID)
		}
	}

	return &Registry{checks: checks, index: index, signals: signals}, nil
}

// Checks returns the check table in declaration order.
func (r *Registry) Checks() []CheckSpec { return r.checks }

// Signals returns the gate signal mappings.
func (r *Registry) Signals() []GateSignal { return r.signals }

// position returns the declaration index of a check id.
func (r *Registry) position(id string) int { return r.index[id] }

// categoryOf returns the category a check id belongs to.
func (r *Registry) categoryOf(id string) Category {
	return r.checks[r.index[id]].Category
}
