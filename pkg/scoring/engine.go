package scoring

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// Engine runs the registered checks against page evidence and produces a
// complete ScoreResult.
type Engine struct {
	registry *Registry
	cfg      Config
}

// NewEngine creates a scoring engine from a validated registry and config.
func NewEngine(reg *Registry, cfg Config) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	return &Engine{registry: reg, cfg: cfg}, nil
}

// NewDefaultEngine creates an engine with the standard check set and the
// production gate configuration.
func NewDefaultEngine() (*Engine, error) {
	reg, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}
	return NewEngine(reg, Defaults())
}

// Config returns the engine's gate configuration.
func (e *Engine) Config() Config { return e.cfg }

// Evaluate scores the evidence. It errors only on nil evidence; degraded
// evidence (no rendered DOM, no robots.txt, empty page) still yields a
// complete result. Same evidence in, same scores out.
func (e *Engine) Evaluate(ev *evidence.Evidence) (*ScoreResult, error) {
	if ev == nil {
		return nil, fmt.Errorf("evidence is nil")
	}
	start := time.Now()

	checks := e.registry.Checks()
	results := make([]CheckResult, len(checks))

	// All checks read the same immutable evidence, so they fan out freely.
	// Each goroutine owns exactly one slot of the results slice.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, spec := range checks {
		g.Go(func() error {
			results[i] = e.runCheck(spec, ev)
			return nil
		})
	}
	// Checks never return errors; Wait is the full join before aggregation.
	_ = g.Wait()

	summaries := e.summarize(results)
	gates := e.evaluateGates(summaries)

	res := &ScoreResult{
		URL:        ev.FinalURL,
		MaxScore:   TotalPoints,
		Categories: summaries,
		Gates:      gates,
		Breakdown:  results,
	}
	for _, r := range results {
		res.RawScore += r.PointsAwarded
		switch r.Verdict {
		case VerdictPass, VerdictNotApplicable:
			res.ChecksPassed++
		case VerdictFail:
			res.ChecksFailed++
		case VerdictPartial:
			res.ChecksPartial++
		}
	}
	res.GatedScore = applyCaps(res.RawScore, gates)
	res.Grade = GradeFromScore(res.GatedScore)
	res.Band, res.BandColor = BandFromScore(res.GatedScore)
	res.Issues = e.collectIssues(results)
	res.EntityStrength = entityStrength(ev)
	res.AuthoritySignal = authoritySignal(results)
	res.ExecutionTimeMs = time.Since(start).Milliseconds()

	return res, nil
}

// runCheck evaluates one check and normalizes its finding into a CheckResult.
// A panicking check is recovered into a Fail so one broken check can never
// take down an audit.
func (e *Engine) runCheck(spec CheckSpec, ev *evidence.Evidence) (res CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			res = CheckResult{
				ID:        spec.ID,
				Category:  spec.Category,
				Verdict:   VerdictFail,
				MaxPoints: spec.MaxPoints,
				Severity:  SeverityCritical,
				Message:   fmt.Sprintf("check failed unexpectedly: %v", r),
			}
		}
	}()
	return resolveFinding(spec, spec.Eval(ev))
}

// resolveFinding converts a Finding into a CheckResult, enforcing the point
// invariants: Pass and NotApplicable award full points, Fail awards zero,
// Partial awards a strictly interior fraction (degenerate fractions collapse
// to Fail or Pass).
func resolveFinding(spec CheckSpec, f Finding) CheckResult {
	res := CheckResult{
		ID:          spec.ID,
		Category:    spec.Category,
		Verdict:     f.Verdict,
		MaxPoints:   spec.MaxPoints,
		Severity:    f.Severity,
		Message:     f.Message,
		Remediation: f.Remediation,
	}
	if res.Severity == "" {
		res.Severity = SeverityInfo
	}

	switch f.Verdict {
	case VerdictPass, VerdictNotApplicable:
		res.PointsAwarded = spec.MaxPoints
	case VerdictPartial:
		switch {
		case f.Fraction <= 0:
			res.Verdict = VerdictFail
		case f.Fraction >= 1:
			res.Verdict = VerdictPass
			res.PointsAwarded = spec.MaxPoints
		default:
			res.PointsAwarded = f.Fraction * spec.MaxPoints
		}
	case VerdictFail:
		// zero points
	default:
		res.Verdict = VerdictFail
		res.Severity = SeverityCritical
		res.Message = fmt.Sprintf("check returned unknown verdict %q", f.Verdict)
	}

	return res
}

// summarize aggregates results into per-category summaries, in category
// declaration order, and raises the registered gate signals.
func (e *Engine) summarize(results []CheckResult) []CategorySummary {
	byCat := make(map[Category]*CategorySummary, len(Categories))
	summaries := make([]CategorySummary, 0, len(Categories))
	for _, c := range Categories {
		summaries = append(summaries, CategorySummary{Category: c})
	}
	for i := range summaries {
		byCat[summaries[i].Category] = &summaries[i]
	}

	byID := make(map[string]CheckResult, len(results))
	for _, r := range results {
		s := byCat[r.Category]
		s.RawPoints += r.PointsAwarded
		s.MaxPoints += r.MaxPoints
		byID[r.ID] = r
	}

	for _, sig := range e.registry.Signals() {
		r, ok := byID[sig.CheckID]
		if !ok || r.Verdict != sig.Verdict {
			continue
		}
		s := byCat[e.registry.categoryOf(sig.CheckID)]
		if s.Signals == nil {
			s.Signals = make(map[string]bool)
		}
		s.Signals[sig.Name] = true
	}

	return summaries
}

// collectIssues returns the non-passing results ordered by severity, then
// category declaration order, then check declaration order.
func (e *Engine) collectIssues(results []CheckResult) []CheckResult {
	var issues []CheckResult
	for _, r := range results {
		if r.Verdict == VerdictFail || r.Verdict == VerdictPartial {
			issues = append(issues, r)
		}
	}
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if sa, sb := severityRank(a.Severity), severityRank(b.Severity); sa != sb {
			return sa < sb
		}
		if ca, cb := categoryRank(a.Category), categoryRank(b.Category); ca != cb {
			return ca < cb
		}
		return e.registry.position(a.ID) < e.registry.position(b.ID)
	})
	return issues
}
