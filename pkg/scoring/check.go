package scoring

import "github.com/aeoscope/aeoscope/pkg/evidence"

// CheckFunc evaluates one check against the evidence. Checks are pure reads:
// they never mutate the evidence and never return errors. Missing evidence is
// a Fail or NotApplicable finding, not a failure of the engine.
type CheckFunc func(ev *evidence.Evidence) Finding

// Finding is the raw outcome a check reports. The engine combines it with the
// registry entry to produce the final CheckResult, so checks never handle
// their own point arithmetic.
type Finding struct {
	Verdict     Verdict
	Fraction    float64 // share of max points for Partial verdicts, in (0,1)
	Severity    Severity
	Message     string
	Remediation string
}

func pass(msg string) Finding {
	return Finding{Verdict: VerdictPass, Severity: SeverityInfo, Message: msg}
}

func fail(sev Severity, msg, remediation string) Finding {
	return Finding{Verdict: VerdictFail, Severity: sev, Message: msg, Remediation: remediation}
}

func partial(fraction float64, sev Severity, msg, remediation string) Finding {
	return Finding{Verdict: VerdictPartial, Fraction: fraction, Severity: sev, Message: msg, Remediation: remediation}
}

func notApplicable(msg string) Finding {
	return Finding{Verdict: VerdictNotApplicable, Severity: SeverityInfo, Message: msg}
}

// degradedFraction is the share of max points a rendering-dependent check can
// earn when only static HTML is available.
const degradedFraction = 0.7

// staticDegraded caps a passing finding at Partial when the check depends on
// the rendered DOM but only the static tree was evaluated. Failing findings
// stand on their own: a problem visible in static HTML is still a problem.
func staticDegraded(ev *evidence.Evidence, f Finding) Finding {
	if ev.HasRenderedDOM() || f.Verdict != VerdictPass {
		return f
	}
	return Finding{
		Verdict:     VerdictPartial,
		Fraction:    degradedFraction,
		Severity:    SeverityInfo,
		Message:     f.Message + " (static HTML only; JavaScript rendering unavailable)",
		Remediation: "Re-run the audit with rendering enabled to confirm the fully loaded page",
	}
}
