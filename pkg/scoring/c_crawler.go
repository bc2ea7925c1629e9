package scoring

import (
	"fmt"
	"strings"

	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// AI crawler access checks. These are the audit's foundation: if the four
// monitored crawlers cannot fetch the site, it does not exist to answer
// engines, so a complete block raises the tier 0 gate signal.

// AICrawlers lists the user-agent tokens the audit monitors.
var AICrawlers = []string{"GPTBot", "ClaudeBot", "PerplexityBot", "Google-Extended"}

// checkAICrawlerAccess fails only when every monitored crawler is blocked by
// robots.txt; that total failure is what trips the tier 0 gate.
func checkAICrawlerAccess(ev *evidence.Evidence) Finding {
	var blocked []string
	for _, agent := range AICrawlers {
		if !ev.Robots.Allowed(agent) {
			blocked = append(blocked, agent)
		}
	}
	switch {
	case len(blocked) == 0:
		return pass("All monitored AI crawlers allowed by robots.txt")
	case len(blocked) == len(AICrawlers):
		return fail(SeverityCritical, "robots.txt blocks every monitored AI crawler",
			"Allow GPTBot, ClaudeBot, PerplexityBot, and Google-Extended in robots.txt; blocked crawlers mean zero AI visibility")
	}
	allowed := len(AICrawlers) - len(blocked)
	return partial(float64(allowed)/float64(len(AICrawlers)), SeverityWarning,
		fmt.Sprintf("robots.txt blocks %s", strings.Join(blocked, ", ")),
		"Unblock the remaining AI crawlers unless the exclusion is deliberate")
}

func checkWildcardDisallow(ev *evidence.Evidence) Finding {
	if ev.Robots.WildcardDisallowAll() {
		return fail(SeverityCritical, "robots.txt has a blanket Disallow: / for all user agents",
			"Remove the wildcard Disallow: /; it shuts out every crawler that lacks an explicit override")
	}
	return pass("No blanket wildcard disallow in robots.txt")
}

func checkNoAIMeta(ev *evidence.Evidence) Finding {
	if ev.Robots.HasDirective("noai") {
		return fail(SeverityWarning, "Page carries a noai directive",
			"Remove the noai meta/header directive to allow AI training and citation")
	}
	if ev.Robots.HasDirective("noimageai") {
		return partial(0.5, SeverityInfo, "Page carries a noimageai directive",
			"noimageai only restricts image use, but confirm the exclusion is intentional")
	}
	return pass("No noai or noimageai directives")
}

func checkAIUserAgentFetch(ev *evidence.Evidence) Finding {
	status := ev.Rendering.AIUserAgentStatus
	switch {
	case status == 0:
		return notApplicable("AI user-agent fetch not attempted")
	case status >= 200 && status < 400:
		return pass(fmt.Sprintf("AI user-agent request served normally (HTTP %d)", status))
	case status == 403 || status == 503:
		return fail(SeverityCritical,
			fmt.Sprintf("AI user-agent request blocked (HTTP %d)", status),
			"A WAF or bot-protection rule is rejecting AI crawlers; add the monitored agents to its allowlist")
	}
	return fail(SeverityWarning,
		fmt.Sprintf("AI user-agent request failed (HTTP %d)", status),
		"Investigate why the server treats AI crawler traffic differently from browsers")
}
