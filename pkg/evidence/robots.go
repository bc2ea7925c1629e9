package evidence

import (
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AgentRules summarizes robots.txt rules for one user-agent token.
type AgentRules struct {
	DisallowAll bool // an explicit "Disallow: /" (or "/*") applies
	HasDisallow bool // at least one non-empty Disallow line applies
}

// Robots holds parsed crawl directives from robots.txt, <meta name="robots">
// (and googlebot variants), and the X-Robots-Tag response header. Agent tokens
// are lowercased; "*" is the wildcard group.
type Robots struct {
	Agents map[string]AgentRules
	// Meta directives (noindex, nofollow, noai, ...) from meta tags and
	// X-Robots-Tag, lowercased.
	Directives []string
}

// buildRobots parses robots.txt and merges in page-level directives.
func buildRobots(robotsTxt string, doc *goquery.Document, headers http.Header) *Robots {
	r := &Robots{
		Agents:     ParseRobotsTxt(robotsTxt),
		Directives: collectDirectives(doc, headers),
	}
	return r
}

// ParseRobotsTxt extracts per-agent allow/disallow summaries from robots.txt.
// A later "Allow: /" for a group clears an earlier blanket disallow, matching
// how the major crawlers resolve the common allowlist pattern.
func ParseRobotsTxt(robotsTxt string) map[string]AgentRules {
	rules := make(map[string]AgentRules)
	if robotsTxt == "" {
		return rules
	}

	var currentAgents []string
	sawDirective := true // so a leading User-agent line starts a fresh group

	for _, raw := range strings.Split(robotsTxt, "\n") {
		line := strings.TrimSpace(raw)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			agent := strings.ToLower(value)
			if sawDirective {
				currentAgents = currentAgents[:0]
				sawDirective = false
			}
			currentAgents = append(currentAgents, agent)
			if _, ok := rules[agent]; !ok {
				rules[agent] = AgentRules{}
			}
		case "disallow":
			sawDirective = true
			for _, agent := range currentAgents {
				ar := rules[agent]
				if value == "/" || value == "/*" {
					ar.DisallowAll = true
					ar.HasDisallow = true
				} else if value != "" {
					ar.HasDisallow = true
				}
				rules[agent] = ar
			}
		case "allow":
			sawDirective = true
			if value == "/" || value == "/*" {
				for _, agent := range currentAgents {
					ar := rules[agent]
					ar.DisallowAll = false
					rules[agent] = ar
				}
			}
		default:
			sawDirective = true
		}
	}

	return rules
}

// Allowed reports whether the given user-agent token may crawl the site root.
// A specific group takes precedence over the wildcard; no rules means allowed.
func (r *Robots) Allowed(agent string) bool {
	agent = strings.ToLower(agent)
	if ar, ok := r.Agents[agent]; ok {
		return !ar.DisallowAll
	}
	if ar, ok := r.Agents["*"]; ok {
		return !ar.DisallowAll
	}
	return true
}

// WildcardDisallowAll reports whether the "*" group carries a blanket disallow.
func (r *Robots) WildcardDisallowAll() bool {
	ar, ok := r.Agents["*"]
	return ok && ar.DisallowAll
}

// HasDirective reports whether a page-level directive (noindex, noai, ...)
// is present in meta robots tags or the X-Robots-Tag header.
func (r *Robots) HasDirective(token string) bool {
	token = strings.ToLower(token)
	for _, d := range r.Directives {
		if d == token {
			return true
		}
	}
	return false
}

// collectDirectives gathers directive tokens from robots meta tags and the
// X-Robots-Tag header. Tokens are comma-separated in both sources.
func collectDirectives(doc *goquery.Document, headers http.Header) []string {
	var tokens []string
	add := func(content string) {
		for _, tok := range strings.Split(content, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			// X-Robots-Tag may scope a directive to an agent ("googlebot: noindex").
			if _, rest, ok := strings.Cut(tok, ":"); ok {
				tok = strings.TrimSpace(rest)
			}
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}

	if doc != nil {
		doc.Find(`meta[name="robots"], meta[name="googlebot"]`).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok {
				add(content)
			}
		})
	}
	for _, v := range headers.Values("X-Robots-Tag") {
		add(v)
	}
	return tokens
}
