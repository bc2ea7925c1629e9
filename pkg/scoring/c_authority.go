package scoring

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// Authority and E-E-A-T checks.

func checkAuthorAttribution(ev *evidence.Evidence) Finding {
	doc := ev.ContentDoc()

	if author, ok := doc.Find(`meta[name="author"]`).First().Attr("content"); ok && strings.TrimSpace(author) != "" {
		return pass(fmt.Sprintf("Author meta tag present (%s)", strings.TrimSpace(author)))
	}
	if doc.Find(`[rel="author"], [itemprop="author"], .author, .byline`).Length() > 0 {
		return pass("Author byline present in the page")
	}
	for _, b := range ev.Schemas {
		if b.Has("author") {
			return pass("Author declared in structured data")
		}
	}
	if org := ev.Organization(); org != nil && org.Str("name") != "" {
		return partial(0.5, SeverityInfo,
			"No individual author; content attributed to the organization only",
			"Add a named author or byline where the content warrants one")
	}
	return fail(SeverityWarning, "No author or organizational attribution found",
		"Attribute the content to a person or organization; unattributed pages score poorly on E-E-A-T")
}

const citationGoodCount = 3

func checkCitationDensity(ev *evidence.Evidence) Finding {
	host := hostOf(ev.FinalURL)
	var external int
	ev.ContentDoc().Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || u.Host == "" {
			return
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		if normalizeHost(u.Host) != host {
			external++
		}
	})

	switch {
	case external >= citationGoodCount:
		return pass(fmt.Sprintf("%d outbound reference links", external))
	case external > 0:
		return partial(0.5, SeverityInfo,
			fmt.Sprintf("Only %d outbound reference links", external),
			"Cite a few authoritative external sources; citations are an expertise signal")
	}
	return fail(SeverityInfo, "No outbound reference links",
		"Link to sources backing the content's claims")
}

// trustLinkPatterns maps a trust signal kind to href substrings that indicate it.
var trustLinkPatterns = map[string][]string{
	"about":   {"/about", "about-us", "/company", "/team"},
	"contact": {"/contact", "contact-us", "mailto:"},
	"policy":  {"/privacy", "/terms", "/legal", "/imprint"},
	"social":  {"twitter.com", "x.com/", "linkedin.com", "facebook.com", "instagram.com", "youtube.com", "github.com"},
}

func checkTrustSignals(ev *evidence.Evidence) Finding {
	kinds := make(map[string]bool)
	ev.ContentDoc().Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		for kind, patterns := range trustLinkPatterns {
			for _, p := range patterns {
				if strings.Contains(lower, p) {
					kinds[kind] = true
				}
			}
		}
	})

	found := make([]string, 0, len(kinds))
	for _, kind := range []string{"about", "contact", "policy", "social"} {
		if kinds[kind] {
			found = append(found, kind)
		}
	}

	switch {
	case len(found) >= 2:
		return pass(fmt.Sprintf("Trust signals present: %s", strings.Join(found, ", ")))
	case len(found) == 1:
		return partial(0.5, SeverityInfo,
			fmt.Sprintf("Limited trust signals (only %s)", found[0]),
			"Add visible about/contact pages and social profile links")
	}
	return fail(SeverityWarning, "No trust signals found",
		"Add about and contact pages plus social profiles; engines use them to verify the entity is real")
}
