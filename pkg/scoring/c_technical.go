package scoring

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// Technical SEO checks. Head metadata is read from the static tree: crawlers
// that matter here read raw HTML, so a title injected by JavaScript does not
// count. Content checks (word count, links, alt text) prefer the rendered
// tree and degrade when it is unavailable.

const (
	titleMinChars = 30
	titleMaxChars = 65
	descMinChars  = 120
	descMaxChars  = 160
)

func checkTitleTag(ev *evidence.Evidence) Finding {
	title := strings.TrimSpace(ev.Doc().Find("head title").First().Text())
	n := len([]rune(title))
	switch {
	case n == 0:
		return fail(SeverityCritical, "Missing title tag",
			"Add a descriptive <title> of 30-65 characters; it is the primary snippet answer engines quote")
	case n < titleMinChars:
		return partial(0.5, SeverityWarning,
			fmt.Sprintf("Title tag too short (%d characters)", n),
			"Expand the title to 30-65 characters so it can carry a complete answer")
	case n > titleMaxChars:
		return partial(0.5, SeverityWarning,
			fmt.Sprintf("Title tag too long (%d characters)", n),
			"Shorten the title to 65 characters or fewer to avoid truncation")
	}
	return pass(fmt.Sprintf("Title tag present (%d characters)", n))
}

func checkMetaDescription(ev *evidence.Evidence) Finding {
	desc, _ := ev.Doc().Find(`head meta[name="description"]`).First().Attr("content")
	desc = strings.TrimSpace(desc)
	n := len([]rune(desc))
	switch {
	case n == 0:
		return fail(SeverityWarning, "Missing meta description",
			"Add a meta description of 120-160 characters summarizing the page")
	case n < descMinChars:
		return partial(0.5, SeverityInfo,
			fmt.Sprintf("Meta description too short (%d characters)", n),
			"Expand the description to 120-160 characters")
	case n > descMaxChars:
		return partial(0.5, SeverityInfo,
			fmt.Sprintf("Meta description too long (%d characters)", n),
			"Trim the description to 160 characters or fewer")
	}
	return pass(fmt.Sprintf("Meta description present (%d characters)", n))
}

func checkH1Heading(ev *evidence.Evidence) Finding {
	n := ev.ContentDoc().Find("h1").Length()
	switch {
	case n == 0:
		return fail(SeverityCritical, "No H1 heading found",
			"Add exactly one H1 stating what the page is about")
	case n > 1:
		return partial(0.5, SeverityWarning,
			fmt.Sprintf("Multiple H1 headings found (%d)", n),
			"Keep a single H1; demote the others to H2")
	}
	return pass("Exactly one H1 heading")
}

func checkHeadingHierarchy(ev *evidence.Evidence) Finding {
	doc := ev.ContentDoc()
	h2 := doc.Find("h2").Length()
	h3 := doc.Find("h3").Length()
	if h2 == 0 && h3 > 0 {
		return partial(0.5, SeverityInfo,
			fmt.Sprintf("H3 headings (%d) without any H2", h3),
			"Use H2 for top-level sections before nesting H3")
	}
	if h2 == 0 {
		return fail(SeverityWarning, "No H2 section headings",
			"Break the content into H2 sections; answer engines extract section-level answers")
	}
	return pass(fmt.Sprintf("Heading structure present (%d H2, %d H3)", h2, h3))
}

func checkImageAltText(ev *evidence.Evidence) Finding {
	imgs := ev.ContentDoc().Find("img")
	total := imgs.Length()
	if total == 0 {
		return notApplicable("No images on the page")
	}

	var missing, empty int
	imgs.Each(func(_ int, s *goquery.Selection) {
		alt, ok := s.Attr("alt")
		if !ok {
			missing++
		} else if strings.TrimSpace(alt) == "" {
			empty++
		}
	})
	described := total - missing - empty

	var f Finding
	switch {
	case missing == total:
		f = fail(SeverityWarning,
			fmt.Sprintf("None of %d images have alt attributes", total),
			"Add descriptive alt text to every meaningful image")
	case missing > 0:
		f = partial(float64(described)/float64(total), SeverityWarning,
			fmt.Sprintf("%d of %d images lack alt attributes", missing, total),
			"Add alt attributes to the remaining images")
	case described == 0:
		f = partial(0.3, SeverityInfo,
			fmt.Sprintf("All %d image alt attributes are empty", total),
			"Fill in descriptive alt text; empty alt is only correct for decorative images")
	default:
		f = pass(fmt.Sprintf("%d of %d images have alt text", described, total))
	}
	return staticDegraded(ev, f)
}

func checkMobileViewport(ev *evidence.Evidence) Finding {
	content, ok := ev.Doc().Find(`head meta[name="viewport"]`).First().Attr("content")
	if !ok {
		return fail(SeverityCritical, "Missing viewport meta tag",
			`Add <meta name="viewport" content="width=device-width, initial-scale=1">`)
	}
	if !strings.Contains(strings.ToLower(content), "width=device-width") {
		return partial(0.5, SeverityWarning,
			"Viewport meta tag does not use width=device-width",
			"Set the viewport content to width=device-width for responsive rendering")
	}
	return pass("Mobile viewport configured")
}

func checkHTTPS(ev *evidence.Evidence) Finding {
	if strings.HasPrefix(strings.ToLower(ev.FinalURL), "https://") {
		return pass("Page served over HTTPS")
	}
	return fail(SeverityCritical, "Page not served over HTTPS",
		"Serve the site over HTTPS; insecure pages are excluded from AI citations")
}

func checkCanonicalTag(ev *evidence.Evidence) Finding {
	sel := ev.Doc().Find(`head link[rel="canonical"]`).First()
	if sel.Length() == 0 {
		return fail(SeverityInfo, "No canonical link tag",
			"Add a self-referencing canonical link to consolidate duplicate URLs")
	}
	href, _ := sel.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return fail(SeverityWarning, "Canonical link tag has empty href",
			"Point the canonical link at the page's preferred URL")
	}
	if sameCanonicalURL(href, ev.FinalURL) {
		return pass("Self-referencing canonical tag")
	}
	return partial(0.5, SeverityInfo,
		fmt.Sprintf("Canonical points to a different URL: %s", href),
		"Verify the canonical target is intentional; this page's content credits another URL")
}

// sameCanonicalURL compares two URLs ignoring scheme, trailing slash, and
// fragment, which is how canonical self-reference is conventionally judged.
func sameCanonicalURL(a, b string) bool {
	norm := func(raw string) string {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return strings.TrimRight(strings.ToLower(raw), "/")
		}
		host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
		path := strings.TrimRight(u.Path, "/")
		return host + path + "?" + u.RawQuery
	}
	return norm(a) == norm(b)
}

func checkRobotsMeta(ev *evidence.Evidence) Finding {
	if ev.Robots.HasDirective("noindex") || ev.Robots.HasDirective("none") {
		return fail(SeverityCritical, "Page is marked noindex",
			"Remove the noindex directive; a noindexed page cannot be cited by anyone")
	}
	if ev.Robots.HasDirective("nofollow") {
		return partial(0.5, SeverityWarning, "Page is marked nofollow",
			"Remove the nofollow directive so crawlers can discover linked content")
	}
	return pass("No blocking robots directives")
}

const (
	wordCountMin  = 300
	wordCountGood = 500
)

func checkContentWordCount(ev *evidence.Evidence) Finding {
	words := visibleWordCount(ev.ContentDoc())
	var f Finding
	switch {
	case words < wordCountMin:
		f = fail(SeverityWarning,
			fmt.Sprintf("Thin content: %d words", words),
			"Aim for at least 300 words of substantive content; answer engines skip thin pages")
	case words < wordCountGood:
		f = partial(0.66, SeverityInfo,
			fmt.Sprintf("Moderate content depth: %d words", words),
			"Consider expanding toward 500+ words for stronger answer coverage")
	default:
		f = pass(fmt.Sprintf("Substantial content: %d words", words))
	}
	return staticDegraded(ev, f)
}

// visibleWordCount counts whitespace-separated tokens in the body after
// dropping script, style, and noscript subtrees.
func visibleWordCount(doc *goquery.Document) int {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return len(strings.Fields(body.Text()))
}

func checkInternalLinks(ev *evidence.Evidence) Finding {
	host := hostOf(ev.FinalURL)
	var internal int
	ev.ContentDoc().Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if isInternalLink(href, host) {
			internal++
		}
	})

	var f Finding
	switch {
	case internal == 0:
		f = fail(SeverityWarning, "No internal links found",
			"Link to related pages on the site; orphan pages read as low-authority")
	case internal < 3:
		f = partial(0.5, SeverityInfo,
			fmt.Sprintf("Only %d internal links", internal),
			"Add a few more links to related content on the site")
	default:
		f = pass(fmt.Sprintf("%d internal links", internal))
	}
	return staticDegraded(ev, f)
}

func isInternalLink(href, host string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "javascript:") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return u.Path != ""
	}
	return normalizeHost(u.Host) == host
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return normalizeHost(u.Host)
}

func normalizeHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(h), "www.")
}

func checkLanguageAttr(ev *evidence.Evidence) Finding {
	lang, ok := ev.Doc().Find("html").First().Attr("lang")
	if !ok || strings.TrimSpace(lang) == "" {
		return fail(SeverityInfo, "Missing lang attribute on <html>",
			`Declare the page language, e.g. <html lang="en">`)
	}
	return pass(fmt.Sprintf("Page language declared (%s)", strings.TrimSpace(lang)))
}

func checkSitemap(ev *evidence.Evidence) Finding {
	if ev.Rendering.SitemapFound {
		return pass("sitemap.xml found")
	}
	return fail(SeverityWarning, "No sitemap.xml found",
		"Publish a sitemap.xml and reference it from robots.txt")
}

func checkResponseTime(ev *evidence.Evidence) Finding {
	ms := ev.Rendering.ResponseTimeMs
	switch {
	case ms <= 0:
		return notApplicable("Response time not measured")
	case ms < 500:
		return pass(fmt.Sprintf("Fast response (%d ms)", ms))
	case ms < 1000:
		return partial(0.7, SeverityInfo,
			fmt.Sprintf("Acceptable response time (%d ms)", ms),
			"Aim for under 500 ms; crawl budget favors fast origins")
	case ms < 2000:
		return partial(0.3, SeverityWarning,
			fmt.Sprintf("Slow response (%d ms)", ms),
			"Reduce server response time below one second")
	}
	return fail(SeverityCritical,
		fmt.Sprintf("Very slow response (%d ms)", ms),
		"Responses above two seconds risk crawler timeouts; fix origin performance first")
}

func checkHreflangTags(ev *evidence.Evidence) Finding {
	tags := ev.Doc().Find(`head link[rel="alternate"][hreflang]`)
	if tags.Length() == 0 {
		return notApplicable("No hreflang tags (single-language site)")
	}
	hasDefault := false
	tags.Each(func(_ int, s *goquery.Selection) {
		if v, _ := s.Attr("hreflang"); strings.EqualFold(v, "x-default") {
			hasDefault = true
		}
	})
	if !hasDefault {
		return partial(0.5, SeverityInfo,
			fmt.Sprintf("%d hreflang tags without an x-default", tags.Length()),
			"Add an x-default hreflang entry as the language fallback")
	}
	return pass(fmt.Sprintf("%d hreflang tags with x-default", tags.Length()))
}

func checkRenderBlocking(ev *evidence.Evidence) Finding {
	var blocking int
	ev.Doc().Find("head script[src]").Each(func(_ int, s *goquery.Selection) {
		if _, async := s.Attr("async"); async {
			return
		}
		if _, deferred := s.Attr("defer"); deferred {
			return
		}
		if t, _ := s.Attr("type"); strings.EqualFold(t, "module") {
			return
		}
		blocking++
	})

	switch {
	case blocking == 0:
		return pass("No render-blocking scripts in <head>")
	case blocking <= 2:
		return partial(0.5, SeverityInfo,
			fmt.Sprintf("%d render-blocking scripts in <head>", blocking),
			"Add async or defer to head scripts")
	}
	return fail(SeverityWarning,
		fmt.Sprintf("%d render-blocking scripts in <head>", blocking),
		"Defer non-critical scripts; blocking scripts delay first render for users and renderers alike")
}
