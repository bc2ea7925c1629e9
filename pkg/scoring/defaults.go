package scoring

// DefaultChecks returns the standard check table. IDs and weights are a
// compatibility surface: persisted audits and API consumers key on them, so
// changes require a new Config.Version.
func DefaultChecks() []CheckSpec {
	return []CheckSpec{
		// Technical SEO, 50 points.
		{ID: "title_tag", Category: CategoryTechnical, MaxPoints: 5, Eval: checkTitleTag},
		{ID: "meta_description", Category: CategoryTechnical, MaxPoints: 4, Eval: checkMetaDescription},
		{ID: "h1_heading", Category: CategoryTechnical, MaxPoints: 4, Eval: checkH1Heading},
		{ID: "heading_hierarchy", Category: CategoryTechnical, MaxPoints: 3, Eval: checkHeadingHierarchy},
		{ID: "image_alt_text", Category: CategoryTechnical, MaxPoints: 3, Eval: checkImageAltText},
		{ID: "mobile_viewport", Category: CategoryTechnical, MaxPoints: 3, Eval: checkMobileViewport},
		{ID: "https", Category: CategoryTechnical, MaxPoints: 4, Eval: checkHTTPS},
		{ID: "canonical_tag", Category: CategoryTechnical, MaxPoints: 3, Eval: checkCanonicalTag},
		{ID: "robots_meta", Category: CategoryTechnical, MaxPoints: 4, Eval: checkRobotsMeta},
		{ID: "content_word_count", Category: CategoryTechnical, MaxPoints: 3, Eval: checkContentWordCount},
		{ID: "internal_links", Category: CategoryTechnical, MaxPoints: 3, Eval: checkInternalLinks},
		{ID: "language_attr", Category: CategoryTechnical, MaxPoints: 2, Eval: checkLanguageAttr},
		{ID: "sitemap", Category: CategoryTechnical, MaxPoints: 3, Eval: checkSitemap},
		{ID: "response_time", Category: CategoryTechnical, MaxPoints: 2, Eval: checkResponseTime},
		{ID: "hreflang_tags", Category: CategoryTechnical, MaxPoints: 2, Eval: checkHreflangTags},
		{ID: "render_blocking", Category: CategoryTechnical, MaxPoints: 2, Eval: checkRenderBlocking},

		// Structured data, 24 points.
		{ID: "org_schema_present", Category: CategoryStructuredData, MaxPoints: 6, Eval: checkOrgSchemaPresent},
		{ID: "org_schema_completeness", Category: CategoryStructuredData, MaxPoints: 5, Eval: checkOrgSchemaCompleteness},
		{ID: "breadcrumb_schema", Category: CategoryStructuredData, MaxPoints: 3, Eval: checkBreadcrumbSchema},
		{ID: "faq_howto_schema", Category: CategoryStructuredData, MaxPoints: 3, Eval: checkFAQHowToSchema},
		{ID: "schema_valid", Category: CategoryStructuredData, MaxPoints: 4, Eval: checkSchemaValid},
		{ID: "schema_content_consistency", Category: CategoryStructuredData, MaxPoints: 3, Eval: checkSchemaContentConsistency},

		// AI crawler access, 16 points.
		{ID: "ai_crawler_access", Category: CategoryCrawlerAccess, MaxPoints: 5, Eval: checkAICrawlerAccess},
		{ID: "wildcard_disallow", Category: CategoryCrawlerAccess, MaxPoints: 4, Eval: checkWildcardDisallow},
		{ID: "noai_meta", Category: CategoryCrawlerAccess, MaxPoints: 3, Eval: checkNoAIMeta},
		{ID: "ai_ua_fetch", Category: CategoryCrawlerAccess, MaxPoints: 4, Eval: checkAIUserAgentFetch},

		// Authority, 10 points.
		{ID: "author_attribution", Category: CategoryAuthority, MaxPoints: 4, Eval: checkAuthorAttribution},
		{ID: "citation_density", Category: CategoryAuthority, MaxPoints: 3, Eval: checkCitationDensity},
		{ID: "trust_signals", Category: CategoryAuthority, MaxPoints: 3, Eval: checkTrustSignals},
	}
}

// DefaultSignals returns the gate signal mappings. ai_crawler_access fails
// only when every monitored crawler is blocked, so its Fail verdict is the
// total-block signal.
func DefaultSignals() []GateSignal {
	return []GateSignal{
		{Name: SignalBlocksAllAICrawlers, CheckID: "ai_crawler_access", Verdict: VerdictFail},
		{Name: SignalMissingOrganizationSchema, CheckID: "org_schema_present", Verdict: VerdictFail},
	}
}

// DefaultRegistry builds and validates the standard registry.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(DefaultChecks(), DefaultSignals())
}
