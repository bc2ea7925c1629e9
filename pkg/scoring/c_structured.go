package scoring

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/xeipuuv/gojsonschema"

	"github.com/aeoscope/aeoscope/pkg/evidence"
)

// Structured data checks. Organization schema is the single most important
// signal in the audit: it is how answer engines resolve the site to an
// entity, which is why its absence also raises the tier 1 gate signal.

func checkOrgSchemaPresent(ev *evidence.Evidence) Finding {
	org := ev.Organization()
	if org == nil {
		return fail(SeverityCritical, "No Organization schema found",
			"Add Organization JSON-LD with name, url, and logo so answer engines can identify the entity")
	}
	return pass(fmt.Sprintf("Organization schema present (%s)", org.Type))
}

// orgFieldWeights scores Organization completeness. Identity fields dominate;
// provenance details contribute marginally.
var orgFieldWeights = []struct {
	field  string
	weight float64
}{
	{"name", 0.20},
	{"url", 0.20},
	{"logo", 0.15},
	{"description", 0.15},
	{"sameAs", 0.10},
	{"address", 0.10},
	{"contactPoint", 0.05},
	{"foundingDate", 0.025},
	{"founder", 0.025},
}

func orgCompletenessRatio(org *evidence.SchemaBlock) (ratio float64, missing []string) {
	for _, fw := range orgFieldWeights {
		if org.Has(fw.field) {
			ratio += fw.weight
		} else {
			missing = append(missing, fw.field)
		}
	}
	return ratio, missing
}

func checkOrgSchemaCompleteness(ev *evidence.Evidence) Finding {
	org := ev.Organization()
	if org == nil {
		return fail(SeverityWarning, "No Organization schema to evaluate",
			"Add Organization JSON-LD before filling in its fields")
	}
	ratio, missing := orgCompletenessRatio(org)
	pct := int(ratio*100 + 0.5)
	switch {
	case ratio >= 0.7:
		return pass(fmt.Sprintf("Organization schema %d%% complete", pct))
	case ratio >= 0.4:
		return partial(ratio, SeverityWarning,
			fmt.Sprintf("Organization schema only %d%% complete (missing %s)", pct, strings.Join(missing, ", ")),
			"Fill in the missing Organization fields, starting with name, url, and logo")
	}
	return fail(SeverityWarning,
		fmt.Sprintf("Organization schema largely empty (%d%% complete, missing %s)", pct, strings.Join(missing, ", ")),
		"Populate the Organization schema; a near-empty block carries no entity signal")
}

func checkBreadcrumbSchema(ev *evidence.Evidence) Finding {
	for _, b := range ev.Schemas {
		if b.HasType("BreadcrumbList") {
			return pass("BreadcrumbList schema present")
		}
	}
	return fail(SeverityInfo, "No BreadcrumbList schema",
		"Add BreadcrumbList JSON-LD so engines understand where this page sits in the site")
}

func checkFAQHowToSchema(ev *evidence.Evidence) Finding {
	for _, t := range ev.SchemaTypes() {
		switch t {
		case "FAQPage", "QAPage", "HowTo":
			return pass(fmt.Sprintf("%s schema present", t))
		}
	}
	if questionStyleContent(ev.ContentDoc()) {
		return fail(SeverityInfo, "Question-oriented content without FAQPage/HowTo schema",
			"Mark up the existing Q&A sections with FAQPage or HowTo JSON-LD")
	}
	return notApplicable("No FAQ or how-to style content on the page")
}

// questionStyleContent reports whether the page reads like Q&A: multiple
// question headings or collapsible answer sections.
func questionStyleContent(doc *goquery.Document) bool {
	var questions int
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		if strings.HasSuffix(strings.TrimSpace(s.Text()), "?") {
			questions++
		}
	})
	return questions >= 2 || doc.Find("details summary").Length() >= 2
}

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaFiles maps JSON-LD @type values to the embedded JSON Schema that
// validates them. Types without an entry are accepted as-is.
var schemaFiles = map[string]string{
	"Organization":   "schemas/organization.json",
	"LocalBusiness":  "schemas/organization.json",
	"Corporation":    "schemas/organization.json",
	"BreadcrumbList": "schemas/breadcrumblist.json",
	"FAQPage":        "schemas/faqpage.json",
	"HowTo":          "schemas/howto.json",
}

var (
	loadSchemasOnce sync.Once
	typeSchemas     map[string]*gojsonschema.Schema
	schemaLoadErr   error
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	loadSchemasOnce.Do(func() {
		typeSchemas = make(map[string]*gojsonschema.Schema, len(schemaFiles))
		for typ, path := range schemaFiles {
			raw, err := schemaFS.ReadFile(path)
			if err != nil {
				schemaLoadErr = fmt.Errorf("read schema %s: %w", path, err)
				return
			}
			compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				schemaLoadErr = fmt.Errorf("compile schema %s: %w", path, err)
				return
			}
			typeSchemas[typ] = compiled
		}
	})
	return typeSchemas, schemaLoadErr
}

func checkSchemaValid(ev *evidence.Evidence) Finding {
	if len(ev.Schemas) == 0 {
		return notApplicable("No JSON-LD blocks to validate")
	}

	for _, b := range ev.Schemas {
		if b.ParseError != "" {
			return fail(SeverityCritical,
				fmt.Sprintf("JSON-LD block failed to parse: %s", b.ParseError),
				"Fix the JSON syntax; a malformed block is invisible to every consumer")
		}
	}

	schemas, err := loadSchemas()
	if err != nil {
		return fail(SeverityCritical, fmt.Sprintf("schema validation unavailable: %v", err), "")
	}

	var problems []string
	var validated int
	for _, b := range ev.Schemas {
		schema, ok := schemas[b.Type]
		if !ok {
			continue
		}
		validated++
		result, err := schema.Validate(gojsonschema.NewGoLoader(b.Raw))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", b.Type, err))
			continue
		}
		for _, verr := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", b.Type, verr.String()))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		if len(problems) > 3 {
			problems = problems[:3]
		}
		return partial(0.5, SeverityWarning,
			fmt.Sprintf("Schema validation errors: %s", strings.Join(problems, "; ")),
			"Correct the flagged fields so the markup validates cleanly")
	}
	if validated == 0 {
		return pass(fmt.Sprintf("%d JSON-LD blocks parse cleanly", len(ev.Schemas)))
	}
	return pass(fmt.Sprintf("%d JSON-LD blocks valid", len(ev.Schemas)))
}

func checkSchemaContentConsistency(ev *evidence.Evidence) Finding {
	org := ev.Organization()
	if org == nil {
		return notApplicable("No Organization schema to cross-check")
	}
	name := strings.TrimSpace(org.Str("name"))
	if name == "" {
		return fail(SeverityWarning, "Organization schema has no name to cross-check",
			"Set the Organization name field")
	}

	doc := ev.ContentDoc()
	visible := strings.ToLower(doc.Find("title").Text() + " " + doc.Find("h1").Text())
	if strings.Contains(visible, strings.ToLower(name)) {
		return pass(fmt.Sprintf("Organization name %q reflected in title/H1", name))
	}
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		if len(tok) >= 3 && strings.Contains(visible, tok) {
			return partial(0.5, SeverityInfo,
				fmt.Sprintf("Organization name %q only partially matches the page title/H1", name),
				"Align the schema name with the brand name shown on the page")
		}
	}
	return fail(SeverityWarning,
		fmt.Sprintf("Organization name %q does not appear in the page title or H1", name),
		"Use a consistent brand name in the schema and on the page; mismatches dilute entity recognition")
}
