package evidence

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SchemaBlock is one parsed JSON-LD item. Top-level arrays and @graph
// containers are flattened, so one <script> tag may yield several blocks.
// A block with a non-empty ParseError carries no data; it exists so the
// validity check can report broken markup instead of silently ignoring it.
type SchemaBlock struct {
	Type       string         // primary @type; "" if missing
	Types      []string       // all @type values (the field may be an array)
	Raw        map[string]any // the decoded object; nil on parse error
	ParseError string
}

var organizationTypes = map[string]bool{
	"Organization":  true,
	"LocalBusiness": true,
	"Corporation":   true,
	"Company":       true,
}

// IsOrganization reports whether any of the block's types identify an
// organization entity.
func (b *SchemaBlock) IsOrganization() bool {
	for _, t := range b.Types {
		if organizationTypes[t] {
			return true
		}
	}
	return false
}

// HasType reports whether the block declares the given @type.
func (b *SchemaBlock) HasType(t string) bool {
	for _, bt := range b.Types {
		if bt == t {
			return true
		}
	}
	return false
}

// Str returns the named field as a string, or "" when absent or non-string.
// Nested objects commonly used for logo/image fields resolve via their url.
func (b *SchemaBlock) Str(field string) string {
	if b.Raw == nil {
		return ""
	}
	switch v := b.Raw[field].(type) {
	case string:
		return v
	case map[string]any:
		if u, ok := v["url"].(string); ok {
			return u
		}
	}
	return ""
}

// Has reports whether the named field is present and non-empty.
func (b *SchemaBlock) Has(field string) bool {
	if b.Raw == nil {
		return false
	}
	switch v := b.Raw[field].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// StrSlice returns the named field as a string slice; a scalar string
// becomes a single-element slice.
func (b *SchemaBlock) StrSlice(field string) []string {
	if b.Raw == nil {
		return nil
	}
	switch v := b.Raw[field].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ExtractSchemas pulls every JSON-LD block out of the document, flattening
// @graph containers and top-level arrays. Order follows document order.
func ExtractSchemas(doc *goquery.Document) []SchemaBlock {
	var blocks []SchemaBlock
	if doc == nil {
		return blocks
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			blocks = append(blocks, SchemaBlock{ParseError: err.Error()})
			return
		}
		blocks = append(blocks, flattenSchema(decoded)...)
	})

	return blocks
}

func flattenSchema(decoded any) []SchemaBlock {
	var blocks []SchemaBlock

	switch v := decoded.(type) {
	case []any:
		for _, item := range v {
			blocks = append(blocks, flattenSchema(item)...)
		}
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				blocks = append(blocks, flattenSchema(item)...)
			}
			return blocks
		}
		blocks = append(blocks, newBlock(v))
	}

	return blocks
}

func newBlock(obj map[string]any) SchemaBlock {
	b := SchemaBlock{Raw: obj}
	switch t := obj["@type"].(type) {
	case string:
		b.Type = t
		b.Types = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				b.Types = append(b.Types, s)
			}
		}
		if len(b.Types) > 0 {
			b.Type = b.Types[0]
		}
	}
	return b
}
