// Package emitter renders a schema property tree back into declaration text
// with re-synthesized documentation comments. It is the inverse of the type
// walker: the output parses back into an equivalent type graph.
package emitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsinput/tsinput/internal/schema"
)

const indentUnit = "  "

// Emitter renders declarations. Nested object properties carrying an id are
// hoisted into standalone named declarations emitted before the referencing
// one.
type Emitter struct {
	hoisted []string
}

// New creates an Emitter.
func New() *Emitter {
	return &Emitter{}
}

// Emit renders one named top-level declaration. The returned text contains
// any hoisted named declarations followed by the declaration itself. The
// root object always renders inline; only nested objects hoist.
func (e *Emitter) Emit(name string, p *schema.Property) string {
	e.hoisted = nil

	var b strings.Builder
	doc := e.renderDoc(p, nil, "")
	if doc != "" {
		b.WriteString(doc)
	}
	expr := ""
	if p.Type == schema.TypeObject && p.Properties.Len() > 0 {
		expr = e.objectBody(p, "")
	} else {
		expr = e.typeExpr(p, "")
	}
	b.WriteString(fmt.Sprintf("export type %s = %s;\n", name, expr))

	if len(e.hoisted) == 0 {
		return b.String()
	}
	return strings.Join(append(e.hoisted, b.String()), "\n")
}

// renderMember renders one object member: its documentation block followed
// by the declaration line. The required flag is supplied by the caller from
// the parent's required set; it is never read off the node itself.
func (e *Emitter) renderMember(name string, p *schema.Property, required bool, indent string) string {
	var b strings.Builder
	b.WriteString(e.renderDoc(p, &required, indent))

	optional := ""
	// A member with a computed default need not be supplied by a caller,
	// so it is spelled optional regardless of the required flag.
	if p.Default != nil {
		optional = "?"
	}
	b.WriteString(fmt.Sprintf("%s%s%s: %s;\n", indent, name, optional, e.typeExpr(p, indent)))
	return b.String()
}

// renderDoc synthesizes the documentation-comment block. One line per
// non-structural field; evaluable fields are re-serialized as literal
// expressions.
func (e *Emitter) renderDoc(p *schema.Property, required *bool, indent string) string {
	var lines []string
	add := func(tag, value string) {
		lines = append(lines, fmt.Sprintf("@%s %s", tag, value))
	}

	if p.Title != "" {
		add("title", p.Title)
	}
	if p.Description != "" {
		add("description", p.Description)
	}
	if p.Editor != "" {
		add("editor", p.Editor)
	}
	if p.Default != nil {
		add("default", renderLiteral(p.Default))
	}
	if p.Prefill != nil {
		add("prefill", renderLiteral(p.Prefill))
	}
	if p.Example != nil {
		add("example", renderLiteral(p.Example))
	}
	if len(p.EnumTitles) > 0 {
		add("enumTitles", renderLiteral(toAnySlice(p.EnumTitles)))
	}
	if p.ID != "" {
		add("id", p.ID)
	}
	if p.UniqueItems != nil {
		add("uniqueItems", renderLiteral(*p.UniqueItems))
	}
	if p.SectionCaption != "" {
		add("sectionCaption", p.SectionCaption)
	}
	if p.SectionDescription != "" {
		add("sectionDescription", p.SectionDescription)
	}
	if required != nil {
		add("required", renderLiteral(*required))
	}

	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, line := range lines {
		b.WriteString(indent + " * " + line + "\n")
	}
	b.WriteString(indent + " */\n")
	return b.String()
}

// typeExpr renders the type expression for a node.
func (e *Emitter) typeExpr(p *schema.Property, indent string) string {
	if p.IsEnum() {
		parts := make([]string, len(p.Enum))
		for i, v := range p.Enum {
			parts[i] = renderLiteral(v)
		}
		return strings.Join(parts, " | ")
	}

	switch p.Type {
	case schema.TypeInteger:
		return "number"
	case schema.TypeBoolean:
		return "boolean"
	case schema.TypeString:
		return "string"
	case schema.TypeArray:
		if p.Editor == "stringList" {
			return "string[]"
		}
		return "any[]"
	case schema.TypeObject:
		if p.Properties.Len() == 0 {
			return "object"
		}
		if p.ID != "" {
			return e.hoist(p)
		}
		return e.objectBody(p, indent)
	default:
		return "string"
	}
}

// objectBody renders the inline { … } body, recursing one indentation level
// deeper. Each member's required membership is looked up in this node's
// required set.
func (e *Emitter) objectBody(p *schema.Property, indent string) string {
	inner := indent + indentUnit
	var b strings.Builder
	b.WriteString("{\n")
	for i, name := range p.Properties.Names() {
		child, _ := p.Properties.Get(name)
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.renderMember(name, child, contains(p.Required, name), inner))
	}
	b.WriteString(indent + "}")
	return b.String()
}

// hoist registers a standalone named declaration for an object carrying an
// id and returns the name it is referenced by.
func (e *Emitter) hoist(p *schema.Property) string {
	name := PascalCase(p.ID)

	// The id is implied by the declaration name; strip it so the hoisted
	// block does not repeat it, but keep the rest of the documentation.
	clone := *p
	clone.ID = ""

	var b strings.Builder
	b.WriteString(e.renderDoc(&clone, nil, ""))
	b.WriteString(fmt.Sprintf("export type %s = %s;\n", name, e.objectBody(&clone, "")))
	e.hoisted = append(e.hoisted, b.String())
	return name
}

// renderLiteral serializes a value as a literal expression in the dialect
// the annotation evaluator accepts: single-quoted strings, plain numbers
// and booleans, bracketed arrays, braced objects.
func renderLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(val) + "'"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case []any:
		parts := make([]string, len(val))
		for i, el := range val {
			parts[i] = renderLiteral(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return renderLiteral(toAnySlice(val))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, renderLiteral(val[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// PascalCase folds a kebab-, snake- or space-separated name into PascalCase.
func PascalCase(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch r {
		case '-', '_', ' ', '.':
			upper = true
		default:
			if upper {
				b.WriteRune(toUpper(r))
				upper = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func contains(list []string, name string) bool {
	for _, el := range list {
		if el == name {
			return true
		}
	}
	return false
}
