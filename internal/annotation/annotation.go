// Package annotation extracts documentation tags from the comment block
// preceding a declaration or member. Recognized tags are collected into a Set;
// evaluable tags are interpreted as restricted literal expressions (never
// executed as code).
package annotation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// recognized is the allow-list of tag names. "name" is an alias for "title".
var recognized = map[string]string{
	"title":              "title",
	"name":               "title",
	"description":        "description",
	"editor":             "editor",
	"default":            "default",
	"prefill":            "prefill",
	"id":                 "id",
	"enumtitles":         "enumTitles",
	"sectioncaption":     "sectionCaption",
	"sectiondescription": "sectionDescription",
	"required":           "required",
	"uniqueitems":        "uniqueItems",
	"example":            "example",
	"items":              "items",
	"minimum":            "minimum",
	"maximum":            "maximum",
	"schemaversion":      "schemaVersion",
}

// evaluable is the subset of tags whose raw text is interpreted as a literal
// expression instead of kept as plain text.
var evaluable = map[string]bool{
	"default":       true,
	"prefill":       true,
	"minimum":       true,
	"maximum":       true,
	"enumTitles":    true,
	"schemaVersion": true,
	"required":      true,
	"items":         true,
	"example":       true,
}

// Set holds the tags collected from one documentation block. Values are raw
// strings for plain tags and evaluated literals for evaluable tags.
type Set struct {
	values map[string]any
}

// Empty returns a Set with no tags.
func Empty() *Set {
	return &Set{values: map[string]any{}}
}

// Parser extracts and validates annotation sets.
type Parser struct {
	log      zerolog.Logger
	validate *validator.Validate
}

// NewParser creates a Parser that reports tag-shape warnings through log.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{
		log:      log,
		validate: validator.New(),
	}
}

// ParseBlock scans a documentation-comment block for @tag occurrences. The
// value of a tag spans to the next recognized tag or the end of the block.
// Free text before the first tag becomes the description unless an explicit
// @description tag is present. Evaluation failure of an evaluable tag is a
// fatal configuration error.
func (p *Parser) ParseBlock(block string) (*Set, error) {
	set := &Set{values: make(map[string]any)}
	if strings.TrimSpace(block) == "" {
		return set, nil
	}

	text := stripDecoration(block)

	type segment struct {
		tag string
		raw string
	}
	var segments []segment
	current := segment{tag: ""}
	var buf []string

	flush := func() {
		current.raw = strings.TrimSpace(strings.Join(buf, " "))
		segments = append(segments, current)
		buf = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			name, rest := splitTag(trimmed)
			if canonical, ok := recognized[strings.ToLower(name)]; ok {
				flush()
				current = segment{tag: canonical}
				buf = append(buf, rest)
				continue
			}
		}
		buf = append(buf, line)
	}
	flush()

	for _, seg := range segments {
		if seg.tag == "" {
			// Leading free text is an implicit description.
			if seg.raw != "" {
				set.values["description"] = seg.raw
			}
			continue
		}
		if evaluable[seg.tag] {
			val, err := EvalLiteral(seg.raw)
			if err != nil {
				return nil, fmt.Errorf("annotation @%s: cannot evaluate %q: %w", seg.tag, seg.raw, err)
			}
			set.values[seg.tag] = val
			continue
		}
		set.values[seg.tag] = seg.raw
	}

	p.checkShape(set)
	return set, nil
}

// splitTag splits "@editor select" into ("editor", "select").
func splitTag(line string) (name, rest string) {
	line = strings.TrimPrefix(line, "@")
	if idx := strings.IndexAny(line, " \t"); idx >= 0 {
		return line[:idx], strings.TrimSpace(line[idx+1:])
	}
	return line, ""
}

// stripDecoration removes the comment framing: the /** and */ delimiters,
// per-line leading * markers, and // prefixes.
func stripDecoration(block string) string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "/**" || trimmed == "/*" || trimmed == "*/":
			continue
		case strings.HasPrefix(trimmed, "/**"):
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "/**"))
			trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "*/"))
		case strings.HasPrefix(trimmed, "*"):
			trimmed = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "*"), "*/"))
		case strings.HasPrefix(trimmed, "//"):
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

// tagShape models the permitted shape of a collected tag set for validation.
// Violations are warnings, not errors — the set is used as collected.
type tagShape struct {
	Title         string   `validate:"omitempty,max=200"`
	Editor        string   `validate:"omitempty,oneof=textfield textarea number checkmark select stringList json hidden"`
	ID            string   `validate:"omitempty,excludesall=0x20"`
	EnumTitles    []string `validate:"omitempty,dive,min=1"`
	SchemaVersion *float64 `validate:"omitempty,min=1"`
}

// checkShape validates the collected tags against the permitted tag shapes.
// On violation it warns and continues; the annotation set is never dropped.
func (p *Parser) checkShape(set *Set) {
	shape := tagShape{
		Title:      set.Str("title"),
		Editor:     set.Str("editor"),
		ID:         set.Str("id"),
		EnumTitles: set.StrSlice("enumTitles"),
	}
	if v, ok := set.Float("schemaVersion"); ok {
		shape.SchemaVersion = &v
	}
	if err := p.validate.Struct(shape); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				p.log.Warn().
					Str("tag", strings.ToLower(fe.Field())).
					Str("constraint", fe.Tag()).
					Msg("annotation tag has unexpected shape, using value as collected")
			}
			return
		}
		p.log.Warn().Err(err).Msg("annotation tag validation failed, using values as collected")
	}
}

// Has reports whether the tag was present in the block.
func (s *Set) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Get returns the raw or evaluated value of a tag.
func (s *Set) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Str returns the tag value as a string, or "" when absent or non-string.
func (s *Set) Str(name string) string {
	if v, ok := s.values[name].(string); ok {
		return v
	}
	return ""
}

// Bool returns the tag value as a boolean. Raw-string tags holding "true"
// or "false" are accepted as well.
func (s *Set) Bool(name string) (bool, bool) {
	switch v := s.values[name].(type) {
	case bool:
		return v, true
	case string:
		switch strings.TrimSpace(v) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Float returns the tag value as a float64.
func (s *Set) Float(name string) (float64, bool) {
	v, ok := s.values[name].(float64)
	return v, ok
}

// StrSlice returns the tag value as a string slice. Evaluated arrays with
// non-string elements yield their string rendering.
func (s *Set) StrSlice(name string) []string {
	arr, ok := s.values[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if str, ok := el.(string); ok {
			out = append(out, str)
		} else {
			out = append(out, fmt.Sprintf("%v", el))
		}
	}
	return out
}

// Len returns the number of collected tags.
func (s *Set) Len() int {
	return len(s.values)
}
