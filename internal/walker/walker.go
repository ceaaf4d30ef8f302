// Package walker converts type-graph nodes into schema property trees. The
// classification order is load-bearing: enum-like shapes win over structural
// ones, arrays win inside the structural branch, unrecognized primitives
// fall back to plain strings, and only the explicit any-object marker
// survives the final branch.
package walker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/tsinput/tsinput/internal/annotation"
	"github.com/tsinput/tsinput/internal/schema"
	"github.com/tsinput/tsinput/internal/typegraph"
)

// Walker converts typegraph nodes to schema properties.
type Walker struct {
	annotations *annotation.Parser
	log         zerolog.Logger
}

// New creates a Walker. Structural warnings are reported through log;
// they guide declaration authors and never abort a conversion.
func New(log zerolog.Logger) *Walker {
	return &Walker{
		annotations: annotation.NewParser(log),
		log:         log,
	}
}

// ConvertDeclaration converts one named top-level declaration into a raw
// schema tree. The caller is expected to run the normalizer on the result.
func (w *Walker) ConvertDeclaration(decl typegraph.Declaration) (*schema.Property, error) {
	tags, err := w.annotations.ParseBlock(decl.Doc)
	if err != nil {
		return nil, err
	}
	return w.convert(decl.Type, tags, []string{decl.Name})
}

// convert classifies a single node and dispatches to the variant builders.
// First match wins; the order must not be rearranged.
func (w *Walker) convert(node typegraph.Node, tags *annotation.Set, path []string) (*schema.Property, error) {
	// 1. Enum-like: literal members and unions, except the two-branch
	// boolean union which is the boolean primitive in disguise.
	if node.Kind == typegraph.KindLiteral {
		return w.buildEnum(node, []typegraph.Node{node}, tags, path), nil
	}
	if node.Kind == typegraph.KindUnion {
		if node.IsBooleanUnion() {
			return w.buildPrimitive(typegraph.Node{Kind: typegraph.KindPrimitive, Name: "boolean"}, tags, path), nil
		}
		return w.buildEnum(node, node.Members, tags, path), nil
	}

	// 2. Structural: arrays take priority over plain objects.
	if node.Kind == typegraph.KindArray {
		return w.buildArray(node, tags, path)
	}
	if node.Kind == typegraph.KindObject {
		return w.buildObject(node, tags, path)
	}

	// 3. Primitives, with a permissive string fallback for anything the
	// boundary named but this engine does not recognize.
	if node.Kind == typegraph.KindPrimitive {
		return w.buildPrimitive(node, tags, path), nil
	}

	// 4. Only the explicit any-object marker remains valid here.
	if node.Kind == typegraph.KindAnyObject {
		prop := &schema.Property{Type: schema.TypeObject}
		w.applyTags(prop, tags, path)
		return prop, nil
	}

	return nil, fmt.Errorf("cannot classify type at %q: %s", strings.Join(path, "."), node.String())
}

// buildEnum emits an enum schema. The type stays string — literal-type
// inference beyond strings is deliberately not attempted — and each branch
// contributes its literal value in order.
func (w *Walker) buildEnum(node typegraph.Node, branches []typegraph.Node, tags *annotation.Set, path []string) *schema.Property {
	prop := &schema.Property{
		Type:   schema.TypeString,
		Editor: "select",
	}
	for _, branch := range branches {
		prop.Enum = append(prop.Enum, enumValue(branch))
	}
	w.applyTags(prop, tags, path)
	w.checkEnumDefault(prop, path)
	return prop
}

// enumValue renders a union branch as its enum entry. Literal branches keep
// their value; anything else contributes its source spelling.
func enumValue(branch typegraph.Node) any {
	if branch.Kind == typegraph.KindLiteral {
		if s, ok := branch.Value.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", branch.Value)
	}
	return branch.String()
}

// buildObject recurses into each member, deriving per-member documentation
// and accumulating required membership.
func (w *Walker) buildObject(node typegraph.Node, tags *annotation.Set, path []string) (*schema.Property, error) {
	prop := &schema.Property{
		Type:       schema.TypeObject,
		Properties: schema.NewProperties(),
		Required:   []string{},
	}

	for _, field := range node.Fields {
		childPath := append(append([]string{}, path...), field.Name)
		fieldTags, err := w.annotations.ParseBlock(field.Doc)
		if err != nil {
			return nil, fmt.Errorf("at %q: %w", strings.Join(childPath, "."), err)
		}
		child, err := w.convert(field.Type, fieldTags, childPath)
		if err != nil {
			return nil, err
		}
		if child.Title == "" {
			child.Title = deriveTitle(field.Name)
		}
		if child.Description == "" {
			w.log.Warn().
				Str("property", strings.Join(childPath, ".")).
				Msg("member has no description")
		}
		prop.Properties.Set(field.Name, child)
		if w.isRequired(field, fieldTags, child, path) {
			prop.Required = append(prop.Required, field.Name)
		}
	}

	w.applyTags(prop, tags, path)
	return prop, nil
}

// isRequired applies the required-membership policy: an explicit @required
// annotation always wins; otherwise a member is required when the source
// type does not mark it optional and it carries neither a default nor a
// prefill value.
func (w *Walker) isRequired(field typegraph.Field, tags *annotation.Set, child *schema.Property, path []string) bool {
	if explicit, ok := tags.Bool("required"); ok {
		if explicit && child.Default != nil {
			w.log.Warn().
				Str("property", strings.Join(append(path, field.Name), ".")).
				Msg("member is marked required but also has a default")
		}
		return explicit
	}
	return !field.Optional && child.Default == nil && child.Prefill == nil
}

// buildArray emits an array schema. The element shape is retained whenever
// the boundary reported one; a bare array keeps items unset.
func (w *Walker) buildArray(node typegraph.Node, tags *annotation.Set, path []string) (*schema.Property, error) {
	prop := &schema.Property{
		Type:   schema.TypeArray,
		Editor: "json",
	}
	if node.Element != nil {
		elem, err := w.convert(*node.Element, annotation.Empty(), append(append([]string{}, path...), "[]"))
		if err != nil {
			return nil, err
		}
		prop.Items = elem
		if elem.Type == schema.TypeString && !elem.IsEnum() {
			prop.Editor = "stringList"
		}
	}
	w.applyTags(prop, tags, path)
	return prop, nil
}

// buildPrimitive maps the primitive keywords onto schema types and editor
// defaults. Unrecognized keywords fall back to a plain string field — a
// deliberate permissive default, not an error path.
func (w *Walker) buildPrimitive(node typegraph.Node, tags *annotation.Set, path []string) *schema.Property {
	prop := &schema.Property{}
	switch node.Name {
	case "string":
		prop.Type = schema.TypeString
		prop.Editor = "textfield"
	case "number":
		prop.Type = schema.TypeInteger
		prop.Editor = "number"
	case "boolean":
		prop.Type = schema.TypeBoolean
		prop.Editor = "checkmark"
	default:
		w.log.Debug().
			Str("property", strings.Join(path, ".")).
			Str("keyword", node.Name).
			Msg("unrecognized primitive, falling back to string")
		prop.Type = schema.TypeString
		prop.Editor = "textfield"
	}
	w.applyTags(prop, tags, path)
	return prop
}

// applyTags merges collected annotations onto the emitted node. The editor
// derived from the type mapping is always overridable by an explicit tag.
func (w *Walker) applyTags(prop *schema.Property, tags *annotation.Set, path []string) {
	if title := tags.Str("title"); title != "" {
		prop.Title = title
	}
	if desc := tags.Str("description"); desc != "" {
		prop.Description = desc
	}
	if editor := tags.Str("editor"); editor != "" {
		prop.Editor = editor
	}
	if id := tags.Str("id"); id != "" {
		prop.ID = id
	}
	if caption := tags.Str("sectionCaption"); caption != "" {
		prop.SectionCaption = caption
	}
	if desc := tags.Str("sectionDescription"); desc != "" {
		prop.SectionDescription = desc
	}
	if v, ok := tags.Get("default"); ok && v != nil {
		prop.Default = w.coerceValue(v, prop, "default", path)
	}
	if v, ok := tags.Get("prefill"); ok && v != nil {
		prop.Prefill = w.coerceValue(v, prop, "prefill", path)
	}
	if v, ok := tags.Get("example"); ok && v != nil {
		prop.Example = v
	}
	if titles := tags.StrSlice("enumTitles"); len(titles) > 0 {
		prop.EnumTitles = titles
	}
	if v, ok := tags.Bool("uniqueItems"); ok {
		prop.UniqueItems = &v
	}
}

// coerceValue nudges an evaluated literal toward the property type. A
// mismatch is reported but the value is kept as written; correctness of the
// authored declaration is the author's concern at this level.
func (w *Walker) coerceValue(v any, prop *schema.Property, tag string, path []string) any {
	switch prop.Type {
	case schema.TypeInteger:
		if f, ok := v.(float64); ok {
			if f == float64(int64(f)) {
				return int64(f)
			}
			return f
		}
	case schema.TypeBoolean:
		if _, ok := v.(bool); ok {
			return v
		}
	case schema.TypeString:
		if _, ok := v.(string); ok {
			return v
		}
	default:
		return v
	}
	w.log.Warn().
		Str("property", strings.Join(path, ".")).
		Str("tag", tag).
		Str("type", string(prop.Type)).
		Msgf("value %v does not match the property type", v)
	return v
}

// checkEnumDefault warns when a default or prefill names a value outside
// the enum.
func (w *Walker) checkEnumDefault(prop *schema.Property, path []string) {
	check := func(tag string, v any) {
		if v == nil {
			return
		}
		for _, allowed := range prop.Enum {
			if allowed == v {
				return
			}
		}
		w.log.Warn().
			Str("property", strings.Join(path, ".")).
			Str("tag", tag).
			Msgf("value %v is not an enum member", v)
	}
	check("default", prop.Default)
	check("prefill", prop.Prefill)
}

// deriveTitle upcases the first rune of a member name.
func deriveTitle(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
