// Package schema defines the input-schema property tree: a JSON-Schema-like
// artifact enriched with UI/editor hints, defaults and prefill values. The
// tree is built by the type walker, canonicalized by Normalize and rendered
// with a stable key order.
package schema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Type is the property type tag. Enum properties keep TypeString together
// with a populated Enum list; the variant is distinguished by the presence
// of enum values, matching the serialized artifact shape.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
)

// Property is one node of a schema tree.
type Property struct {
	Title              string      `json:"title,omitempty"`
	Type               Type        `json:"type,omitempty"`
	Description        string      `json:"description,omitempty"`
	Editor             string      `json:"editor,omitempty"`
	Properties         *Properties `json:"properties,omitempty"`
	Required           []string    `json:"required,omitempty"`
	Default            any         `json:"default,omitempty"`
	Prefill            any         `json:"prefill,omitempty"`
	Enum               []any       `json:"enum,omitempty"`
	EnumTitles         []string    `json:"enumTitles,omitempty"`
	ID                 string      `json:"id,omitempty"`
	UniqueItems        *bool       `json:"uniqueItems,omitempty"`
	Example            any         `json:"example,omitempty"`
	Items              *Property   `json:"items,omitempty"`
	SectionCaption     string      `json:"sectionCaption,omitempty"`
	SectionDescription string      `json:"sectionDescription,omitempty"`
}

// IsEnum reports whether the property carries enum values.
func (p *Property) IsEnum() bool {
	return len(p.Enum) > 0
}

// fieldOrder is the canonical key order of the serialized artifact.
// Remaining keys follow in this fixed order as well, since the property
// shape is closed.
var fieldOrder = []string{
	"title", "type", "description", "editor", "properties", "required",
	"default", "prefill", "enum", "enumTitles", "id", "uniqueItems",
	"example", "items", "sectionCaption", "sectionDescription",
}

// MarshalJSON renders the property with the canonical key order, emitting
// only fields that carry a value. The one exception is required: object
// nodes always serialize it, even when empty, so consumers can rely on its
// presence.
func (p *Property) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	write := func(key string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(key)
		buf.WriteString(`":`)
		buf.Write(data)
		return nil
	}

	for _, key := range fieldOrder {
		var (
			value   any
			present bool
		)
		switch key {
		case "title":
			value, present = p.Title, p.Title != ""
		case "type":
			value, present = p.Type, p.Type != ""
		case "description":
			value, present = p.Description, p.Description != ""
		case "editor":
			value, present = p.Editor, p.Editor != ""
		case "properties":
			value, present = p.Properties, p.Properties != nil
		case "required":
			if p.Type == TypeObject {
				required := p.Required
				if required == nil {
					required = []string{}
				}
				value, present = required, true
			} else {
				value, present = p.Required, p.Required != nil
			}
		case "default":
			value, present = p.Default, p.Default != nil
		case "prefill":
			value, present = p.Prefill, p.Prefill != nil
		case "enum":
			value, present = p.Enum, len(p.Enum) > 0
		case "enumTitles":
			value, present = p.EnumTitles, len(p.EnumTitles) > 0
		case "id":
			value, present = p.ID, p.ID != ""
		case "uniqueItems":
			value, present = p.UniqueItems, p.UniqueItems != nil
		case "example":
			value, present = p.Example, p.Example != nil
		case "items":
			value, present = p.Items, p.Items != nil
		case "sectionCaption":
			value, present = p.SectionCaption, p.SectionCaption != ""
		case "sectionDescription":
			value, present = p.SectionDescription, p.SectionDescription != ""
		}
		if !present {
			continue
		}
		if err := write(key, value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalCanonical renders a schema tree as indented canonical JSON.
func MarshalCanonical(p *Property) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Decode parses a schema JSON document.
func Decode(data []byte) (*Property, error) {
	var p Property
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return &p, nil
}

// Properties is an insertion-ordered name → Property mapping with a
// map-shaped JSON representation.
type Properties struct {
	entries []propertyEntry
}

type propertyEntry struct {
	name string
	prop *Property
}

// NewProperties creates an empty ordered mapping.
func NewProperties() *Properties {
	return &Properties{}
}

// Set adds or replaces a property, preserving first-insertion order.
func (ps *Properties) Set(name string, prop *Property) {
	for i := range ps.entries {
		if ps.entries[i].name == name {
			ps.entries[i].prop = prop
			return
		}
	}
	ps.entries = append(ps.entries, propertyEntry{name: name, prop: prop})
}

// Get returns the property registered under name.
func (ps *Properties) Get(name string) (*Property, bool) {
	for i := range ps.entries {
		if ps.entries[i].name == name {
			return ps.entries[i].prop, true
		}
	}
	return nil, false
}

// Has reports whether a property is registered under name.
func (ps *Properties) Has(name string) bool {
	_, ok := ps.Get(name)
	return ok
}

// Names returns the property names in insertion order.
func (ps *Properties) Names() []string {
	names := make([]string, len(ps.entries))
	for i, e := range ps.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of properties.
func (ps *Properties) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.entries)
}

// Each calls fn for every property in insertion order.
func (ps *Properties) Each(fn func(name string, prop *Property)) {
	if ps == nil {
		return
	}
	for _, e := range ps.entries {
		fn(e.name, e.prop)
	}
}

// MarshalJSON renders the mapping as a JSON object in insertion order.
func (ps *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range ps.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.prop)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving document key order.
func (ps *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}
	ps.entries = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: expected string key, got %v", keyTok)
		}
		var prop Property
		if err := dec.Decode(&prop); err != nil {
			return fmt.Errorf("properties: decoding %q: %w", key, err)
		}
		ps.entries = append(ps.entries, propertyEntry{name: key, prop: &prop})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
