package schema

import "github.com/rs/zerolog"

// Normalizer canonicalizes a schema tree in place. Normalizing an already
// normalized tree is a no-op.
type Normalizer struct {
	log zerolog.Logger
}

// NewNormalizer creates a Normalizer reporting invariant repairs through log.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Normalize walks the tree post-order and enforces the structural
// invariants: required lives only on object nodes (and is always present
// there), required names reference existing sibling properties without
// duplicates, and enumTitles never outruns enum.
func (n *Normalizer) Normalize(p *Property) {
	if p == nil {
		return
	}

	p.Properties.Each(func(name string, child *Property) {
		n.Normalize(child)
	})
	if p.Items != nil {
		n.Normalize(p.Items)
	}

	if p.Type != TypeObject {
		if p.Required != nil {
			p.Required = nil
		}
	} else {
		p.Required = n.cleanRequired(p)
	}

	if len(p.EnumTitles) > len(p.Enum) {
		n.log.Warn().
			Str("title", p.Title).
			Int("enum", len(p.Enum)).
			Int("enumTitles", len(p.EnumTitles)).
			Msg("enumTitles longer than enum, truncating")
		p.EnumTitles = p.EnumTitles[:len(p.Enum)]
	}
}

// cleanRequired dedupes the required list and drops names that reference no
// sibling property. Object nodes always end up with a non-nil list.
func (n *Normalizer) cleanRequired(p *Property) []string {
	cleaned := []string{}
	seen := map[string]bool{}
	for _, name := range p.Required {
		if seen[name] {
			continue
		}
		seen[name] = true
		if p.Properties != nil && !p.Properties.Has(name) {
			n.log.Warn().
				Str("required", name).
				Msg("required names a property that does not exist, dropping")
			continue
		}
		if p.Properties == nil {
			n.log.Warn().
				Str("required", name).
				Msg("required present on object without properties, dropping")
			continue
		}
		cleaned = append(cleaned, name)
	}
	return cleaned
}
