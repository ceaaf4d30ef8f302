// Package typegraph defines the closed set of type nodes produced by the
// source-introspection boundary. Downstream conversion pattern-matches over
// Kind instead of probing compiler flags, so every shape the engine can
// encounter is enumerated here.
package typegraph

import "fmt"

// Kind is the primary classification of a type node.
type Kind string

const (
	// KindPrimitive covers string, number, boolean and any other bare type
	// keyword the source used. Unrecognized names are kept verbatim so the
	// walker can apply its permissive string fallback.
	KindPrimitive Kind = "primitive"
	// KindLiteral is a single literal type such as 'admin' or 42.
	KindLiteral Kind = "literal"
	// KindUnion is a union of two or more branches (A | B | C).
	KindUnion Kind = "union"
	// KindObject is an interface, class or structural object literal.
	KindObject Kind = "object"
	// KindArray is T[] or Array<T>. Element may be nil when the source
	// spelled a bare array with no element type.
	KindArray Kind = "array"
	// KindAnyObject is the explicit "any object" marker (the `object`
	// keyword or Record<string, unknown>).
	KindAnyObject Kind = "anyObject"
	// KindOpaque is anything the boundary could not classify. The walker
	// treats it as an unrecoverable error.
	KindOpaque Kind = "opaque"
)

// Node is one node of the type graph.
type Node struct {
	Kind Kind

	// Name holds the primitive keyword for KindPrimitive ("string",
	// "number", ...) and the referenced declaration name when the node was
	// resolved through a named type alias or interface.
	Name string

	// Value is the literal value for KindLiteral. Strings are unquoted.
	Value any

	// Members are the union branches for KindUnion.
	Members []Node

	// Fields are the object members for KindObject, in declaration order.
	Fields []Field

	// Element is the array element type for KindArray, nil when unknown.
	Element *Node

	// Raw preserves the source spelling for KindOpaque diagnostics.
	Raw string
}

// Field is a named member of an object node.
type Field struct {
	Name string
	// Doc is the raw documentation-comment block preceding the member,
	// without the comment decoration stripped — the annotation parser owns
	// that concern.
	Doc      string
	Optional bool
	Type     Node
}

// Declaration is one named top-level type declaration found in a source file.
type Declaration struct {
	Name string
	// Doc is the documentation block preceding the declaration itself.
	Doc  string
	Type Node
}

// IsBooleanUnion reports whether a union node is exactly the two-branch
// true | false union, which classifies as the boolean primitive rather
// than an enum.
func (n Node) IsBooleanUnion() bool {
	if n.Kind != KindUnion || len(n.Members) != 2 {
		return false
	}
	seen := map[bool]bool{}
	for _, m := range n.Members {
		b, ok := m.Value.(bool)
		if m.Kind != KindLiteral || !ok {
			return false
		}
		seen[b] = true
	}
	return seen[true] && seen[false]
}

// String renders a short human-readable description used in diagnostics.
func (n Node) String() string {
	switch n.Kind {
	case KindPrimitive:
		return n.Name
	case KindLiteral:
		return fmt.Sprintf("literal %v", n.Value)
	case KindUnion:
		return fmt.Sprintf("union of %d branches", len(n.Members))
	case KindObject:
		if n.Name != "" {
			return "object " + n.Name
		}
		return "object"
	case KindArray:
		if n.Element != nil {
			return n.Element.String() + "[]"
		}
		return "array"
	case KindAnyObject:
		return "object (untyped)"
	default:
		if n.Raw != "" {
			return fmt.Sprintf("unclassified type %q", n.Raw)
		}
		return "unclassified type"
	}
}
