package typegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBooleanUnion(t *testing.T) {
	boolUnion := Node{Kind: KindUnion, Members: []Node{
		{Kind: KindLiteral, Value: true},
		{Kind: KindLiteral, Value: false},
	}}
	assert.True(t, boolUnion.IsBooleanUnion())

	sameBranchTwice := Node{Kind: KindUnion, Members: []Node{
		{Kind: KindLiteral, Value: true},
		{Kind: KindLiteral, Value: true},
	}}
	assert.False(t, sameBranchTwice.IsBooleanUnion())

	mixed := Node{Kind: KindUnion, Members: []Node{
		{Kind: KindLiteral, Value: true},
		{Kind: KindLiteral, Value: "false"},
	}}
	assert.False(t, mixed.IsBooleanUnion())

	threeBranches := Node{Kind: KindUnion, Members: []Node{
		{Kind: KindLiteral, Value: true},
		{Kind: KindLiteral, Value: false},
		{Kind: KindLiteral, Value: "x"},
	}}
	assert.False(t, threeBranches.IsBooleanUnion())

	notAUnion := Node{Kind: KindLiteral, Value: true}
	assert.False(t, notAUnion.IsBooleanUnion())
}

func TestNodeString(t *testing.T) {
	elem := Node{Kind: KindPrimitive, Name: "string"}
	cases := []struct {
		node Node
		want string
	}{
		{Node{Kind: KindPrimitive, Name: "number"}, "number"},
		{Node{Kind: KindLiteral, Value: "admin"}, "literal admin"},
		{Node{Kind: KindUnion, Members: []Node{{}, {}}}, "union of 2 branches"},
		{Node{Kind: KindObject, Name: "Input"}, "object Input"},
		{Node{Kind: KindObject}, "object"},
		{Node{Kind: KindArray, Element: &elem}, "string[]"},
		{Node{Kind: KindArray}, "array"},
		{Node{Kind: KindAnyObject}, "object (untyped)"},
		{Node{Kind: KindOpaque, Raw: "() => void"}, `unclassified type "() => void"`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.node.String())
	}
}
