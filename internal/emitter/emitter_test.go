package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinput/tsinput/internal/schema"
	"github.com/tsinput/tsinput/internal/tsparse"
	"github.com/tsinput/tsinput/internal/typegraph"
)

func decodeSchema(t *testing.T, doc string) *schema.Property {
	t.Helper()
	prop, err := schema.Decode([]byte(doc))
	require.NoError(t, err)
	return prop
}

func TestEmitRoundTripsEnumMember(t *testing.T) {
	prop := decodeSchema(t, `{
	  "type": "object",
	  "properties": {
	    "name": {"title":"Name","description":"Name of the Account","editor":"textfield","prefill":"John","type":"string"},
	    "role": {"type":"string","editor":"select","title":"Role","description":"Role of the account","default":"admin","enum":["admin","normal"]}
	  },
	  "required": []
	}`)

	text := New().Emit("Input", prop)
	file, err := tsparse.Parse(text)
	require.NoError(t, err)
	decl, ok := file.Lookup("Input")
	require.True(t, ok, "emitted text did not parse back:\n%s", text)

	require.Equal(t, typegraph.KindObject, decl.Type.Kind)
	require.Len(t, decl.Type.Fields, 2)

	role := decl.Type.Fields[1]
	assert.Equal(t, "role", role.Name)
	assert.True(t, role.Optional, "a member with a default is spelled optional")
	require.Equal(t, typegraph.KindUnion, role.Type.Kind)
	require.Len(t, role.Type.Members, 2)
	assert.Equal(t, "admin", role.Type.Members[0].Value)
	assert.Equal(t, "normal", role.Type.Members[1].Value)

	name := decl.Type.Fields[0]
	assert.Equal(t, "name", name.Name)
	assert.False(t, name.Optional)
	assert.Contains(t, name.Doc, "@prefill 'John'")
}

func TestEmitStringListArraySpelling(t *testing.T) {
	prop := decodeSchema(t, `{
	  "type": "object",
	  "properties": {
	    "tags": {"title":"Tags","type":"array","editor":"stringList"},
	    "rows": {"title":"Rows","type":"array","editor":"json"}
	  },
	  "required": []
	}`)
	text := New().Emit("Input", prop)
	assert.Contains(t, text, "tags: string[];")
	assert.Contains(t, text, "rows: any[];")
}

func TestEmitOptionalMarkerOnlyWithDefault(t *testing.T) {
	prop := decodeSchema(t, `{
	  "type": "object",
	  "properties": {
	    "plain": {"title":"Plain","type":"string"},
	    "withDefault": {"title":"With default","type":"string","default":"x"}
	  },
	  "required": ["plain"]
	}`)
	text := New().Emit("Input", prop)
	assert.Contains(t, text, "plain: string;")
	assert.Contains(t, text, "withDefault?: string;")
}

func TestEmitHoistsNestedObjectWithID(t *testing.T) {
	prop := decodeSchema(t, `{
	  "type": "object",
	  "properties": {
	    "proxy": {
	      "title": "Proxy",
	      "type": "object",
	      "id": "proxy-settings",
	      "properties": {
	        "useProxy": {"title":"Use proxy","type":"boolean"}
	      },
	      "required": []
	    }
	  },
	  "required": []
	}`)
	text := New().Emit("Input", prop)
	assert.Contains(t, text, "export type ProxySettings = {")
	assert.Contains(t, text, "proxy: ProxySettings;")
	assert.Less(t,
		strings.Index(text, "export type ProxySettings"),
		strings.Index(text, "export type Input"),
		"hoisted declaration must precede the referencing one")
}

func TestEmitRootObjectWithIDStaysInline(t *testing.T) {
	prop := decodeSchema(t, `{
	  "type": "object",
	  "id": "my-actor",
	  "properties": {
	    "name": {"title":"Name","type":"string"}
	  },
	  "required": []
	}`)
	text := New().Emit("MyActor", prop)
	assert.Contains(t, text, "export type MyActor = {")
	assert.NotContains(t, text, "= MyActor;")
	assert.Contains(t, text, "@id my-actor")
}

func TestEmitEmptyObjectSchema(t *testing.T) {
	prop := decodeSchema(t, `{"type":"object","required":[]}`)
	text := New().Emit("Input", prop)
	assert.Contains(t, text, "export type Input = object;")
}

func TestRenderLiteral(t *testing.T) {
	cases := []struct {
		value any
		want  string
	}{
		{"admin", "'admin'"},
		{"it's", `'it\'s'`},
		{true, "true"},
		{false, "false"},
		{int64(3), "3"},
		{float64(3), "3"},
		{float64(1.5), "1.5"},
		{[]any{"a", float64(2)}, "['a', 2]"},
		{[]string{"x", "y"}, "['x', 'y']"},
		{map[string]any{"b": true, "a": "v"}, "{a: 'v', b: true}"},
		{nil, "null"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, renderLiteral(tc.value))
	}
}

func TestPascalCase(t *testing.T) {
	cases := map[string]string{
		"my-actor":    "MyActor",
		"web_scraper": "WebScraper",
		"plain":       "Plain",
		"two words":   "TwoWords",
		"dot.name":    "DotName",
	}
	for in, want := range cases {
		assert.Equal(t, want, PascalCase(in))
	}
}
