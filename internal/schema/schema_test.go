package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalKeyOrder(t *testing.T) {
	truthy := true
	prop := &Property{
		SectionCaption: "Advanced",
		ID:             "my-actor",
		Default:        "admin",
		Enum:           []any{"admin", "normal"},
		EnumTitles:     []string{"Admin", "Normal"},
		Editor:         "select",
		Description:    "Role of the account",
		Type:           TypeString,
		Title:          "Role",
		UniqueItems:    &truthy,
	}
	data, err := MarshalCanonical(prop)
	require.NoError(t, err)

	out := string(data)
	order := []string{
		`"title"`, `"type"`, `"description"`, `"editor"`, `"default"`,
		`"enum"`, `"enumTitles"`, `"id"`, `"uniqueItems"`, `"sectionCaption"`,
	}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		require.GreaterOrEqual(t, idx, 0, "missing %s", key)
		assert.Greater(t, idx, last, "%s out of order", key)
		last = idx
	}
}

func TestMarshalOmitsAbsentFields(t *testing.T) {
	data, err := MarshalCanonical(&Property{Type: TypeString, Editor: "textfield"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"string","editor":"textfield"}`, string(data))
}

func TestMarshalObjectAlwaysCarriesRequired(t *testing.T) {
	data, err := MarshalCanonical(&Property{Type: TypeObject, Properties: NewProperties()})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"required": []`)
}

func TestMarshalNonObjectOmitsRequired(t *testing.T) {
	data, err := MarshalCanonical(&Property{Type: TypeString})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"required"`)
}

func TestPropertiesPreserveInsertionOrder(t *testing.T) {
	ps := NewProperties()
	ps.Set("zeta", &Property{Type: TypeString})
	ps.Set("alpha", &Property{Type: TypeBoolean})
	ps.Set("mid", &Property{Type: TypeInteger})
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ps.Names())

	// Replacing keeps the original slot.
	ps.Set("alpha", &Property{Type: TypeString})
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, ps.Names())
	alpha, ok := ps.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, TypeString, alpha.Type)
}

func TestPropertiesUnmarshalPreservesDocumentOrder(t *testing.T) {
	doc := []byte(`{
	  "type": "object",
	  "properties": {
	    "zeta": {"type": "string"},
	    "alpha": {"type": "boolean"},
	    "mid": {"type": "integer"}
	  },
	  "required": ["zeta"]
	}`)
	prop, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, prop.Properties.Names())
	assert.Equal(t, []string{"zeta"}, prop.Required)

	out, err := MarshalCanonical(prop)
	require.NoError(t, err)
	zeta := strings.Index(string(out), `"zeta"`)
	alpha := strings.Index(string(out), `"alpha"`)
	mid := strings.Index(string(out), `"mid"`)
	assert.Less(t, zeta, alpha)
	assert.Less(t, alpha, mid)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type": `))
	assert.Error(t, err)
}

func TestDecodeNestedItems(t *testing.T) {
	prop, err := Decode([]byte(`{
	  "type": "array",
	  "editor": "stringList",
	  "items": {"type": "string"}
	}`))
	require.NoError(t, err)
	require.NotNil(t, prop.Items)
	assert.Equal(t, TypeString, prop.Items.Type)
}

func TestIsEnum(t *testing.T) {
	assert.False(t, (&Property{Type: TypeString}).IsEnum())
	assert.True(t, (&Property{Type: TypeString, Enum: []any{"a"}}).IsEnum())
}
