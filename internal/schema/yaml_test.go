package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeYAMLPreservesOrderAndTypes(t *testing.T) {
	prop, err := DecodeYAML([]byte(`
title: Crawler input
type: object
properties:
  zeta:
    type: string
    editor: textfield
  alpha:
    type: boolean
    default: true
  depth:
    type: integer
    default: 3
required:
  - zeta
`))
	require.NoError(t, err)
	assert.Equal(t, "Crawler input", prop.Title)
	assert.Equal(t, TypeObject, prop.Type)
	assert.Equal(t, []string{"zeta", "alpha", "depth"}, prop.Properties.Names())
	assert.Equal(t, []string{"zeta"}, prop.Required)

	alpha, ok := prop.Properties.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, true, alpha.Default)

	depth, ok := prop.Properties.Get("depth")
	require.True(t, ok)
	assert.Equal(t, float64(3), depth.Default)
}

func TestDecodeYAMLQuotedScalarsStayStrings(t *testing.T) {
	prop, err := DecodeYAML([]byte(`
type: string
default: "42"
`))
	require.NoError(t, err)
	assert.Equal(t, "42", prop.Default)
}

func TestDecodeYAMLRejectsMalformedInput(t *testing.T) {
	_, err := DecodeYAML([]byte("{unclosed"))
	assert.Error(t, err)
}
