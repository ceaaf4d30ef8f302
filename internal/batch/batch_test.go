package batch_test

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsinput/tsinput/internal/batch"
	"github.com/tsinput/tsinput/internal/schema"
)

const twoActorSource = `
/**
 * Alpha crawler
 * @id alpha-crawler
 */
export type AlphaInput = {
  /** Start URL */
  url: string;
};

/**
 * Beta scraper
 */
export type BetaScraperInput = {
  /**
   * Max depth
   * @default 2
   */
  maxDepth: number;
};

export type Helper = {
  ignored: string;
};
`

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.ts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertType(t *testing.T) {
	source := writeSource(t, twoActorSource)
	prop, err := batch.New(zerolog.Nop()).ConvertType(source, "AlphaInput")
	require.NoError(t, err)
	assert.Equal(t, "alpha-crawler", prop.ID)
	assert.Equal(t, []string{"url"}, prop.Properties.Names())
}

func TestConvertTypeNotFound(t *testing.T) {
	source := writeSource(t, twoActorSource)
	_, err := batch.New(zerolog.Nop()).ConvertType(source, "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Missing" not found`)
}

func TestForwardAllWritesUnitLayout(t *testing.T) {
	source := writeSource(t, twoActorSource)
	writeDir := t.TempDir()

	err := batch.New(zerolog.Nop()).ForwardAll(batch.ForwardOptions{
		Source:    source,
		TypeRegex: regexp.MustCompile(`.*Input$`),
		WriteDir:  writeDir,
		Out:       &bytes.Buffer{},
	})
	require.NoError(t, err)

	alphaPath := filepath.Join(writeDir, "alpha", batch.MarkerDir, batch.SchemaFileName)
	data, err := os.ReadFile(alphaPath)
	require.NoError(t, err)
	// The id is implied by the directory name and stripped on write.
	assert.NotContains(t, string(data), `"id"`)
	assert.Contains(t, string(data), `"Alpha crawler"`)

	betaPath := filepath.Join(writeDir, "beta-scraper", batch.MarkerDir, batch.SchemaFileName)
	beta, err := os.ReadFile(betaPath)
	require.NoError(t, err)

	prop, err := schema.Decode(beta)
	require.NoError(t, err)
	maxDepth, ok := prop.Properties.Get("maxDepth")
	require.True(t, ok)
	assert.Equal(t, int64(2), anyInt(maxDepth.Default))

	// The helper declaration does not match the pattern and produces no unit.
	_, err = os.Stat(filepath.Join(writeDir, "helper"))
	assert.True(t, os.IsNotExist(err))
}

func TestForwardAllIgnoreType(t *testing.T) {
	source := writeSource(t, twoActorSource)
	var out bytes.Buffer

	err := batch.New(zerolog.Nop()).ForwardAll(batch.ForwardOptions{
		Source:     source,
		TypeRegex:  regexp.MustCompile(`.*Input$`),
		IgnoreType: "AlphaInput",
		Out:        &out,
	})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Alpha crawler")
	assert.Contains(t, out.String(), "Beta scraper")
}

func TestForwardAllNoMatchesFails(t *testing.T) {
	source := writeSource(t, twoActorSource)
	err := batch.New(zerolog.Nop()).ForwardAll(batch.ForwardOptions{
		Source:    source,
		TypeRegex: regexp.MustCompile(`^Nothing$`),
		Out:       &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no declarations matched")
}

const minimalSchema = `{
  "title": "Unit input",
  "type": "object",
  "properties": {
    "name": {"title": "Name", "type": "string", "editor": "textfield"}
  },
  "required": ["name"]
}`

// writeUnit lays out one actor directory. The schema lands where place says:
// at the unit root, inside the marker dir, or behind a manifest pointer.
func writeUnit(t *testing.T, actorsDir, unit, place string) {
	t.Helper()
	unitDir := filepath.Join(actorsDir, unit)
	switch place {
	case "root":
		require.NoError(t, os.MkdirAll(unitDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(unitDir, batch.SchemaFileName), []byte(minimalSchema), 0o644))
	case "marker":
		dir := filepath.Join(unitDir, batch.MarkerDir)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, batch.SchemaFileName), []byte(minimalSchema), 0o644))
	case "manifest":
		require.NoError(t, os.MkdirAll(filepath.Join(unitDir, "schema"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(unitDir, "schema", "input.json"), []byte(minimalSchema), 0o644))
		manifest := []byte(`{"name": "` + unit + `", "input": "schema/input.json"}`)
		require.NoError(t, os.WriteFile(filepath.Join(unitDir, batch.ManifestFileName), manifest, 0o644))
	default:
		t.Fatalf("unknown placement %q", place)
	}
}

func TestReverseAllResolvesThreeUnits(t *testing.T) {
	actorsDir := t.TempDir()
	writeUnit(t, actorsDir, "alpha", "marker")
	writeUnit(t, actorsDir, "beta", "root")
	writeUnit(t, actorsDir, "gamma", "manifest")

	var out bytes.Buffer
	err := batch.New(zerolog.Nop()).ReverseAll(batch.ReverseOptions{
		ActorsDir: actorsDir,
		Out:       &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "export type Alpha = {")
	assert.Contains(t, text, "export type Beta = {")
	assert.Contains(t, text, "export type Gamma = {")
	assert.Less(t, strings.Index(text, "type Alpha"), strings.Index(text, "type Beta"))
	assert.Less(t, strings.Index(text, "type Beta"), strings.Index(text, "type Gamma"))
}

func TestReverseAllWritesFile(t *testing.T) {
	actorsDir := t.TempDir()
	writeUnit(t, actorsDir, "alpha", "marker")

	target := filepath.Join(t.TempDir(), "types.ts")
	err := batch.New(zerolog.Nop()).ReverseAll(batch.ReverseOptions{
		ActorsDir: actorsDir,
		WriteFile: target,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "export type Alpha = {")
}

func TestReverseAllMissingSchemaAborts(t *testing.T) {
	actorsDir := t.TempDir()
	writeUnit(t, actorsDir, "alpha", "marker")
	require.NoError(t, os.MkdirAll(filepath.Join(actorsDir, "broken"), 0o755))

	err := batch.New(zerolog.Nop()).ReverseAll(batch.ReverseOptions{
		ActorsDir: actorsDir,
		Out:       &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit broken")
}

func TestReverseAllSkipsHiddenEntries(t *testing.T) {
	actorsDir := t.TempDir()
	writeUnit(t, actorsDir, "alpha", "marker")
	require.NoError(t, os.MkdirAll(filepath.Join(actorsDir, ".git"), 0o755))

	err := batch.New(zerolog.Nop()).ReverseAll(batch.ReverseOptions{
		ActorsDir: actorsDir,
		Out:       &bytes.Buffer{},
	})
	require.NoError(t, err)
}

func TestEmitSchemaFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "INPUT_SCHEMA.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: Unit input
type: object
properties:
  name:
    title: Name
    type: string
required:
  - name
`), 0o644))

	text, err := batch.New(zerolog.Nop()).EmitSchemaFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "export type UnitInput = {")
	assert.Contains(t, text, "name: string;")
}

func TestUnitID(t *testing.T) {
	cases := map[string]string{
		"MyActorInput":    "my-actor",
		"AlphaInput":      "alpha",
		"WebScraperInput": "web-scraper",
		"Input":           "input",
		"simple":          "simple",
	}
	for in, want := range cases {
		assert.Equal(t, want, batch.UnitID(in), "UnitID(%q)", in)
	}
}

// anyInt folds the two integral encodings a decoded default can take.
func anyInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return -1
	}
}
