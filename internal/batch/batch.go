// Package batch drives whole-run conversions: single declarations, many
// declarations out of one source file, and per-actor directory batches on
// the reverse path. Units are processed strictly sequentially and the first
// unrecoverable error aborts the whole run.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tsinput/tsinput/internal/emitter"
	"github.com/tsinput/tsinput/internal/schema"
	"github.com/tsinput/tsinput/internal/tsparse"
	"github.com/tsinput/tsinput/internal/walker"
)

const (
	// MarkerDir is the fixed subdirectory holding a unit's metadata.
	MarkerDir = ".actor"
	// SchemaFileName is the fixed schema file name inside the marker dir.
	SchemaFileName = "INPUT_SCHEMA.json"
	// ManifestFileName is the per-unit manifest inside the marker dir.
	ManifestFileName = "actor.json"
	// schemaMarker tags any file that holds a unit's input schema.
	schemaMarker = "INPUT_SCHEMA"
)

// Orchestrator wires the walker, normalizer and emitter into run-level
// operations.
type Orchestrator struct {
	log        zerolog.Logger
	walker     *walker.Walker
	normalizer *schema.Normalizer
}

// New creates an Orchestrator logging through log.
func New(log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		log:        log,
		walker:     walker.New(log),
		normalizer: schema.NewNormalizer(log),
	}
}

// ConvertType converts one named declaration from a source file into a
// canonical schema tree.
func (o *Orchestrator) ConvertType(sourcePath, typeName string) (*schema.Property, error) {
	file, err := o.parseSource(sourcePath)
	if err != nil {
		return nil, err
	}
	decl, ok := file.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("declaration %q not found in %s", typeName, sourcePath)
	}
	prop, err := o.walker.ConvertDeclaration(decl)
	if err != nil {
		return nil, err
	}
	o.normalizer.Normalize(prop)
	return prop, nil
}

// ParseSource exposes the parsed declaration list, used for debug dumps.
func (o *Orchestrator) ParseSource(sourcePath string) (*tsparse.File, error) {
	return o.parseSource(sourcePath)
}

func (o *Orchestrator) parseSource(sourcePath string) (*tsparse.File, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", sourcePath, err)
	}
	file, err := tsparse.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse source %s: %w", sourcePath, err)
	}
	return file, nil
}

// ForwardOptions configures a forward batch over one source file.
type ForwardOptions struct {
	// Source is the file holding the declarations.
	Source string
	// TypeRegex selects declarations by name.
	TypeRegex *regexp.Regexp
	// IgnoreType names one declaration to skip even when it matches.
	IgnoreType string
	// WriteDir is the destination root; empty means print to Out.
	WriteDir string
	Out      io.Writer
}

// ForwardAll converts every matching declaration in one source file to one
// schema each, writing per-unit directories or printing to Out.
func (o *Orchestrator) ForwardAll(opts ForwardOptions) error {
	file, err := o.parseSource(opts.Source)
	if err != nil {
		return err
	}

	converted := 0
	for _, decl := range file.Declarations {
		if decl.Name == opts.IgnoreType {
			o.log.Debug().Str("type", decl.Name).Msg("ignoring declaration")
			continue
		}
		if opts.TypeRegex != nil && !opts.TypeRegex.MatchString(decl.Name) {
			continue
		}
		prop, err := o.walker.ConvertDeclaration(decl)
		if err != nil {
			return fmt.Errorf("converting %s: %w", decl.Name, err)
		}
		o.normalizer.Normalize(prop)
		unitID := UnitID(decl.Name)
		converted++

		if opts.WriteDir == "" {
			data, err := schema.MarshalCanonical(prop)
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.Out, string(data))
			continue
		}
		if err := o.writeUnitSchema(opts.WriteDir, unitID, prop); err != nil {
			return err
		}
	}

	if converted == 0 {
		return fmt.Errorf("no declarations matched in %s", opts.Source)
	}
	return nil
}

// writeUnitSchema persists one unit's schema under
// <writeDir>/<unitID>/.actor/INPUT_SCHEMA.json. The id is implied by the
// directory name and stripped before writing.
func (o *Orchestrator) writeUnitSchema(writeDir, unitID string, prop *schema.Property) error {
	prop.ID = ""
	dir := filepath.Join(writeDir, unitID, MarkerDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create unit directory: %w", err)
	}
	data, err := schema.MarshalCanonical(prop)
	if err != nil {
		return err
	}
	target := filepath.Join(dir, SchemaFileName)
	if err := os.WriteFile(target, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	o.log.Info().Str("unit", unitID).Str("path", target).Msg("wrote schema")
	return nil
}

// EmitSchemaFile renders one schema file as declaration text. The
// declaration name derives from the schema id or title, falling back to
// Input.
func (o *Orchestrator) EmitSchemaFile(path string) (string, error) {
	prop, err := o.loadSchema(path)
	if err != nil {
		return "", err
	}
	name := "Input"
	switch {
	case prop.ID != "":
		name = emitter.PascalCase(prop.ID)
	case prop.Title != "":
		name = emitter.PascalCase(prop.Title)
	}
	return emitter.New().Emit(name, prop), nil
}

// ReverseOptions configures a reverse batch over an actors directory.
type ReverseOptions struct {
	// ActorsDir contains one subdirectory per unit.
	ActorsDir string
	// WriteFile is the destination file; empty means print to Out.
	WriteFile string
	Out       io.Writer
}

// ReverseAll loads each unit's schema and emits one named declaration per
// unit. A unit without a resolvable schema aborts the whole batch.
func (o *Orchestrator) ReverseAll(opts ReverseOptions) error {
	entries, err := os.ReadDir(opts.ActorsDir)
	if err != nil {
		return fmt.Errorf("read actors folder %s: %w", opts.ActorsDir, err)
	}

	var units []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		units = append(units, entry.Name())
	}
	sort.Strings(units)
	if len(units) == 0 {
		return fmt.Errorf("no unit directories in %s", opts.ActorsDir)
	}

	var blocks []string
	for _, unit := range units {
		block, err := o.emitUnit(opts.ActorsDir, unit)
		if err != nil {
			return err
		}
		blocks = append(blocks, block)
	}
	text := strings.Join(blocks, "\n")

	if opts.WriteFile == "" {
		fmt.Fprint(opts.Out, text)
		return nil
	}
	if err := os.WriteFile(opts.WriteFile, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write declarations: %w", err)
	}
	o.log.Info().Str("path", opts.WriteFile).Int("units", len(units)).Msg("wrote declarations")
	return nil
}

func (o *Orchestrator) emitUnit(actorsDir, unit string) (string, error) {
	unitDir := filepath.Join(actorsDir, unit)
	schemaPath, err := o.resolveSchemaPath(unitDir)
	if err != nil {
		return "", fmt.Errorf("unit %s: %w", unit, err)
	}
	prop, err := o.loadSchema(schemaPath)
	if err != nil {
		return "", fmt.Errorf("unit %s: %w", unit, err)
	}
	prop.ID = unit
	return emitter.New().Emit(emitter.PascalCase(unit), prop), nil
}

// resolveSchemaPath locates a unit's schema: an INPUT_SCHEMA-marked file at
// the unit root or in the marker directory, else the manifest's input
// pointer resolved relative to the manifest.
func (o *Orchestrator) resolveSchemaPath(unitDir string) (string, error) {
	for _, dir := range []string{unitDir, filepath.Join(unitDir, MarkerDir)} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.Contains(entry.Name(), schemaMarker) {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}

	for _, manifestPath := range []string{
		filepath.Join(unitDir, MarkerDir, ManifestFileName),
		filepath.Join(unitDir, ManifestFileName),
	} {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}
		var m struct {
			Input string `json:"input"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return "", fmt.Errorf("parse manifest %s: %w", manifestPath, err)
		}
		if m.Input == "" {
			return "", fmt.Errorf("manifest %s has no input pointer", manifestPath)
		}
		return filepath.Join(filepath.Dir(manifestPath), m.Input), nil
	}

	return "", fmt.Errorf("no %s file and no manifest input pointer", schemaMarker)
}

// loadSchema reads and normalizes a schema file, JSON or YAML by extension.
func (o *Orchestrator) loadSchema(path string) (*schema.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	var prop *schema.Property
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		prop, err = schema.DecodeYAML(data)
	default:
		prop, err = schema.Decode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	o.normalizer.Normalize(prop)
	return prop, nil
}

// UnitID folds a declaration name into its unit directory name: the Input
// suffix drops and the remainder is kebab-cased, so MyActorInput becomes
// my-actor.
func UnitID(typeName string) string {
	name := strings.TrimSuffix(typeName, "Input")
	if name == "" {
		name = typeName
	}
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - ('A' - 'a'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
