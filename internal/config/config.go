// Package config loads the optional tsinput.config.json file, which
// supplies defaults for the CLI flags.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// Config represents the tsinput configuration.
type Config struct {
	// TypeName is the declaration converted by type-to-json.
	TypeName string `json:"typeName,omitempty" validate:"omitempty,alphanum"`
	// InputFileName is the source file looked up inside an actor directory.
	InputFileName string `json:"inputFileName,omitempty" validate:"omitempty,endswith=.ts"`
	// TypeRegex selects declarations in multiactor forward mode.
	TypeRegex string `json:"typeRegex,omitempty"`
	// IgnoreType names one declaration to skip in multiactor forward mode.
	IgnoreType string `json:"ignoreType,omitempty"`
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" validate:"omitempty,oneof=trace debug info warn error"`
}

// DefaultConfig returns a config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		TypeName:      "Input",
		InputFileName: "main.ts",
		TypeRegex:     ".*Input$",
		LogLevel:      "info",
	}
}

// Load reads and parses a tsinput config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	return &config, nil
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.TypeRegex != "" {
		if _, err := regexp.Compile(c.TypeRegex); err != nil {
			return fmt.Errorf("typeRegex does not compile: %w", err)
		}
	}
	return nil
}
