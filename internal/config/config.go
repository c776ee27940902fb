package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-at-pretension-io/tew-attrs/internal/extractor"
	"github.com/robert-at-pretension-io/tew-attrs/internal/merge"
	"github.com/robert-at-pretension-io/tew-attrs/internal/source"
)

// FileName is the config file `tew-attrs init` writes
const FileName = "tew_attrs.json"

// Config is the top-level configuration for tew-attrs
type Config struct {
	// Inputs names the two disassembly listings and the curated CSV
	Inputs InputsConfig `json:"inputs" yaml:"inputs"`

	// Output controls where the CSV, fact snapshot and site are written
	Output OutputConfig `json:"output" yaml:"output"`

	// Extraction tunes the scanners
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`

	// Overrides maps hex codes ("0x0136", "0136h") to names that replace
	// whatever the name scan found. Leave unset for the built-in table;
	// an explicit empty object disables overrides.
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`

	// baseDir anchors relative paths; it is the directory of the loaded file
	baseDir string
}

// InputsConfig names the files read by a run
type InputsConfig struct {
	// Names is the listing holding push/assign pairs
	Names string `json:"names" yaml:"names"`

	// Definitions is the listing holding compare blocks
	Definitions string `json:"definitions" yaml:"definitions"`

	// Encoding of both listings; "utf-8" unless set
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	// Categorized is a curated copy of the CSV with categories filled in.
	// When present, the site is rendered from it instead of fresh rows.
	Categorized string `json:"categorized,omitempty" yaml:"categorized,omitempty"`
}

// OutputConfig controls the artifacts of a run
type OutputConfig struct {
	// Dir holds the site; CSV and Facts are relative to it unless absolute
	Dir string `json:"dir" yaml:"dir"`

	// CSV is the export file name
	CSV string `json:"csv" yaml:"csv"`

	// Facts is the JSON snapshot file name; empty disables it
	Facts string `json:"facts,omitempty" yaml:"facts,omitempty"`

	// Title heads the index page
	Title string `json:"title" yaml:"title"`
}

// ExtractionConfig tunes the extractors and merger
type ExtractionConfig struct {
	Dialect extractor.Dialect `json:"dialect" yaml:"dialect"`

	// EmptyDefinition is "keep" (an empty block stays "") or "missing"
	// (an empty block gets the no-definition sentinel)
	EmptyDefinition string `json:"emptyDefinition,omitempty" yaml:"emptyDefinition,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Inputs: InputsConfig{
			Names:       "Attribute_Names.txt",
			Definitions: "Attribute_definitions.txt",
			Encoding:    source.DefaultEncoding,
		},
		Output: OutputConfig{
			Dir:   "output",
			CSV:   "attribute_definitions.csv",
			Facts: "attributes.json",
			Title: "TEW Worker Attributes and Definitions",
		},
		Extraction: ExtractionConfig{
			Dialect:         extractor.DefaultDialect(),
			EmptyDefinition: string(merge.EmptyKeep),
		},
		Overrides: extractor.DefaultOverrideMap(),
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./tew_attrs.json, ./tew_attrs.yaml, ./tew_attrs.yml (current working directory)
//  2. ./.tew_attrs.json (current working directory)
//  3. ~/.config/tew_attrs/config.json
//
// Returns DefaultConfig if no config file is found
func Load() (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, FileName),
		filepath.Join(cwd, "tew_attrs.yaml"),
		filepath.Join(cwd, "tew_attrs.yml"),
		filepath.Join(cwd, ".tew_attrs.json"),
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "tew_attrs", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Facts is seeded so that an absent key keeps the snapshot on while
	// an explicit "" still turns it off
	cfg := Config{Output: OutputConfig{Facts: DefaultConfig().Output.Facts}}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.baseDir = filepath.Dir(path)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Inputs.Names == "" {
		c.Inputs.Names = def.Inputs.Names
	}
	if c.Inputs.Definitions == "" {
		c.Inputs.Definitions = def.Inputs.Definitions
	}
	if c.Inputs.Encoding == "" {
		c.Inputs.Encoding = def.Inputs.Encoding
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Output.CSV == "" {
		c.Output.CSV = def.Output.CSV
	}
	if c.Output.Title == "" {
		c.Output.Title = def.Output.Title
	}
	if c.Extraction.EmptyDefinition == "" {
		c.Extraction.EmptyDefinition = def.Extraction.EmptyDefinition
	}

	// nil means "not configured"; {} is an explicit empty table
	if c.Overrides == nil {
		c.Overrides = def.Overrides
	}

	d := c.Extraction.Dialect
	if d.CodeVariable == "" {
		d.CodeVariable = def.Extraction.Dialect.CodeVariable
	}
	if d.ConcatRoutine == "" {
		d.ConcatRoutine = def.Extraction.Dialect.ConcatRoutine
	}
	if d.DestRegister == "" {
		d.DestRegister = def.Extraction.Dialect.DestRegister
	}
	c.Extraction.Dialect = d
}

// Validate reports the first setting a run could not honour
func (c *Config) Validate() error {
	if !source.ValidEncoding(c.Inputs.Encoding) {
		return fmt.Errorf("unknown input encoding %q", c.Inputs.Encoding)
	}
	if _, err := c.EmptyPolicy(); err != nil {
		return err
	}
	if _, err := c.OverrideTable(); err != nil {
		return err
	}
	return nil
}

// OverrideTable parses the configured overrides
func (c *Config) OverrideTable() (extractor.Overrides, error) {
	return extractor.ParseOverrides(c.Overrides)
}

// EmptyPolicy parses the configured empty-definition policy
func (c *Config) EmptyPolicy() (merge.EmptyPolicy, error) {
	return merge.ParseEmptyPolicy(c.Extraction.EmptyDefinition)
}

// Resolve anchors a relative input path at the config file's directory
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.baseDir == "" {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

// OutputDir is the resolved site directory
func (c *Config) OutputDir() string {
	return c.Resolve(c.Output.Dir)
}

// OutputPath resolves an output file name against the output directory
func (c *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir(), name)
}

// Save writes the configuration to a file, as YAML when the name says so
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
