package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Output formats understood by the engine.
const (
	FormatJSONSchema      = "json-schema"
	FormatSchemaSource    = "schema-source"
	FormatInterfaceSource = "interface-source"
)

// Validation backends understood by the engine.
const (
	BackendStructural = "structural"
	BackendParse      = "parse-based"
)

// Formats and Backends list every accepted value. They mirror the generator
// and validator names, which cannot be imported here.
var (
	Formats  = []string{FormatJSONSchema, FormatSchemaSource, FormatInterfaceSource}
	Backends = []string{BackendStructural, BackendParse}
)

// DefaultRootName is the name given to the root interface.
const DefaultRootName = "Root"

// Config represents the complete configuration for jsonshape
type Config struct {
	RootName string       `yaml:"root_name"`
	Format   string       `yaml:"format"`
	Backend  string       `yaml:"backend"`
	Schema   SchemaConfig `yaml:"schema"`
	Naming   NamingConfig `yaml:"naming"`
	Log      LogConfig    `yaml:"log"`
}

// SchemaConfig controls what the emitters produce
type SchemaConfig struct {
	Required             bool `yaml:"required"`
	AdditionalProperties bool `yaml:"additional_properties"`
	IncludeExamples      bool `yaml:"include_examples"`
}

// NamingConfig controls interface naming
type NamingConfig struct {
	// TypeMappings overrides the PascalCase name derived from a JSON key.
	TypeMappings map[string]string `yaml:"type_mappings"`
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		RootName: DefaultRootName,
		Format:   FormatJSONSchema,
		Backend:  BackendStructural,
		Schema: SchemaConfig{
			Required:             false,
			AdditionalProperties: false,
			IncludeExamples:      false,
		},
		Naming: NamingConfig{
			TypeMappings: make(map[string]string),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonshape.yml", ".jsonshape.yaml", "jsonshape.yml", "jsonshape.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated settings. Unknown output formats are not an
// error here: the engine falls back to JSON Schema for them.
func (c *Config) Validate() error {
	if c.Backend != "" && !slices.Contains(Backends, c.Backend) {
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	return nil
}

// GetTypeName returns the PascalCase interface name fragment for a JSON key,
// applying configured overrides first.
func (c *Config) GetTypeName(jsonKey string) string {
	if mapped, exists := c.Naming.TypeMappings[jsonKey]; exists {
		return mapped
	}

	name := strcase.ToCamel(jsonKey)
	if name == "" {
		return "Field"
	}
	return name
}

// CLIOverrides carries values set explicitly on the command line. A nil
// pointer means the flag was not given.
type CLIOverrides struct {
	RootName             string
	Format               string
	Backend              string
	Required             *bool
	AdditionalProperties *bool
	IncludeExamples      *bool
	Debug                bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.RootName != "" {
		cfg.RootName = cli.RootName
	}
	if cli.Format != "" {
		cfg.Format = cli.Format
	}
	if cli.Backend != "" {
		cfg.Backend = cli.Backend
	}
	if cli.Required != nil {
		cfg.Schema.Required = *cli.Required
	}
	if cli.AdditionalProperties != nil {
		cfg.Schema.AdditionalProperties = *cli.AdditionalProperties
	}
	if cli.IncludeExamples != nil {
		cfg.Schema.IncludeExamples = *cli.IncludeExamples
	}
	if cli.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
