// Package config provides configuration loading and management for semweave.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semweave/export"
	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/scanner"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete semweave configuration
type Config struct {
	// Namespaces are declared in every conversion before the document's own.
	Namespaces map[string]string `yaml:"namespaces"`
	// FallbackBase absorbs bare labels and unknown prefixes (default: http://example.org/)
	FallbackBase string `yaml:"fallback_base"`
	// DefaultMode is the mode documents start in: standard or rdf-star
	DefaultMode string `yaml:"default_mode"`

	Output      OutputConfig      `yaml:"output"`
	Reification ReificationConfig `yaml:"reification"`
	Store       StoreConfig       `yaml:"store"`
	Validation  ValidationConfig  `yaml:"validate"`
	Watch       WatchConfig       `yaml:"watch"`
}

// OutputConfig configures serialization
type OutputConfig struct {
	// Format is turtle, jsonld or nquads
	Format string `yaml:"format"`
	// Dir receives converted files (empty = stdout)
	Dir string `yaml:"dir"`
}

// ReificationConfig configures reified statement names
type ReificationConfig struct {
	// Generator is counter, seeded or uuid
	Generator string `yaml:"generator"`
	Prefix    string `yaml:"prefix"`
	Seed      int64  `yaml:"seed"`
}

// StoreConfig configures the target triple store
type StoreConfig struct {
	// Path is the SQLite database file (empty = in-memory store)
	Path string `yaml:"path"`
}

// ValidationConfig configures constraint evaluation
type ValidationConfig struct {
	// Concurrency bounds parallel constraint queries
	Concurrency int `yaml:"concurrency"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	Extensions  []string      `yaml:"extensions"`
	ExcludeDirs []string      `yaml:"exclude_dirs"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DefaultMode: string(scanner.ModeStandard),
		Output: OutputConfig{
			Format: string(export.FormatTurtle),
		},
		Reification: ReificationConfig{
			Generator: string(rdf.GeneratorCounter),
			Prefix:    "stmt-",
		},
		Validation: ValidationConfig{
			Concurrency: 4,
		},
		Watch: WatchConfig{
			Debounce:    500 * time.Millisecond,
			Extensions:  []string{".md", ".markdown"},
			ExcludeDirs: []string{".git", "node_modules", ".obsidian"},
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, ok := scanner.ParseMode(c.DefaultMode); !ok {
		return fmt.Errorf("%w: default_mode must be standard or rdf-star, got %q", ErrInvalidConfig, c.DefaultMode)
	}
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", ErrInvalidConfig, err)
	}
	switch rdf.GeneratorKind(c.Reification.Generator) {
	case rdf.GeneratorCounter, rdf.GeneratorSeeded, rdf.GeneratorUUID:
	default:
		return fmt.Errorf("%w: reification.generator must be counter, seeded or uuid, got %q",
			ErrInvalidConfig, c.Reification.Generator)
	}
	for prefix := range c.Namespaces {
		if !namespace.ValidPrefix(prefix) {
			return fmt.Errorf("%w: namespaces: invalid prefix %q", ErrInvalidConfig, prefix)
		}
	}
	if c.FallbackBase != "" && !namespace.IsAbsolute(c.FallbackBase) {
		return fmt.Errorf("%w: fallback_base must be an absolute IRI", ErrInvalidConfig)
	}
	if c.Validation.Concurrency < 0 {
		return fmt.Errorf("%w: validate.concurrency must not be negative", ErrInvalidConfig)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Mode returns the configured starting mode.
func (c *Config) Mode() scanner.Mode {
	m, ok := scanner.ParseMode(c.DefaultMode)
	if !ok {
		return scanner.ModeStandard
	}
	return m
}

// Format returns the configured output format.
func (c *Config) Format() export.Format {
	f, err := export.ParseFormat(c.Output.Format)
	if err != nil {
		return export.FormatTurtle
	}
	return f
}

// Registry builds the namespace registry conversions start from: the
// default prefixes, then the configured ones in prefix order.
func (c *Config) Registry() *namespace.Registry {
	names := make([]string, 0, len(c.Namespaces))
	for name := range c.Namespaces {
		names = append(names, name)
	}
	sort.Strings(names)

	extra := make([]namespace.Prefix, 0, len(names))
	for _, name := range names {
		extra = append(extra, namespace.Prefix{Name: name, Base: c.Namespaces[name]})
	}
	return namespace.NewWithDefaults(c.FallbackBase, extra...)
}

// NewIDGenerator creates a reification id generator whose names carry
// scope after the configured prefix.
func (c *Config) NewIDGenerator(scope string) (rdf.IDGenerator, error) {
	prefix := c.Reification.Prefix
	if scope != "" {
		prefix += scope + "-"
	}
	return rdf.NewGenerator(rdf.GeneratorKind(c.Reification.Generator), prefix, c.Reification.Seed)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Namespaces) > 0 {
		if c.Namespaces == nil {
			c.Namespaces = make(map[string]string, len(other.Namespaces))
		}
		for prefix, base := range other.Namespaces {
			c.Namespaces[prefix] = base
		}
	}
	if other.FallbackBase != "" {
		c.FallbackBase = other.FallbackBase
	}
	if other.DefaultMode != "" {
		c.DefaultMode = other.DefaultMode
	}

	// Output
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}

	// Reification
	if other.Reification.Generator != "" {
		c.Reification.Generator = other.Reification.Generator
	}
	if other.Reification.Prefix != "" {
		c.Reification.Prefix = other.Reification.Prefix
	}
	if other.Reification.Seed != 0 {
		c.Reification.Seed = other.Reification.Seed
	}

	// Store
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}

	// Validation
	if other.Validation.Concurrency != 0 {
		c.Validation.Concurrency = other.Validation.Concurrency
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if len(other.Watch.Extensions) > 0 {
		c.Watch.Extensions = other.Watch.Extensions
	}
	if len(other.Watch.ExcludeDirs) > 0 {
		c.Watch.ExcludeDirs = other.Watch.ExcludeDirs
	}
}
