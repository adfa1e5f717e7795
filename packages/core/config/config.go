package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the testlang configuration
type Config struct {
	Target         string            `json:"target,omitempty" yaml:"target,omitempty"`
	ClassName      string            `json:"className,omitempty" yaml:"className,omitempty"`
	Package        string            `json:"package,omitempty" yaml:"package,omitempty"`
	OutputDir      string            `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	DefaultBaseURL string            `json:"defaultBaseUrl,omitempty" yaml:"defaultBaseUrl,omitempty"`
	RequestTimeout int               `json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty"` // seconds
	ConnectTimeout int               `json:"connectTimeout,omitempty" yaml:"connectTimeout,omitempty"` // seconds
	Variables      map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`           // Seed bindings, overridden by let
	EnvFile        string            `json:"envFile,omitempty" yaml:"envFile,omitempty"`
	Reporters      []string          `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	Parallel       *bool             `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Concurrency    int               `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Rate           float64           `json:"rate,omitempty" yaml:"rate,omitempty"` // requests per second, 0 = unlimited
	Bail           *bool             `json:"bail,omitempty" yaml:"bail,omitempty"`
	History        string            `json:"history,omitempty" yaml:"history,omitempty"` // SQLite path
	Verbose        *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor        *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetParallel returns the parallel setting, defaulting to false
func (c *Config) GetParallel() bool {
	return getBool(c.Parallel, false)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".testlang.yaml",
	"testlang.yaml",
	".testlang.json",
	"testlang.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates data against the config schema and decodes it on top of
// the defaults.
func Parse(data []byte, yamlFormat bool) (*Config, error) {
	var doc any
	if yamlFormat {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	// An empty file is a valid, empty config.
	if doc != nil {
		if err := Validate(doc); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if yamlFormat {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.Target != "" {
		result.Target = other.Target
	}
	if other.ClassName != "" {
		result.ClassName = other.ClassName
	}
	if other.Package != "" {
		result.Package = other.Package
	}
	if other.OutputDir != "" {
		result.OutputDir = other.OutputDir
	}
	if other.DefaultBaseURL != "" {
		result.DefaultBaseURL = other.DefaultBaseURL
	}
	if other.RequestTimeout > 0 {
		result.RequestTimeout = other.RequestTimeout
	}
	if other.ConnectTimeout > 0 {
		result.ConnectTimeout = other.ConnectTimeout
	}
	if other.EnvFile != "" {
		result.EnvFile = other.EnvFile
	}
	if other.Concurrency > 0 {
		result.Concurrency = other.Concurrency
	}
	if other.Rate > 0 {
		result.Rate = other.Rate
	}
	if other.History != "" {
		result.History = other.History
	}

	// Boolean flags - only override if explicitly set in other config
	if other.Parallel != nil {
		result.Parallel = other.Parallel
	}
	if other.Bail != nil {
		result.Bail = other.Bail
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Variables) > 0 {
		merged := make(map[string]string, len(result.Variables)+len(other.Variables))
		for k, v := range result.Variables {
			merged[k] = v
		}
		for k, v := range other.Variables {
			merged[k] = v
		}
		result.Variables = merged
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}

// SaveConfig writes the configuration as YAML or JSON depending on the
// file extension.
func (c *Config) SaveConfig(path string) error {
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
		return err
	}

	return os.WriteFile(path, data, 0644)
}
