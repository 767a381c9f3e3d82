// Package config provides configuration loading and management for
// Plantask.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Plantask configuration
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Store   StoreConfig   `yaml:"store"`
	Modules ModulesConfig `yaml:"modules"`
	History HistoryConfig `yaml:"history"`
}

// ModelConfig configures the generative model settings
type ModelConfig struct {
	// Name is the Gemini model to use (default: "gemini-2.0-flash")
	Name string `yaml:"name"`
	// APIKey is the Gemini API key (usually set via GEMINI_API_KEY)
	APIKey string `yaml:"api_key"`
	// Temperature controls randomness (0.0-1.0, default: 0.7)
	Temperature float32 `yaml:"temperature"`
	// MaxOutputTokens caps the generated response length
	MaxOutputTokens int32 `yaml:"max_output_tokens"`
}

// StoreConfig configures the document store backend
type StoreConfig struct {
	// NATSURL is the NATS server URL (empty = in-memory store)
	NATSURL string `yaml:"nats_url"`
}

// ModulesConfig configures module discovery
type ModulesConfig struct {
	// Root is the directory scanned for on-disk module manifests
	Root string `yaml:"root"`
	// Ignore lists glob patterns for directory names to skip
	Ignore []string `yaml:"ignore"`
	// Autoload lists module names loaded at startup
	Autoload []string `yaml:"autoload"`
}

// HistoryConfig configures the event ledger
type HistoryConfig struct {
	// QueryLimit caps default history listings
	QueryLimit int `yaml:"query_limit"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:            "gemini-2.0-flash",
			Temperature:     0.7,
			MaxOutputTokens: 1024,
		},
		Store: StoreConfig{
			NATSURL: "", // In-memory
		},
		Modules: ModulesConfig{
			Root:     "modules",
			Ignore:   []string{".*", "_*", "testdata"},
			Autoload: []string{"history", "tasks", "planning"},
		},
		History: HistoryConfig{
			QueryLimit: 20,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Model.MaxOutputTokens <= 0 {
		return fmt.Errorf("model.max_output_tokens must be positive")
	}
	if c.History.QueryLimit <= 0 {
		return fmt.Errorf("history.query_limit must be positive")
	}
	return nil
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
	// Ensure parent directory exists
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

	// Model
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.APIKey != "" {
		c.Model.APIKey = other.Model.APIKey
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.MaxOutputTokens != 0 {
		c.Model.MaxOutputTokens = other.Model.MaxOutputTokens
	}

	// Store
	if other.Store.NATSURL != "" {
		c.Store.NATSURL = other.Store.NATSURL
	}

	// Modules
	if other.Modules.Root != "" {
		c.Modules.Root = other.Modules.Root
	}
	if len(other.Modules.Ignore) > 0 {
		c.Modules.Ignore = other.Modules.Ignore
	}
	if len(other.Modules.Autoload) > 0 {
		c.Modules.Autoload = other.Modules.Autoload
	}

	// History
	if other.History.QueryLimit != 0 {
		c.History.QueryLimit = other.History.QueryLimit
	}
}
