// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"runtime"

	"multirisk/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Engine contains engine configuration
	Engine EngineConfig `json:"engine"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// EngineConfig contains damage engine settings
type EngineConfig struct {
	// Workers is the number of parallel cell workers
	Workers int `json:"workers"`

	// Epsilon is the tolerance for count conservation checks
	Epsilon float64 `json:"epsilon"`

	// Currency is the currency of loss figures
	Currency string `json:"currency"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (text, json)
	DefaultFormat string `json:"default_format"`

	// ShowTransitions includes the per-class transition table
	ShowTransitions bool `json:"show_transitions"`

	// ShowCells includes per-cell loss lines
	ShowCells bool `json:"show_cells"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Engine: EngineConfig{
			Workers:  runtime.NumCPU(),
			Epsilon:  1e-9,
			Currency: "USD",
		},
		Output: OutputConfig{
			DefaultFormat:   "text",
			ShowTransitions: true,
			ShowCells:       false,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
