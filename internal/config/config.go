// Package config loads diplomat configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all diplomat configuration.
type Config struct {
	// Provider configures the text-generation backend.
	Provider ProviderConfig `yaml:"provider"`

	// Logging controls log verbosity and format.
	Logging LoggingConfig `yaml:"logging"`
}

// ProviderConfig configures the LLM provider boundary. Values flow into
// client constructors as an explicit struct; no package reads these from
// ambient process state.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // console encoding, stacktraces on warn
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Timeout: "120s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path, layering it over defaults. A missing
// file is not an error: defaults apply. The DIPLOMAT_API_KEY environment
// variable overrides the configured provider key so credentials can stay out
// of the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to defaults.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if key := os.Getenv("DIPLOMAT_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}

	if _, err := cfg.ProviderTimeout(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProviderTimeout parses the provider timeout string.
func (c *Config) ProviderTimeout() (time.Duration, error) {
	if c.Provider.Timeout == "" {
		return 120 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid provider timeout %q: %w", c.Provider.Timeout, err)
	}
	return d, nil
}
