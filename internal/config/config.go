// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Postings   string `json:"postings,omitempty"`   // Path to postings JSON file
	Experience string `json:"experience,omitempty"` // Path to experience pool JSON file

	// Behavior
	APIKey        string `json:"api_key,omitempty"`        // Gemini API key
	DatabaseURL   string `json:"database_url,omitempty"`   // PostgreSQL connection URL
	NotifyWebhook string `json:"notify_webhook,omitempty"` // Failure notification webhook URL
	Concurrency   int    `json:"concurrency,omitempty"`    // Postings processed in parallel
	RetryAttempts int    `json:"retry_attempts,omitempty"` // Model call retries
	MinScore      int    `json:"min_score,omitempty"`      // Minimum overall score to generate content
	Resume        bool   `json:"resume,omitempty"`         // Resume from stage checkpoints
	Verbose       bool   `json:"verbose,omitempty"`        // Print detailed stage output

	// Tuning
	HighOverlap   float64 `json:"high_overlap,omitempty"`   // HIGH tier overlap boundary (0.0-1.0)
	MediumOverlap float64 `json:"medium_overlap,omitempty"` // MEDIUM tier overlap boundary (0.0-1.0)
}

// Defaults returns the default configuration values.
func Defaults() Config {
	return Config{
		Concurrency:   2,
		RetryAttempts: 3,
		MinScore:      6,
		HighOverlap:   0.5,
		MediumOverlap: 0.25,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("config error: 'retry_attempts' must be non-negative")
	}
	if c.MinScore < 0 || c.MinScore > 10 {
		return fmt.Errorf("config error: 'min_score' must be between 0 and 10")
	}
	if c.HighOverlap < 0 || c.HighOverlap > 1 {
		return fmt.Errorf("config error: 'high_overlap' must be between 0.0 and 1.0")
	}
	if c.MediumOverlap < 0 || c.MediumOverlap > 1 {
		return fmt.Errorf("config error: 'medium_overlap' must be between 0.0 and 1.0")
	}
	if c.MediumOverlap > c.HighOverlap && c.HighOverlap > 0 {
		return fmt.Errorf("config error: 'medium_overlap' must not exceed 'high_overlap'")
	}

	if c.Postings != "" {
		if _, err := os.Stat(c.Postings); os.IsNotExist(err) {
			return fmt.Errorf("config error: postings file not found: %s", c.Postings)
		}
	}
	if c.Experience != "" {
		if _, err := os.Stat(c.Experience); os.IsNotExist(err) {
			return fmt.Errorf("config error: experience file not found: %s", c.Experience)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Postings == "" {
		result.Postings = defaults.Postings
	}
	if result.Experience == "" {
		result.Experience = defaults.Experience
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.NotifyWebhook == "" {
		result.NotifyWebhook = defaults.NotifyWebhook
	}

	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = defaults.RetryAttempts
	}
	if result.MinScore == 0 {
		result.MinScore = defaults.MinScore
	}
	if result.HighOverlap == 0 {
		result.HighOverlap = defaults.HighOverlap
	}
	if result.MediumOverlap == 0 {
		result.MediumOverlap = defaults.MediumOverlap
	}

	result.Resume = result.Resume || defaults.Resume
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
