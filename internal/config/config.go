package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file picked up from the working directory when
// no --config flag is given.
const DefaultPath = "bugdle.yaml"

// Config holds all bugdle configuration.
type Config struct {
	// Source dataset and how to reach it
	Dataset DatasetConfig `yaml:"dataset"`

	// Which records of the split to keep
	Selection SelectionConfig `yaml:"selection"`

	// AI hint generation
	Hints HintsConfig `yaml:"hints"`

	// Output artifact
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SelectionConfig restricts the fetched split. Limit and Sample are mutually
// exclusive; zero disables each.
type SelectionConfig struct {
	Limit  int   `yaml:"limit"`
	Sample int   `yaml:"sample"`
	Seed   int64 `yaml:"seed"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Name:         "Rtian/DebugBench",
			Config:       "default",
			Split:        "train",
			BaseURL:      "https://datasets-server.huggingface.co",
			PageSize:     100,
			Concurrency:  4,
			Timeout:      "60s",
			RetryCount:   3,
			RetryWait:    "1s",
			RetryMaxWait: "10s",
		},

		Hints: HintsConfig{
			Enabled:           false,
			Model:             "gemini-2.5-flash",
			Field:             "ai_hint",
			PromptStyle:       "basic",
			Delay:             "4s",
			RateLimitWait:     "30s",
			MaxAttempts:       1,
			BackoffMultiplier: 2,
			MaxBackoff:        "5m",
			OnFailure:         OnFailureDrop,
		},

		Output: OutputConfig{
			Path:   "BugdleData.json",
			Format: "json",
			Indent: 4,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults (with env overrides applied).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Credentials are only ever expected to arrive this way.
func (c *Config) applyEnvOverrides() {
	// GOOGLE_API_KEY is what the genai SDK reads; GEMINI_API_KEY wins when both are set.
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Hints.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Hints.APIKey = key
	}
	if model := os.Getenv("BUGDLE_MODEL"); model != "" {
		c.Hints.Model = model
	}

	if token := os.Getenv("HF_TOKEN"); token != "" {
		c.Dataset.Token = token
	}

	if path := os.Getenv("BUGDLE_OUTPUT"); path != "" {
		c.Output.Path = path
	}
	if level := os.Getenv("BUGDLE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate validates the configuration.
// The API key is only required when hint generation is enabled.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dataset.Name) == "" {
		return fmt.Errorf("dataset name is required")
	}
	if !isValid(c.Dataset.Split, ValidSplits) {
		return fmt.Errorf("invalid split: %q (valid: %v)", c.Dataset.Split, ValidSplits)
	}
	if c.Dataset.PageSize < 1 || c.Dataset.PageSize > MaxPageSize {
		return fmt.Errorf("dataset page_size must be between 1 and %d, got %d", MaxPageSize, c.Dataset.PageSize)
	}
	if c.Dataset.Concurrency < 1 {
		return fmt.Errorf("dataset concurrency must be positive, got %d", c.Dataset.Concurrency)
	}

	if c.Selection.Limit < 0 || c.Selection.Sample < 0 {
		return fmt.Errorf("selection limit and sample must not be negative")
	}
	if c.Selection.Limit > 0 && c.Selection.Sample > 0 {
		return fmt.Errorf("selection limit and sample are mutually exclusive")
	}

	if c.Hints.Enabled {
		if err := c.Hints.validate(); err != nil {
			return err
		}
	}

	if !isValid(c.Output.Format, ValidFormats) {
		return fmt.Errorf("invalid output format: %q (valid: %v)", c.Output.Format, ValidFormats)
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output path is required")
	}

	return nil
}

func isValid(value string, valid []string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}

// parseDuration parses value, falling back to def when it is empty or malformed.
func parseDuration(value string, def time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
