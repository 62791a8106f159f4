package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoAPIKey is returned by Validate when hints are enabled without a key.
var ErrNoAPIKey = errors.New("generative API key not configured (set GEMINI_API_KEY or GOOGLE_API_KEY)")

// Failure policies for records whose hint could not be generated.
const (
	OnFailureDrop = "drop" // exclude the record from the output
	OnFailureKeep = "keep" // keep the record without a hint field
)

// ValidPromptStyles lists the supported prompt templates.
var ValidPromptStyles = []string{"basic", "categorized"}

// HintsConfig configures AI hint generation.
type HintsConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model"`

	// Field name the hint is stored under on each record.
	Field       string `yaml:"field"`
	PromptStyle string `yaml:"prompt_style"` // basic, categorized

	// Sampling knobs; zero leaves the model default.
	Temperature     float32 `yaml:"temperature,omitempty"`
	MaxOutputTokens int32   `yaml:"max_output_tokens,omitempty"`

	// Per-request timeout; empty means none.
	RequestTimeout string `yaml:"request_timeout,omitempty"`

	// Pacing and retry policy
	Delay             string  `yaml:"delay"`           // pause after each successful call
	RateLimitWait     string  `yaml:"rate_limit_wait"` // sleep after a rate-limited call
	MaxAttempts       int     `yaml:"max_attempts"`    // 1 = no retry
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	MaxBackoff        string  `yaml:"max_backoff"`
	OnFailure         string  `yaml:"on_failure"` // drop, keep
}

func (c HintsConfig) validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if c.Model == "" {
		return fmt.Errorf("hints model is required")
	}
	if c.Field == "" {
		return fmt.Errorf("hints field is required")
	}
	if !isValid(c.PromptStyle, ValidPromptStyles) {
		return fmt.Errorf("invalid prompt style: %q (valid: %v)", c.PromptStyle, ValidPromptStyles)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("hints max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.BackoffMultiplier < 1 {
		return fmt.Errorf("hints backoff_multiplier must be at least 1, got %v", c.BackoffMultiplier)
	}
	if c.OnFailure != OnFailureDrop && c.OnFailure != OnFailureKeep {
		return fmt.Errorf("invalid on_failure policy: %q (valid: drop, keep)", c.OnFailure)
	}
	return nil
}

// GetDelay returns the pause between successful calls.
func (c HintsConfig) GetDelay() time.Duration {
	return parseDuration(c.Delay, 4*time.Second)
}

// GetRateLimitWait returns the sleep applied after a rate-limited call.
func (c HintsConfig) GetRateLimitWait() time.Duration {
	return parseDuration(c.RateLimitWait, 30*time.Second)
}

// GetMaxBackoff returns the cap for exponential rate-limit backoff.
func (c HintsConfig) GetMaxBackoff() time.Duration {
	return parseDuration(c.MaxBackoff, 5*time.Minute)
}

// GetRequestTimeout returns the per-request timeout, zero when unset.
func (c HintsConfig) GetRequestTimeout() time.Duration {
	return parseDuration(c.RequestTimeout, 0)
}
