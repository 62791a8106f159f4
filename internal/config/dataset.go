package config

import "time"

// MaxPageSize is the largest page the datasets-server /rows endpoint returns.
const MaxPageSize = 100

// ValidSplits lists the dataset splits bugdle knows how to fetch.
var ValidSplits = []string{"train", "test"}

// DatasetConfig configures where records come from.
type DatasetConfig struct {
	Name   string `yaml:"name"`   // e.g. Rtian/DebugBench
	Config string `yaml:"config"` // datasets-server config name
	Split  string `yaml:"split"`  // train, test

	// Local JSON or JSONL file used instead of the hub when set.
	Input string `yaml:"input,omitempty"`

	BaseURL     string `yaml:"base_url"`
	Token       string `yaml:"token,omitempty"`
	PageSize    int    `yaml:"page_size"`
	Concurrency int    `yaml:"concurrency"`

	// Transport settings for the HTTP client
	Timeout      string `yaml:"timeout"`
	RetryCount   int    `yaml:"retry_count"`
	RetryWait    string `yaml:"retry_wait"`
	RetryMaxWait string `yaml:"retry_max_wait"`
}

// GetTimeout returns the per-request HTTP timeout.
func (c DatasetConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 60*time.Second)
}

// GetRetryWait returns the initial wait between transport retries.
func (c DatasetConfig) GetRetryWait() time.Duration {
	return parseDuration(c.RetryWait, time.Second)
}

// GetRetryMaxWait returns the cap on the wait between transport retries.
func (c DatasetConfig) GetRetryMaxWait() time.Duration {
	return parseDuration(c.RetryMaxWait, 10*time.Second)
}
