package config

// ValidFormats lists the supported output formats.
var ValidFormats = []string{"json", "jsonl", "sqlite"}

// OutputConfig configures the written artifact.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // json, jsonl, sqlite
	Indent int    `yaml:"indent"` // spaces, json only
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}
