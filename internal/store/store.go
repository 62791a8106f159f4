// Package store persists a run's records. The whole list is written in one
// go; there is no incremental persistence.
package store

import (
	"context"
	"fmt"
	"strings"

	"bugdle/internal/dataset"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

// DefaultIndent is the number of spaces per JSON nesting level.
const DefaultIndent = 4

// ParseFormat validates a format name. Empty means FormatJSON.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatSQLite:
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unknown output format %q", name)
	}
}

// WriteOptions tunes Write.
type WriteOptions struct {
	Indent    int    // JSON only; negative writes compact JSON
	HintField string // SQLite only; column source for the hint
}

// Write stores records at path in the given format, replacing any
// previous content.
func Write(ctx context.Context, format Format, path string, records []dataset.Record, opts WriteOptions) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	switch format {
	case "", FormatJSON:
		return WriteJSON(path, records, opts.Indent)
	case FormatJSONL:
		return WriteJSONL(path, records)
	case FormatSQLite:
		return WriteSQLite(ctx, path, records, opts.HintField)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
