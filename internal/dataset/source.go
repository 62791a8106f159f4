package dataset

import "context"

// Request names the split to fetch.
type Request struct {
	Dataset string // e.g. Rtian/DebugBench
	Config  string // datasets-server config, "default" when empty
	Split   string // train, test

	// Limit caps the number of leading records returned; <= 0 means the whole split.
	Limit int
}

// Source yields the ordered records of a dataset split.
type Source interface {
	Fetch(ctx context.Context, req Request) ([]Record, error)
}
