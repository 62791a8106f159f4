// Package pipeline runs one dataset generation: fetch a split, narrow it
// down, optionally attach hints, and write the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bugdle/internal/dataset"
	"bugdle/internal/hint"
	"bugdle/internal/logging"
	"bugdle/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoEnricher is returned when hints are requested without an enricher.
var ErrNoEnricher = errors.New("hint generation requested but no enricher configured")

// Options describes one run.
type Options struct {
	Request dataset.Request

	// Limit keeps the first N records of the split; <= 0 keeps all.
	Limit int
	// Sample picks N records pseudo-randomly from what Limit left; <= 0 disables.
	Sample int
	Seed   int64

	// Hints enables AI hint generation.
	Hints bool
	// HintField is the column the SQLite writer reads hints from.
	// Defaults to the enricher's field.
	HintField string

	Output string
	Format store.Format
	Indent int
}

// Deps are the collaborators of a run.
type Deps struct {
	Source   dataset.Source
	Enricher *hint.Enricher // required when Options.Hints is set
	Logger   *zap.Logger
}

// Result reports what a run produced.
type Result struct {
	RunID    string
	Fetched  int
	Selected int
	Written  int
	Hints    *hint.Report // nil when hints were not generated
	Output   string
	Format   store.Format
	Duration time.Duration
}

// Run executes the pipeline. The output file is only written once every
// step succeeded; a cancelled run leaves any previous file untouched.
func Run(ctx context.Context, deps Deps, opts Options) (*Result, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("no dataset source configured")
	}
	if opts.Hints && deps.Enricher == nil {
		return nil, ErrNoEnricher
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("output path is required")
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := logging.For(deps.Logger, logging.CategoryPipeline).With(zap.String("run_id", runID))

	result := &Result{RunID: runID, Output: opts.Output, Format: opts.Format}
	if result.Format == "" {
		result.Format = store.FormatJSON
	}

	logger.Info("Run started",
		zap.String("dataset", opts.Request.Dataset),
		zap.String("split", opts.Request.Split),
		zap.Int("limit", opts.Limit),
		zap.Int("sample", opts.Sample),
		zap.Bool("hints", opts.Hints))

	req := opts.Request
	req.Limit = opts.Limit
	records, err := deps.Source.Fetch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	result.Fetched = len(records)
	if opts.Limit > 0 && len(records) < opts.Limit {
		logger.Warn("Split is smaller than the requested limit",
			zap.Int("limit", opts.Limit),
			zap.Int("available", len(records)))
	}

	// A source may ignore the pushed-down limit.
	records = dataset.First(records, opts.Limit)
	if opts.Sample > 0 {
		if opts.Sample > len(records) {
			logger.Warn("Sample size exceeds available records",
				zap.Int("sample", opts.Sample),
				zap.Int("available", len(records)))
		}
		records = dataset.Sample(records, opts.Sample, opts.Seed)
	}
	result.Selected = len(records)
	logger.Info("Records selected", zap.Int("fetched", result.Fetched), zap.Int("selected", result.Selected))

	hintField := opts.HintField
	if opts.Hints {
		enriched, report, err := deps.Enricher.Enrich(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("hint generation aborted after %d of %d records: %w",
				report.Attempted, len(records), err)
		}
		records = enriched
		result.Hints = &report
		if hintField == "" {
			hintField = deps.Enricher.Field()
		}
		logger.Info("Hints generated",
			zap.Int("succeeded", report.Succeeded),
			zap.Int("dropped", report.Dropped),
			zap.Int("kept", report.Kept),
			zap.Int("rate_limited", report.RateLimited))
	}
	if hintField == "" {
		hintField = hint.DefaultField
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = store.Write(ctx, result.Format, opts.Output, records, store.WriteOptions{
		Indent:    opts.Indent,
		HintField: hintField,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	result.Written = len(records)
	result.Duration = time.Since(start)

	logger.Info("Output written",
		zap.String("path", opts.Output),
		zap.String("format", string(result.Format)),
		zap.Int("records", result.Written),
		zap.Duration("took", result.Duration))
	return result, nil
}
