package main

import (
	"context"
	"fmt"
	"time"

	"bugdle/internal/config"
	"bugdle/internal/dataset"
	"bugdle/internal/hint"
	"bugdle/internal/logging"
	"bugdle/internal/pipeline"
	"bugdle/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// generateCmd builds the game dataset
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Download problems, optionally add AI hints, and write the dataset",
	Long: `Fetches a DebugBench split, keeps the requested records and writes them
to the output file. With --hints every record is sent to the generative
model and the returned hint is stored on it; records whose hint fails are
dropped unless --on-failure keep is given.

Examples:
  bugdle generate --split test                  # whole test split
  bugdle generate --limit 100                   # first 100 train problems
  bugdle generate --limit 50 --hints            # hints for the first 50
  bugdle generate --sample 20 --seed 7 --hints --prompt-style categorized`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd.Flags())
}

func addGenerateFlags(f *pflag.FlagSet) {
	f.String("dataset", "", "Dataset name on the Hugging Face hub")
	f.String("config-name", "", "Dataset config name")
	f.String("split", "", "Dataset split (train, test)")
	f.Int("limit", 0, "Keep only the first N records (0 = all)")
	f.Int("sample", 0, "Pick N records pseudo-randomly (0 = off)")
	f.Int64("seed", 0, "Seed for --sample")
	f.String("input", "", "Read records from a local JSON/JSONL file instead of the hub")

	f.Bool("hints", false, "Generate an AI hint for every record")
	f.String("model", "", "Generative model name")
	f.String("prompt-style", "", "Prompt template (basic, categorized)")
	f.String("hint-field", "", "Record field the hint is stored under")
	f.Duration("delay", 0, "Pause after each successful hint")
	f.Duration("rate-limit-wait", 0, "Sleep after a rate-limited call")
	f.Int("max-attempts", 0, "Calls per record before giving up (1 = no retry)")
	f.String("on-failure", "", "What to do with records whose hint failed (drop, keep)")

	f.StringP("output", "o", "", "Output path")
	f.String("format", "", "Output format (json, jsonl, sqlite)")
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	var err error

	setString := func(name string, dst *string) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetString(name)
		}
	}
	setInt := func(name string, dst *int) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetInt(name)
		}
	}
	setDuration := func(name string, dst *string) {
		if err == nil && f.Changed(name) {
			var d time.Duration
			d, err = f.GetDuration(name)
			*dst = d.String()
		}
	}

	setString("dataset", &c.Dataset.Name)
	setString("config-name", &c.Dataset.Config)
	setString("split", &c.Dataset.Split)
	setString("input", &c.Dataset.Input)

	// An explicit --limit or --sample replaces whatever the file selected.
	if f.Changed("limit") {
		c.Selection.Sample = 0
	}
	if f.Changed("sample") {
		c.Selection.Limit = 0
	}
	setInt("limit", &c.Selection.Limit)
	setInt("sample", &c.Selection.Sample)
	if err == nil && f.Changed("seed") {
		c.Selection.Seed, err = f.GetInt64("seed")
	}

	if err == nil && f.Changed("hints") {
		c.Hints.Enabled, err = f.GetBool("hints")
	}
	setString("model", &c.Hints.Model)
	setString("prompt-style", &c.Hints.PromptStyle)
	setString("hint-field", &c.Hints.Field)
	setDuration("delay", &c.Hints.Delay)
	setDuration("rate-limit-wait", &c.Hints.RateLimitWait)
	setInt("max-attempts", &c.Hints.MaxAttempts)
	setString("on-failure", &c.Hints.OnFailure)

	setString("output", &c.Output.Path)
	setString("format", &c.Output.Format)

	return err
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := applyGenerateFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := commandContext()
	defer cancel()

	deps, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}

	format, err := store.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(ctx, deps, pipeline.Options{
		Request: dataset.Request{
			Dataset: cfg.Dataset.Name,
			Config:  cfg.Dataset.Config,
			Split:   cfg.Dataset.Split,
		},
		Limit:     cfg.Selection.Limit,
		Sample:    cfg.Selection.Sample,
		Seed:      cfg.Selection.Seed,
		Hints:     cfg.Hints.Enabled,
		HintField: cfg.Hints.Field,
		Output:    cfg.Output.Path,
		Format:    format,
		Indent:    cfg.Output.Indent,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s (%s)\n", res.Written, res.Output, res.Format)
	if res.Hints != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Hints: %d generated, %d dropped, %d kept without hint, %d rate-limited\n",
			res.Hints.Succeeded, res.Hints.Dropped, res.Hints.Kept, res.Hints.RateLimited)
	}
	return nil
}

// buildDeps wires the record source and, when hints are enabled, the
// Gemini-backed enricher.
func buildDeps(ctx context.Context, c *config.Config, root *zap.Logger) (pipeline.Deps, error) {
	deps := pipeline.Deps{Logger: root}

	if c.Dataset.Input != "" {
		deps.Source = dataset.NewFileSource(c.Dataset.Input)
	} else {
		deps.Source = dataset.NewHubClient(dataset.HubOptions{
			BaseURL:      c.Dataset.BaseURL,
			Token:        c.Dataset.Token,
			PageSize:     c.Dataset.PageSize,
			Concurrency:  c.Dataset.Concurrency,
			Timeout:      c.Dataset.GetTimeout(),
			RetryCount:   c.Dataset.RetryCount,
			RetryWait:    c.Dataset.GetRetryWait(),
			RetryMaxWait: c.Dataset.GetRetryMaxWait(),
			Logger:       logging.For(root, logging.CategoryDataset),
		})
	}

	if !c.Hints.Enabled {
		return deps, nil
	}

	style, err := hint.ParsePromptStyle(c.Hints.PromptStyle)
	if err != nil {
		return deps, err
	}
	gen, err := hint.NewGenAIGenerator(ctx, hint.GenAIOptions{
		APIKey:          c.Hints.APIKey,
		Model:           c.Hints.Model,
		Temperature:     c.Hints.Temperature,
		MaxOutputTokens: c.Hints.MaxOutputTokens,
		Timeout:         c.Hints.GetRequestTimeout(),
	})
	if err != nil {
		return deps, err
	}

	deps.Enricher = hint.NewEnricher(gen,
		hint.WithPolicy(hintPolicy(c.Hints)),
		hint.WithPromptStyle(style),
		hint.WithField(c.Hints.Field),
		hint.WithLogger(logging.For(root, logging.CategoryHints)))
	return deps, nil
}

func hintPolicy(h config.HintsConfig) hint.Policy {
	return hint.Policy{
		Delay:             h.GetDelay(),
		RateLimitWait:     h.GetRateLimitWait(),
		MaxAttempts:       h.MaxAttempts,
		BackoffMultiplier: h.BackoffMultiplier,
		MaxBackoff:        h.GetMaxBackoff(),
		KeepFailed:        h.OnFailure == config.OnFailureKeep,
	}
}
