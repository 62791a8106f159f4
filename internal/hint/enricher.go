package hint

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"bugdle/internal/dataset"

	"go.uber.org/zap"
)

// DefaultField is the record field hints are stored under.
const DefaultField = "ai_hint"

// ErrEmptyHint is returned when the model answers with nothing but whitespace.
var ErrEmptyHint = errors.New("model returned an empty hint")

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy controls pacing and retries of the enrichment loop.
type Policy struct {
	// Delay is the pause after each successful call.
	Delay time.Duration

	// RateLimitWait is the sleep after the first rate-limited attempt.
	RateLimitWait time.Duration

	// MaxAttempts bounds calls per record. 1 means a rate-limited record
	// gets one long sleep and is then given up.
	MaxAttempts int

	// BackoffMultiplier grows RateLimitWait for each further attempt,
	// capped at MaxBackoff (no cap when zero).
	BackoffMultiplier float64
	MaxBackoff        time.Duration

	// KeepFailed keeps records whose hint failed, without a hint field,
	// instead of dropping them.
	KeepFailed bool
}

// DefaultPolicy returns the 4s pacing / 30s rate-limit sleep with no retries.
func DefaultPolicy() Policy {
	return Policy{
		Delay:             4 * time.Second,
		RateLimitWait:     30 * time.Second,
		MaxAttempts:       1,
		BackoffMultiplier: 2,
		MaxBackoff:        5 * time.Minute,
	}
}

// backoff returns the sleep after the given rate-limited attempt (1-based).
func (p Policy) backoff(attempt int) time.Duration {
	wait := p.RateLimitWait
	if attempt > 1 && p.BackoffMultiplier > 1 {
		wait = time.Duration(float64(wait) * math.Pow(p.BackoffMultiplier, float64(attempt-1)))
	}
	if p.MaxBackoff > 0 && wait > p.MaxBackoff {
		wait = p.MaxBackoff
	}
	return wait
}

// Report summarizes one enrichment run.
type Report struct {
	Attempted   int // records processed
	Succeeded   int // records that received a hint
	Dropped     int // failed records left out of the output
	Kept        int // failed records kept without a hint
	RateLimited int // rate-limited calls, one long sleep each
	Calls       int // generator calls, retries included
}

// Enricher attaches a generated hint to each record, one call at a time.
type Enricher struct {
	generator Generator
	style     PromptStyle
	field     string
	policy    Policy
	sleep     Sleeper
	logger    *zap.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithPolicy sets pacing and retry behaviour.
func WithPolicy(p Policy) Option {
	return func(e *Enricher) { e.policy = p }
}

// WithPromptStyle selects the prompt template.
func WithPromptStyle(s PromptStyle) Option {
	return func(e *Enricher) { e.style = s }
}

// WithField sets the record field the hint is written to.
func WithField(name string) Option {
	return func(e *Enricher) {
		if name != "" {
			e.field = name
		}
	}
}

// WithSleeper replaces the context-aware timer sleep.
func WithSleeper(s Sleeper) Option {
	return func(e *Enricher) { e.sleep = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEnricher creates an Enricher around gen.
func NewEnricher(gen Generator, opts ...Option) *Enricher {
	e := &Enricher{
		generator: gen,
		style:     StyleBasic,
		field:     DefaultField,
		policy:    DefaultPolicy(),
		sleep:     sleepContext,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy.MaxAttempts < 1 {
		e.policy.MaxAttempts = 1
	}
	return e
}

// Field returns the record field hints are written to.
func (e *Enricher) Field() string {
	return e.field
}

// Enrich generates a hint for each record in order and returns the records
// that belong in the output. Records are modified in place. Per-record
// failures are logged and never abort the loop; only context cancellation
// does, in which case the records finished so far are returned with the
// context's error.
func (e *Enricher) Enrich(ctx context.Context, records []dataset.Record) ([]dataset.Record, Report, error) {
	var report Report
	out := make([]dataset.Record, 0, len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return out, report, err
		}

		label := rec.Label(i)
		report.Attempted++

		hint, err := e.generate(ctx, rec, label, &report)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, report, ctxErr
			}
			if e.policy.KeepFailed {
				out = append(out, rec)
				report.Kept++
			} else {
				report.Dropped++
			}
			continue
		}

		rec[e.field] = hint
		out = append(out, rec)
		report.Succeeded++
		e.logger.Info("Generated hint", zap.String("slug", label))

		if i < len(records)-1 {
			if err := e.sleep(ctx, e.policy.Delay); err != nil {
				return out, report, err
			}
		}
	}

	return out, report, nil
}

// generate runs the attempt loop for one record.
func (e *Enricher) generate(ctx context.Context, rec dataset.Record, label string, report *Report) (string, error) {
	prompt := BuildPrompt(e.style, rec)

	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		report.Calls++
		text, err := e.generator.Generate(ctx, prompt)
		if err == nil {
			if hint := strings.TrimSpace(text); hint != "" {
				return hint, nil
			}
			err = ErrEmptyHint
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err

		if !IsRateLimited(err) {
			e.logger.Warn("Hint generation failed",
				zap.String("slug", label),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return "", err
		}

		report.RateLimited++
		wait := e.policy.backoff(attempt)
		e.logger.Warn("Rate limited",
			zap.String("slug", label),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		if err := e.sleep(ctx, wait); err != nil {
			return "", err
		}
	}

	e.logger.Warn("Giving up on record",
		zap.String("slug", label),
		zap.Int("attempts", e.policy.MaxAttempts),
		zap.Error(lastErr))
	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
