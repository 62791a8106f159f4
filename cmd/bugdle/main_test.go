package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bugdle/internal/config"
	"bugdle/internal/dataset"
	"bugdle/internal/hint"
	"bugdle/internal/store"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGenerateTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "generate"}
	addGenerateFlags(cmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "HF_TOKEN", "BUGDLE_OUTPUT", "BUGDLE_MODEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("BUGDLE_LOG_LEVEL", "error")
}

func writeInput(t *testing.T, n int) string {
	t.Helper()
	records := make([]dataset.Record, n)
	for i := range records {
		records[i] = dataset.Record{
			"slug":     "problem-" + string(rune('a'+i)),
			"category": "logic error",
			"level":    "easy",
			"language": "cpp",
		}
	}
	path := filepath.Join(t.TempDir(), "split.json")
	require.NoError(t, store.WriteJSON(path, records, 4))
	return path
}

func TestApplyGenerateFlags(t *testing.T) {
	c := config.DefaultConfig()
	c.Selection.Sample = 20

	cmd := newGenerateTestCmd(t,
		"--split", "test",
		"--limit", "100",
		"--hints",
		"--model", "gemini-test",
		"--delay", "1500ms",
		"--max-attempts", "3",
		"--on-failure", "keep",
		"-o", "out.jsonl",
		"--format", "jsonl")
	require.NoError(t, applyGenerateFlags(cmd, c))

	assert.Equal(t, "test", c.Dataset.Split)
	assert.Equal(t, 100, c.Selection.Limit)
	assert.Equal(t, 0, c.Selection.Sample, "explicit --limit clears a configured sample")
	assert.True(t, c.Hints.Enabled)
	assert.Equal(t, "gemini-test", c.Hints.Model)
	assert.Equal(t, 1500*time.Millisecond, c.Hints.GetDelay())
	assert.Equal(t, 3, c.Hints.MaxAttempts)
	assert.Equal(t, config.OnFailureKeep, c.Hints.OnFailure)
	assert.Equal(t, "out.jsonl", c.Output.Path)
	assert.Equal(t, "jsonl", c.Output.Format)

	// Untouched flags keep config values.
	assert.Equal(t, "Rtian/DebugBench", c.Dataset.Name)
	assert.Equal(t, "ai_hint", c.Hints.Field)
	assert.Equal(t, 30*time.Second, c.Hints.GetRateLimitWait())
}

func TestHintPolicy(t *testing.T) {
	h := config.DefaultConfig().Hints
	p := hintPolicy(h)
	assert.Equal(t, 4*time.Second, p.Delay)
	assert.Equal(t, 30*time.Second, p.RateLimitWait)
	assert.Equal(t, 1, p.MaxAttempts)
	assert.False(t, p.KeepFailed)

	h.OnFailure = config.OnFailureKeep
	assert.True(t, hintPolicy(h).KeepFailed)
}

func TestBuildDeps(t *testing.T) {
	ctx := context.Background()

	c := config.DefaultConfig()
	deps, err := buildDeps(ctx, c, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &dataset.HubClient{}, deps.Source)
	assert.Nil(t, deps.Enricher)

	c.Dataset.Input = "split.json"
	deps, err = buildDeps(ctx, c, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &dataset.FileSource{}, deps.Source)

	c.Hints.Enabled = true
	_, err = buildDeps(ctx, c, zap.NewNop())
	assert.ErrorIs(t, err, hint.ErrNoAPIKey)

	c.Hints.APIKey = "test-key"
	c.Hints.Field = "clue"
	deps, err = buildDeps(ctx, c, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, deps.Enricher)
	assert.Equal(t, "clue", deps.Enricher.Field())
}

func TestGenerateFromFile(t *testing.T) {
	clearCredentialEnv(t)
	dir := t.TempDir()
	input := writeInput(t, 3)
	output := filepath.Join(dir, "BugdleData.json")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"generate", "--input", input, "--limit", "2", "--output", output,
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Wrote 2 records to "+output)

	got, err := store.ReadJSON(output)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "problem-a", got[0].Slug())
	assert.Equal(t, "problem-b", got[1].Slug())
}

func TestRunInspect(t *testing.T) {
	cfg = config.DefaultConfig()
	logger = zap.NewNop()
	inspectShow = 1
	t.Cleanup(func() { inspectShow = 0 })

	path := writeInput(t, 3)
	records, err := store.ReadJSON(path)
	require.NoError(t, err)
	records[0]["ai_hint"] = "Mind the loop bound"
	require.NoError(t, store.WriteJSON(path, records, 4))

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runInspect(cmd, []string{path}))

	text := out.String()
	assert.Contains(t, text, "records")
	assert.Contains(t, text, "logic error")
	assert.Contains(t, text, "Mind the loop bound")
	assert.Contains(t, text, "problem-a")
}

func TestRunInspectMissingFile(t *testing.T) {
	cfg = config.DefaultConfig()
	err := runInspect(&cobra.Command{}, []string{filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	got := renderSummary("BugdleData.json", store.Summary{
		Total:      5,
		Hinted:     4,
		ByCategory: []store.Count{{Name: "logic error", Count: 5}},
		ByLevel:    []store.Count{{Name: "easy", Count: 3}, {Name: "hard", Count: 2}},
	})

	for _, want := range []string{"BugdleData.json", "records", "with hint", "Categories", "logic error", "Levels", "hard"} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "Languages", "empty breakdowns are omitted")
}

func TestRunConfigInit(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "secret-from-env")
	path := filepath.Join(t.TempDir(), "bugdle.yaml")

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runConfigInit(cmd, []string{path}))
	assert.Contains(t, out.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-from-env")
	assert.True(t, strings.Contains(string(data), "Rtian/DebugBench"))

	err = runConfigInit(cmd, []string{path})
	assert.Error(t, err, "existing file is not overwritten without --force")

	configForce = true
	t.Cleanup(func() { configForce = false })
	assert.NoError(t, runConfigInit(cmd, []string{path}))
}
