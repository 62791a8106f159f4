package dataset

import (
	"encoding/json"
	"testing"
)

func TestRecordAccessors(t *testing.T) {
	rec := Record{
		FieldSlug:           "single-number",
		FieldCategory:       "logic error",
		FieldBuggyCode:      "mp[nums[i]] = 1;",
		FieldBugExplanation: "Sets the count instead of incrementing it.",
		"release_time":      json.Number("1663286400"),
		"examples":          []any{"Input: [2,2,1] Output: 1"},
	}

	if rec.Slug() != "single-number" {
		t.Fatalf("unexpected slug: %q", rec.Slug())
	}
	if rec.Category() != "logic error" {
		t.Fatalf("unexpected category: %q", rec.Category())
	}
	if rec.BuggyCode() != "mp[nums[i]] = 1;" {
		t.Fatalf("unexpected buggy code: %q", rec.BuggyCode())
	}
	if rec.BugExplanation() == "" {
		t.Fatalf("expected bug explanation")
	}
	if got := rec.String("release_time"); got != "1663286400" {
		t.Fatalf("expected number as text, got %q", got)
	}
	if got := rec.String("missing"); got != "" {
		t.Fatalf("expected empty string for missing field, got %q", got)
	}
}

func TestRecordLabel(t *testing.T) {
	if got := (Record{FieldSlug: "bug-1"}).Label(3); got != "bug-1" {
		t.Fatalf("expected slug label, got %q", got)
	}
	if got := (Record{}).Label(3); got != "#3" {
		t.Fatalf("expected positional label, got %q", got)
	}
}
