package dataset

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{FieldSlug: fmt.Sprintf("bug-%d", i+1)}
	}
	return records
}

func slugs(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug()
	}
	return out
}

func TestFirst(t *testing.T) {
	records := makeRecords(5)

	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{"bug-1", "bug-2", "bug-3", "bug-4", "bug-5"}},
		{2, []string{"bug-1", "bug-2"}},
		{5, []string{"bug-1", "bug-2", "bug-3", "bug-4", "bug-5"}},
		{9, []string{"bug-1", "bug-2", "bug-3", "bug-4", "bug-5"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, slugs(First(records, tt.n))); diff != "" {
				t.Errorf("First() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSample(t *testing.T) {
	records := makeRecords(50)

	got := Sample(records, 10, 42)
	if len(got) != 10 {
		t.Fatalf("expected 10 records, got %d", len(got))
	}

	// Same seed, same selection.
	if diff := cmp.Diff(slugs(got), slugs(Sample(records, 10, 42))); diff != "" {
		t.Errorf("Sample() not deterministic (-first +second):\n%s", diff)
	}

	// Original order is preserved and no index repeats.
	pos := make(map[string]int, len(records))
	for i, r := range records {
		pos[r.Slug()] = i
	}
	last := -1
	for _, r := range got {
		p := pos[r.Slug()]
		if p <= last {
			t.Fatalf("sample out of order or duplicated at %s", r.Slug())
		}
		last = p
	}
}

func TestSampleDifferentSeeds(t *testing.T) {
	records := makeRecords(200)
	a := slugs(Sample(records, 20, 1))
	b := slugs(Sample(records, 20, 2))
	if cmp.Equal(a, b) {
		t.Fatalf("expected different seeds to select different records")
	}
}

func TestSampleOversized(t *testing.T) {
	records := makeRecords(3)
	if got := Sample(records, 10, 1); len(got) != 3 {
		t.Fatalf("expected all 3 records, got %d", len(got))
	}
	if got := Sample(records, 0, 1); len(got) != 3 {
		t.Fatalf("expected size 0 to leave records untouched, got %d", len(got))
	}
}
