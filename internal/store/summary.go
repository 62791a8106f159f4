package store

import (
	"sort"
	"strings"

	"bugdle/internal/dataset"
)

// Count is one bucket of a breakdown.
type Count struct {
	Name  string
	Count int
}

// Summary describes the contents of an output file.
type Summary struct {
	Total      int
	Hinted     int
	ByCategory []Count
	ByLevel    []Count
	ByLanguage []Count
}

// Summarize counts records, records carrying a non-empty hintField and the
// category, level and language breakdowns. Buckets are sorted by count,
// then name.
func Summarize(records []dataset.Record, hintField string) Summary {
	s := Summary{Total: len(records)}
	categories := map[string]int{}
	levels := map[string]int{}
	languages := map[string]int{}

	for _, rec := range records {
		if hintField != "" && strings.TrimSpace(rec.String(hintField)) != "" {
			s.Hinted++
		}
		categories[bucket(rec.String(dataset.FieldCategory))]++
		levels[bucket(rec.String(dataset.FieldLevel))]++
		languages[bucket(rec.String(dataset.FieldLanguage))]++
	}

	s.ByCategory = sortedCounts(categories)
	s.ByLevel = sortedCounts(levels)
	s.ByLanguage = sortedCounts(languages)
	return s
}

func bucket(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "(none)"
	}
	return v
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
