package dataset

import (
	"math/rand/v2"
	"sort"
)

// First returns the first n records. n <= 0 or n beyond the end returns all of them.
func First(records []Record, n int) []Record {
	if n <= 0 || n >= len(records) {
		return records
	}
	return records[:n]
}

// Sample returns size records picked by a permutation seeded with seed,
// kept in their original order. The same seed always selects the same indices.
// A size <= 0 or not smaller than the input returns records unchanged.
func Sample(records []Record, size int, seed int64) []Record {
	if size <= 0 || size >= len(records) {
		return records
	}

	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	indices := rng.Perm(len(records))[:size]
	sort.Ints(indices)

	out := make([]Record, size)
	for i, idx := range indices {
		out[i] = records[idx]
	}
	return out
}
