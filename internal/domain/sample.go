package domain

import (
	"math/rand/v2"
	"slices"
)

const (
	// DefaultMaxPoints caps the features produced by a CSV conversion.
	DefaultMaxPoints = 150_000

	// FixedGridMaxPoints caps rows exported from a geostationary fixed grid.
	FixedGridMaxPoints = 15_000

	// DefaultSampleSeed seeds every downsample so output is reproducible.
	DefaultSampleSeed = 42
)

// SampleIndices picks exactly limit distinct row indices out of total using a
// PCG generator seeded with seed. The result is in ascending order. When total
// does not exceed limit every index is returned.
func SampleIndices(total, limit int, seed uint64) []int {
	if limit < 0 {
		limit = 0
	}
	if total <= limit {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}

	// Partial Fisher-Yates: the first limit slots end up a uniform sample.
	rng := rand.New(rand.NewPCG(seed, seed))
	perm := make([]int, total)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < limit; i++ {
		j := i + rng.IntN(total-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	out := perm[:limit]
	slices.Sort(out)
	return out
}

// Sample returns a table of at most limit rows chosen by SampleIndices. Rows
// keep their input order.
func (t Table) Sample(limit int, seed uint64) Table {
	if t.Len() <= limit {
		return t
	}
	idx := SampleIndices(t.Len(), limit, seed)
	rows := make([][]string, len(idx))
	for i, k := range idx {
		rows[i] = t.Rows[k]
	}
	return Table{Columns: t.Columns, Rows: rows}
}
