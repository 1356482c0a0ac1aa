package metrics

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile of values using linear interpolation
// between closest ranks.
//
// The rank is p/100 * (n-1) over the sorted values, so Percentile(v, 0) is the
// minimum and Percentile(v, 100) is the maximum. p is clamped to [0, 100].
// An empty input yields 0. The input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return percentileSorted(sorted, p)
}

// percentileSorted is Percentile over an already sorted slice.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if math.IsNaN(p) || p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
