package calculator

import (
	"errors"
	"math"
	"sort"
)

// Quantile estimates the q-th quantile (0 <= q <= 1) of values using linear
// interpolation between the closest ranks, h = (n-1)*q.
func Quantile(values []float64, q float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values for quantile calculation")
	}
	if q < 0 || q > 1 || math.IsNaN(q) {
		return 0, errors.New("quantile must be within [0,1]")
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo], nil
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo]), nil
}
