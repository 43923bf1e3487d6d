// Package stats provides the numeric aggregation primitives used by the
// market intelligence services: percentiles, dispersion, and IQR-based
// outlier rejection. Everything here is pure and deterministic.
package stats

import (
	"math"
	"sort"
)

// minOutlierSampleSize is the smallest sample for which IQR outlier
// detection is meaningful. Below this, RemoveOutliers is a no-op.
const minOutlierSampleSize = 5

// iqrMultiplier is the standard Tukey fence multiplier.
const iqrMultiplier = 1.5

// Percentile returns the p-th percentile (0-100) of an ascending-sorted
// slice using linear interpolation between bracketing ranks. An empty
// input yields 0: callers treat an empty distribution as "no data",
// never as an error.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
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

// Median returns the 50th percentile of an ascending-sorted slice.
func Median(sorted []float64) float64 {
	return Percentile(sorted, 50)
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 for fewer than
// two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// OutlierBounds returns the Tukey fences [Q1-1.5*IQR, Q3+1.5*IQR] for the
// given values. ok is false when the sample is too small for outlier
// detection, in which case callers must keep every value.
func OutlierBounds(values []float64) (lower, upper float64, ok bool) {
	if len(values) < minOutlierSampleSize {
		return 0, 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := Percentile(sorted, 25)
	q3 := Percentile(sorted, 75)
	iqr := q3 - q1
	return q1 - iqrMultiplier*iqr, q3 + iqrMultiplier*iqr, true
}

// RemoveOutliers drops values outside the IQR fences and reports how many
// were removed. Input order is preserved for the survivors. Samples
// smaller than five are returned unchanged with removed == 0.
func RemoveOutliers(values []float64) (cleaned []float64, removed int) {
	lower, upper, ok := OutlierBounds(values)
	if !ok {
		return values, 0
	}

	cleaned = make([]float64, 0, len(values))
	for _, v := range values {
		if v < lower || v > upper {
			removed++
			continue
		}
		cleaned = append(cleaned, v)
	}
	return cleaned, removed
}
