package stats

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile_EmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 0.0, Percentile([]float64{}, 99))
}

func TestPercentile_SingleValue(t *testing.T) {
	assert.Equal(t, 42.0, Percentile([]float64{42}, 0))
	assert.Equal(t, 42.0, Percentile([]float64{42}, 50))
	assert.Equal(t, 42.0, Percentile([]float64{42}, 100))
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	// rank = 0.5/100*3 is irrelevant; p50 lands between 20 and 30.
	assert.InDelta(t, 25.0, Percentile(sorted, 50), 1e-9)
	assert.InDelta(t, 17.5, Percentile(sorted, 25), 1e-9)
	assert.InDelta(t, 32.5, Percentile(sorted, 75), 1e-9)
	assert.Equal(t, 10.0, Percentile(sorted, 0))
	assert.Equal(t, 40.0, Percentile(sorted, 100))
}

func TestPercentile_ClampsOutOfRange(t *testing.T) {
	sorted := []float64{1, 2, 3}
	assert.Equal(t, 1.0, Percentile(sorted, -10))
	assert.Equal(t, 3.0, Percentile(sorted, 150))
}

func TestMedian_EqualsP50(t *testing.T) {
	inputs := [][]float64{
		{5},
		{1, 2},
		{1, 2, 3},
		{3, 7, 8, 12, 13, 14, 21, 23, 27, 32},
		{100, 102, 98, 101, 99},
	}
	for _, in := range inputs {
		sorted := make([]float64, len(in))
		copy(sorted, in)
		sort.Float64s(sorted)
		assert.Equal(t, Percentile(sorted, 50), Median(sorted))
	}
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 100.0, Mean([]float64{98, 99, 100, 101, 102}), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{7}))
	// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestRemoveOutliers_SmallSampleUnchanged(t *testing.T) {
	for n := 0; n < 5; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(i * 1000) // wildly spread on purpose
		}
		cleaned, removed := RemoveOutliers(values)
		assert.Equal(t, values, cleaned, "n=%d", n)
		assert.Equal(t, 0, removed, "n=%d", n)
	}
}

func TestRemoveOutliers_NoExtremes(t *testing.T) {
	values := []float64{100, 102, 98, 101, 99, 103, 97}
	cleaned, removed := RemoveOutliers(values)
	assert.Equal(t, values, cleaned)
	assert.Equal(t, 0, removed)
}

func TestRemoveOutliers_DropsExtreme(t *testing.T) {
	// The canonical bad-listing scenario: one 500 in a ~100 market.
	values := []float64{100, 102, 98, 101, 99, 500}
	cleaned, removed := RemoveOutliers(values)

	require.Equal(t, 1, removed)
	require.Len(t, cleaned, 5)
	assert.NotContains(t, cleaned, 500.0)

	sorted := make([]float64, len(cleaned))
	copy(sorted, cleaned)
	sort.Float64s(sorted)
	assert.InDelta(t, 100.0, Mean(cleaned), 1e-9)
	assert.InDelta(t, 100.0, Median(sorted), 1e-9)
}

func TestRemoveOutliers_PreservesOrder(t *testing.T) {
	values := []float64{101, 99, 500, 100, 98, 102}
	cleaned, removed := RemoveOutliers(values)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []float64{101, 99, 100, 98, 102}, cleaned)
}

func TestOutlierBounds(t *testing.T) {
	_, _, ok := OutlierBounds([]float64{1, 2, 3, 4})
	assert.False(t, ok)

	lower, upper, ok := OutlierBounds([]float64{100, 102, 98, 101, 99, 500})
	require.True(t, ok)
	assert.Less(t, lower, 98.0)
	assert.Greater(t, upper, 102.0)
	assert.Less(t, upper, 500.0)
}
