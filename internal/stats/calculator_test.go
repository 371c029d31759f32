package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmerge/internal/errors"
)

func TestSummarize_OrderingInvariant(t *testing.T) {
	calc := NewCalculator()

	datasets := [][]float64{
		{10, 20, 30, 40, 50},
		{1},
		{5, 5, 5, 5},
		{-3, 7, 0.5, 12, -8, 4, 4},
		{0.001, 0.002, 0.003, 1000},
	}

	for _, data := range datasets {
		summary, err := calc.Summarize(data)
		require.NoError(t, err)

		assert.Equal(t, len(data), summary.Count)
		assert.LessOrEqual(t, summary.Min, summary.Q25)
		assert.LessOrEqual(t, summary.Q25, summary.Median)
		assert.LessOrEqual(t, summary.Median, summary.Q75)
		assert.LessOrEqual(t, summary.Q75, summary.Max)
		assert.InDelta(t, summary.Q75-summary.Q25, summary.IQR, 1e-12)
	}
}

func TestSummarize_KnownValues(t *testing.T) {
	calc := NewCalculator()

	summary, err := calc.Summarize([]float64{10, 20, 30, 40, 50})
	require.NoError(t, err)

	assert.InDelta(t, 30.0, summary.Mean, 1e-12)
	assert.InDelta(t, 30.0, summary.Median, 1e-12)
	assert.InDelta(t, 20.0, summary.Q25, 1e-12)
	assert.InDelta(t, 40.0, summary.Q75, 1e-12)
	assert.InDelta(t, 10.0, summary.Min, 1e-12)
	assert.InDelta(t, 50.0, summary.Max, 1e-12)
	// Sample variance of an arithmetic sequence with step 10: 250
	assert.InDelta(t, 250.0, summary.Variance, 1e-9)
	assert.InDelta(t, math.Sqrt(250.0), summary.StdDev, 1e-9)
	// Symmetric data has zero skew
	assert.InDelta(t, 0.0, summary.Skewness, 1e-9)
}

func TestSummarize_EmptyInputFails(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.Summarize(nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptyInput, errors.GetCode(err))
}

func TestSummarize_NonFiniteInputFails(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.Summarize([]float64{1, math.NaN(), 3})
	require.Error(t, err)

	_, err = calc.Summarize([]float64{1, math.Inf(1)})
	require.Error(t, err)
}

func TestPercentile_MedianAgreement(t *testing.T) {
	// Percentile(50) must equal the standard median for even and odd lengths
	odd := []float64{7, 1, 3, 9, 5}
	even := []float64{4, 8, 2, 6}

	p50Odd, err := Percentile(odd, 50)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, p50Odd, 1e-12)

	p50Even, err := Percentile(even, 50)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, p50Even, 1e-12)
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	data := []float64{10, 20, 30, 40, 50}

	// index = 90/100 * 4 = 3.6 -> 40*0.4 + 50*0.6 = 46
	p90, err := Percentile(data, 90)
	require.NoError(t, err)
	assert.InDelta(t, 46.0, p90, 1e-12)

	p0, err := Percentile(data, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, p0, 1e-12)

	p100, err := Percentile(data, 100)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, p100, 1e-12)
}

func TestSummarize_NoOutliersInsideFences(t *testing.T) {
	calc := NewCalculator()

	summary, err := calc.Summarize([]float64{10, 12, 14, 16, 18, 20})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Outliers.Count)
	assert.InDelta(t, 1.5, summary.Outliers.Multiplier, 1e-12)
}

func TestSummarize_DetectsOutliers(t *testing.T) {
	calc := NewCalculator()

	// 500 sits far above the Tukey upper fence of the rest
	summary, err := calc.Summarize([]float64{10, 11, 12, 13, 14, 15, 500})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Outliers.Count)
	assert.Greater(t, 500.0, summary.Outliers.UpperFence)
}

func TestSummarize_ConstantSequence(t *testing.T) {
	calc := NewCalculator()

	summary, err := calc.Summarize([]float64{42, 42, 42, 42, 42})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, summary.StdDev, 1e-12)
	assert.InDelta(t, 0.0, summary.Skewness, 1e-12)
	assert.InDelta(t, 0.0, summary.Kurtosis, 1e-12)
	assert.Equal(t, 0, summary.Outliers.Count)
}
