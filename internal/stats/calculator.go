package stats

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

// OutlierMultiplier is the Tukey fence multiplier reported with every summary
const OutlierMultiplier = 1.5

// Calculator produces descriptive statistics for numeric sequences
type Calculator struct{}

// NewCalculator creates a new statistical calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Summarize computes the full descriptive profile of data.
// Fails on empty input or any non-finite value.
func (c *Calculator) Summarize(data []float64) (market.StatisticalSummary, error) {
	var summary market.StatisticalSummary

	if len(data) == 0 {
		return summary, errors.EmptyInput("input sequence")
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return summary, errors.ValidationError(
				"input sequence contains a non-finite value at index " + strconv.Itoa(i))
		}
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return summary, errors.Wrap(err, "failed to compute mean")
	}
	median, err := stats.Median(data)
	if err != nil {
		return summary, errors.Wrap(err, "failed to compute median")
	}
	min, err := stats.Min(data)
	if err != nil {
		return summary, errors.Wrap(err, "failed to compute min")
	}
	max, err := stats.Max(data)
	if err != nil {
		return summary, errors.Wrap(err, "failed to compute max")
	}

	// Sample (n-1) denominator per the reporting contract
	stdDev := 0.0
	variance := 0.0
	if len(data) > 1 {
		stdDev, err = stats.StandardDeviationSample(data)
		if err != nil {
			return summary, errors.Wrap(err, "failed to compute standard deviation")
		}
		variance, err = stats.SampleVariance(data)
		if err != nil {
			return summary, errors.Wrap(err, "failed to compute variance")
		}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	q25 := PercentileSorted(sorted, 25)
	q50 := PercentileSorted(sorted, 50)
	q75 := PercentileSorted(sorted, 75)
	iqr := q75 - q25

	lowerFence := q25 - OutlierMultiplier*iqr
	upperFence := q75 + OutlierMultiplier*iqr
	outliers := 0
	for _, v := range data {
		if v < lowerFence || v > upperFence {
			outliers++
		}
	}

	summary = market.StatisticalSummary{
		Count:    len(data),
		Mean:     mean,
		Median:   median,
		StdDev:   stdDev,
		Variance: variance,
		Min:      min,
		Max:      max,
		Q25:      q25,
		Q50:      q50,
		Q75:      q75,
		IQR:      iqr,
		P10:      PercentileSorted(sorted, 10),
		P90:      PercentileSorted(sorted, 90),
		P95:      PercentileSorted(sorted, 95),
		P99:      PercentileSorted(sorted, 99),
		Skewness: sampleSkewness(data, mean),
		Kurtosis: sampleExcessKurtosis(data, mean),
		Outliers: market.OutlierReport{
			Count:      outliers,
			LowerFence: lowerFence,
			UpperFence: upperFence,
			Multiplier: OutlierMultiplier,
		},
	}
	return summary, nil
}

// Percentile computes the p-th percentile of data using linear interpolation
// between bounding order statistics: index = p/100 * (n-1), then a weighted
// blend of the floor/ceil elements. This is the standard R-7 estimator and is
// pinned so downstream outputs stay reproducible.
func Percentile(data []float64, p float64) (float64, error) {
	if len(data) == 0 {
		return 0, errors.EmptyInput("input sequence")
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return PercentileSorted(sorted, p), nil
}

// PercentileSorted is Percentile over already-sorted ascending data
func PercentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	index := p / 100 * float64(n-1)
	lo := int(math.Floor(index))
	hi := int(math.Ceil(index))
	if lo == hi {
		return sorted[lo]
	}
	frac := index - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// sampleSkewness computes the bias-corrected Fisher-Pearson coefficient.
// Zero for fewer than 3 observations or zero spread.
func sampleSkewness(data []float64, mean float64) float64 {
	n := float64(len(data))
	if n < 3 {
		return 0
	}

	m2, m3 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	if m2 == 0 {
		return 0
	}

	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}

// sampleExcessKurtosis computes bias-corrected excess kurtosis (normal = 0).
// Zero for fewer than 4 observations or zero spread.
func sampleExcessKurtosis(data []float64, mean float64) float64 {
	n := float64(len(data))
	if n < 4 {
		return 0
	}

	m2, m4 := 0.0, 0.0
	for _, x := range data {
		d := x - mean
		d2 := d * d
		m2 += d2
		m4 += d2 * d2
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}

	g2 := m4/(m2*m2) - 3
	return ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
}
