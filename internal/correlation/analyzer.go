package correlation

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

// Analyzer computes multi-method correlation matrices with significance
// testing over aligned metric sequences.
type Analyzer struct{}

// NewAnalyzer creates a new correlation analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze produces Pearson, Spearman and Kendall matrices plus significance
// tests and single-control partial correlations for the given metric series.
// All series must be aligned and of equal length >= 2.
func (a *Analyzer) Analyze(ctx context.Context, series map[market.TargetMetric][]float64) (market.CorrelationAnalysis, error) {
	var analysis market.CorrelationAnalysis

	if len(series) == 0 {
		return analysis, errors.EmptyInput("metric series")
	}

	metrics := orderMetrics(series)
	n := len(series[metrics[0]])
	if n < 2 {
		return analysis, errors.ValidationError("correlation requires at least 2 observations")
	}
	for _, metric := range metrics {
		if len(series[metric]) != n {
			return analysis, errors.ValidationError(
				"metric " + metric.String() + " is not aligned with the other series")
		}
	}

	// Rank transforms are shared between Spearman cells
	rankSeries := make(map[market.TargetMetric][]float64, len(metrics))
	for _, metric := range metrics {
		rankSeries[metric] = Ranks(series[metric])
	}

	k := len(metrics)
	pearson := newMatrix(metrics)
	spearman := newMatrix(metrics)
	kendall := newMatrix(metrics)

	// The Kendall cells are O(n^2) each, so metric pairs fan out over a
	// worker group instead of running serially.
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			i, j := i, j
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				x, y := series[metrics[i]], series[metrics[j]]

				p := Pearson(x, y)
				s := Pearson(rankSeries[metrics[i]], rankSeries[metrics[j]])
				kt := KendallTau(x, y)

				pearson.Values[i][j], pearson.Values[j][i] = p, p
				spearman.Values[i][j], spearman.Values[j][i] = s, s
				kendall.Values[i][j], kendall.Values[j][i] = kt, kt
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return analysis, errors.Wrap(err, "correlation matrix computation aborted")
	}

	significance := make([]market.SignificanceTest, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			significance = append(significance,
				testSignificance(metrics[i], metrics[j], pearson.Values[i][j], n))
		}
	}
	sort.SliceStable(significance, func(a, b int) bool {
		return math.Abs(significance[a].Correlation) > math.Abs(significance[b].Correlation)
	})

	partials := partialCorrelations(metrics, pearson)

	analysis = market.CorrelationAnalysis{
		Metrics:      metrics,
		Pearson:      pearson,
		Spearman:     spearman,
		Kendall:      kendall,
		Significance: significance,
		Partials:     partials,
		SampleSize:   n,
	}
	return analysis, nil
}

// orderMetrics returns the canonical target order first, then any extra
// metrics alphabetically, so matrix indices are deterministic.
func orderMetrics(series map[market.TargetMetric][]float64) []market.TargetMetric {
	ordered := make([]market.TargetMetric, 0, len(series))
	seen := make(map[market.TargetMetric]bool, len(series))
	for _, metric := range market.AllTargets() {
		if _, ok := series[metric]; ok {
			ordered = append(ordered, metric)
			seen[metric] = true
		}
	}

	extras := make([]market.TargetMetric, 0)
	for metric := range series {
		if !seen[metric] {
			extras = append(extras, metric)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(ordered, extras...)
}

// newMatrix allocates an identity-diagonal matrix for the metric list
func newMatrix(metrics []market.TargetMetric) market.CorrelationMatrix {
	k := len(metrics)
	values := make([][]float64, k)
	for i := range values {
		values[i] = make([]float64, k)
		values[i][i] = 1.0
	}
	return market.CorrelationMatrix{Metrics: metrics, Values: values}
}

// Pearson computes the product-moment correlation. Zero-variance input has no
// correlation signal and yields 0 rather than NaN.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0
	}
	return clamp(stat.Correlation(x, y, nil))
}

// Ranks converts values to ranks, averaging ties so equal values share the
// mean of the positions they span.
func Ranks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		avgRank := float64(i+1) + float64(j-i-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}
	return ranks
}

// KendallTau counts concordant and discordant pairs over all n*(n-1)/2
// combinations: tau = (C - D) / (0.5*n*(n-1)). O(n^2), bounded upstream by
// the worker fan-out per metric pair.
func KendallTau(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0
	}

	concordant, discordant := 0, 0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			dx := x[j] - x[i]
			dy := y[j] - y[i]
			product := dx * dy
			if product > 0 {
				concordant++
			} else if product < 0 {
				discordant++
			}
		}
	}

	denom := 0.5 * float64(n) * float64(n-1)
	if denom == 0 {
		return 0
	}
	return clamp(float64(concordant-discordant) / denom)
}

// partialCorrelations removes the linear effect of the first (controlling)
// metric from every remaining pair. Single-control only.
func partialCorrelations(metrics []market.TargetMetric, pearson market.CorrelationMatrix) []market.PartialCorrelation {
	if len(metrics) < 3 {
		return nil
	}

	control := metrics[0]
	partials := make([]market.PartialCorrelation, 0)
	for i := 1; i < len(metrics); i++ {
		for j := i + 1; j < len(metrics); j++ {
			rxy := pearson.Values[i][j]
			rxz := pearson.Values[i][0]
			ryz := pearson.Values[j][0]

			denom := math.Sqrt((1 - rxz*rxz) * (1 - ryz*ryz))
			partial := 0.0
			if denom != 0 {
				partial = clamp((rxy - rxz*ryz) / denom)
			}

			partials = append(partials, market.PartialCorrelation{
				MetricX:     metrics[i],
				MetricY:     metrics[j],
				Controlling: control,
				Correlation: partial,
			})
		}
	}
	return partials
}

func clamp(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
