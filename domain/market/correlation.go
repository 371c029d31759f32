package market

import "fmt"

// CorrelationMethod identifies a correlation algorithm
type CorrelationMethod string

const (
	MethodPearson  CorrelationMethod = "pearson"
	MethodSpearman CorrelationMethod = "spearman"
	MethodKendall  CorrelationMethod = "kendall"
)

// CorrelationStrength labels the magnitude of a coefficient
type CorrelationStrength string

const (
	StrengthVeryWeak   CorrelationStrength = "very_weak"   // |r| < 0.2
	StrengthWeak       CorrelationStrength = "weak"        // |r| < 0.4
	StrengthModerate   CorrelationStrength = "moderate"    // |r| < 0.6
	StrengthStrong     CorrelationStrength = "strong"      // |r| < 0.8
	StrengthVeryStrong CorrelationStrength = "very_strong" // otherwise
)

// CorrelationMatrix is a square matrix indexed by an ordered metric list.
// INVARIANTS: symmetric, diagonal exactly 1, entries in [-1, 1].
type CorrelationMatrix struct {
	Metrics []TargetMetric `json:"metrics"`
	Values  [][]float64    `json:"values"`
}

// At returns the coefficient between two metrics by index
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Lookup returns the coefficient between two named metrics
func (m CorrelationMatrix) Lookup(x, y TargetMetric) (float64, error) {
	xi, yi := -1, -1
	for i, metric := range m.Metrics {
		if metric == x {
			xi = i
		}
		if metric == y {
			yi = i
		}
	}
	if xi < 0 || yi < 0 {
		return 0, fmt.Errorf("metric pair (%s, %s) not in matrix", x, y)
	}
	return m.Values[xi][yi], nil
}

// SignificanceTest carries the inferential result for one metric pair
type SignificanceTest struct {
	MetricX     TargetMetric        `json:"metric_x"`
	MetricY     TargetMetric        `json:"metric_y"`
	Correlation float64             `json:"correlation"` // Pearson r
	TStatistic  float64             `json:"t_statistic"`
	DF          int                 `json:"df"` // n - 2
	PValue      float64             `json:"p_value"`
	CILower     float64             `json:"ci_lower"` // Fisher-z 95% interval
	CIUpper     float64             `json:"ci_upper"`
	Significant bool                `json:"significant"` // p < 0.05
	Strength    CorrelationStrength `json:"strength"`
}

// PartialCorrelation is the correlation of a pair after removing the linear
// effect of a single controlling metric.
type PartialCorrelation struct {
	MetricX     TargetMetric `json:"metric_x"`
	MetricY     TargetMetric `json:"metric_y"`
	Controlling TargetMetric `json:"controlling"`
	Correlation float64      `json:"correlation"`
}

// CorrelationAnalysis bundles the three method matrices with inference results.
// Significance entries are sorted by descending absolute correlation.
type CorrelationAnalysis struct {
	Metrics      []TargetMetric       `json:"metrics"`
	Pearson      CorrelationMatrix    `json:"pearson"`
	Spearman     CorrelationMatrix    `json:"spearman"`
	Kendall      CorrelationMatrix    `json:"kendall"`
	Significance []SignificanceTest   `json:"significance"`
	Partials     []PartialCorrelation `json:"partial_correlations"`
	SampleSize   int                  `json:"sample_size"`
}
