package market

import "fmt"

// OutlierReport records the IQR fence rule alongside its result so callers
// can audit which values were counted.
type OutlierReport struct {
	Count      int     `json:"count"`
	LowerFence float64 `json:"lower_fence"` // q25 - multiplier*iqr
	UpperFence float64 `json:"upper_fence"` // q75 + multiplier*iqr
	Multiplier float64 `json:"multiplier"`  // 1.5 (Tukey fence)
}

// StatisticalSummary is the descriptive profile of one numeric sequence.
// INVARIANTS:
// - Count equals the input length and is > 0
// - Min <= Q25 <= Median <= Q75 <= Max
type StatisticalSummary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"` // Sample (n-1) denominator
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`

	Q25 float64 `json:"q25"`
	Q50 float64 `json:"q50"`
	Q75 float64 `json:"q75"`
	IQR float64 `json:"iqr"`

	P10 float64 `json:"p10"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`

	Skewness float64 `json:"skewness"` // Bias-corrected Fisher-Pearson
	Kurtosis float64 `json:"kurtosis"` // Excess kurtosis (normal = 0)

	Outliers OutlierReport `json:"outliers"`
}

// Validate checks the ordering invariants of a computed summary
func (s StatisticalSummary) Validate() error {
	if s.Count <= 0 {
		return fmt.Errorf("summary count must be > 0, got %d", s.Count)
	}
	if s.Min > s.Q25 || s.Q25 > s.Median || s.Median > s.Q75 || s.Q75 > s.Max {
		return fmt.Errorf("summary ordering violated: min=%v q25=%v median=%v q75=%v max=%v",
			s.Min, s.Q25, s.Median, s.Q75, s.Max)
	}
	return nil
}
