package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"propmerge/domain/market"
)

// significanceAlpha is the two-tailed threshold for flagging a pair
const significanceAlpha = 0.05

// fisherZCritical is the normal quantile for a 95% confidence interval
const fisherZCritical = 1.96

// testSignificance runs the t-test and Fisher-z interval for one Pearson pair
func testSignificance(x, y market.TargetMetric, r float64, n int) market.SignificanceTest {
	test := market.SignificanceTest{
		MetricX:     x,
		MetricY:     y,
		Correlation: r,
		DF:          n - 2,
		PValue:      1.0,
		CILower:     -1,
		CIUpper:     1,
		Strength:    StrengthFor(r),
	}
	if n < 3 {
		return test
	}

	df := float64(n - 2)
	switch {
	case math.Abs(r) >= 1:
		// Perfect correlation saturates the t statistic
		test.TStatistic = math.Inf(int(math.Copysign(1, r)))
		test.PValue = 0
	default:
		test.TStatistic = r * math.Sqrt(df) / math.Sqrt(1-r*r)
		test.PValue = twoTailedPValue(test.TStatistic, df)
	}

	if n > 3 {
		test.CILower, test.CIUpper = fisherInterval(r, n)
	}
	test.Significant = test.PValue < significanceAlpha
	return test
}

// twoTailedPValue evaluates the Student-t survival function on both tails.
// A real t CDF is used here; the upstream implementation stubbed this with a
// constant, which made every pair look equally significant.
func twoTailedPValue(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// fisherInterval computes the 95% confidence interval for r via the
// Fisher-z transform: z = atanh(r), se = 1/sqrt(n-3).
func fisherInterval(r float64, n int) (lower, upper float64) {
	if math.Abs(r) >= 1 {
		return r, r
	}
	z := math.Atanh(r)
	se := 1.0 / math.Sqrt(float64(n-3))
	return math.Tanh(z - fisherZCritical*se), math.Tanh(z + fisherZCritical*se)
}

// StrengthFor labels the magnitude of a correlation coefficient
func StrengthFor(r float64) market.CorrelationStrength {
	abs := math.Abs(r)
	switch {
	case abs < 0.2:
		return market.StrengthVeryWeak
	case abs < 0.4:
		return market.StrengthWeak
	case abs < 0.6:
		return market.StrengthModerate
	case abs < 0.8:
		return market.StrengthStrong
	default:
		return market.StrengthVeryStrong
	}
}
