package merge

import (
	"fmt"
	"math"
	"sort"

	"propmerge/domain/core"
	"propmerge/domain/market"
)

// Recommendation cut points. Yield is a fraction of price, so 0.05 is 5%.
const (
	buyInvestmentMin  = 70.0
	buyYieldMin       = 0.05
	holdInvestmentMin = 55.0
)

// Risk factor weights. They sum below 100 so a single factor can never
// saturate the score on its own.
const (
	riskWeightVolatility   = 35.0
	riskWeightSlowMarket   = 25.0
	riskWeightCompleteness = 20.0
)

const (
	keyFindingLimit    = 3
	recommendationMax  = 3
	outlierZThreshold  = 2.0
	trendSkewTolerance = 0.02 // Relative mean/median gap treated as flat
)

// generateInsights derives the narrative layer: summary sentence, key
// findings, area recommendations, risk assessment, trends and comparatives.
func (m *Merger) generateInsights(targets map[market.TargetMetric]*market.TargetResult, combined market.CombinedStatistics, correlations market.CorrelationAnalysis, geographic market.GeographicAnalysis, properties []market.PropertyRecord) (market.Insights, error) {
	return market.Insights{
		MarketSummary:    marketSummary(combined, geographic),
		KeyFindings:      keyFindings(correlations, geographic),
		Recommendations:  m.recommendations(geographic),
		Risk:             m.assessRisk(targets, combined),
		PredictiveTrends: predictiveTrends(targets),
		Comparative:      comparative(geographic, properties),
		GeneratedAt:      core.Now(),
	}, nil
}

func marketSummary(combined market.CombinedStatistics, geographic market.GeographicAnalysis) string {
	invest := combined.CrossTarget.Means[market.TargetInvestmentScore]
	yield := combined.CrossTarget.Means[market.TargetRentalYield]
	return fmt.Sprintf(
		"Analyzed %d properties across %d areas: mean investment score %.1f, mean rental yield %.1f%%, mean confidence %.0f%%.",
		combined.PropertyCount, len(geographic.Areas), invest, yield*100,
		combined.CrossTarget.MeanConfidence*100)
}

// keyFindings surfaces the strongest significant correlations plus the
// leading area.
func keyFindings(correlations market.CorrelationAnalysis, geographic market.GeographicAnalysis) []string {
	findings := make([]string, 0, keyFindingLimit+1)
	for _, test := range correlations.Significance {
		if !test.Significant {
			continue
		}
		direction := "positive"
		if test.Correlation < 0 {
			direction = "negative"
		}
		findings = append(findings, fmt.Sprintf(
			"%s %s correlation between %s and %s (r=%.2f, p=%.4f)",
			test.Strength, direction, test.MetricX, test.MetricY,
			test.Correlation, test.PValue))
		if len(findings) == keyFindingLimit {
			break
		}
	}
	if top := geographic.TopArea(); top != nil {
		findings = append(findings, fmt.Sprintf(
			"%s leads all areas with a %s performance score of %.1f across %d properties",
			top.FSA, top.Performance, top.PerformanceScore, top.PropertyCount))
	}
	return findings
}

// recommendations issues buy/hold/avoid stances for the top-ranked areas
// that clear at least the good performance band.
func (m *Merger) recommendations(geographic market.GeographicAnalysis) []market.Recommendation {
	recs := make([]market.Recommendation, 0, recommendationMax)
	for _, area := range geographic.Areas {
		if len(recs) == recommendationMax {
			break
		}
		if area.Performance != market.BandExcellent && area.Performance != market.BandGood {
			continue
		}
		invest := area.Metrics[market.TargetInvestmentScore].Mean
		yield := area.Metrics[market.TargetRentalYield].Mean

		var action market.RecommendationAction
		var rationale string
		switch {
		case invest >= buyInvestmentMin && yield >= buyYieldMin:
			action = market.ActionBuy
			rationale = fmt.Sprintf("investment score %.1f with %.1f%% rental yield", invest, yield*100)
		case invest >= holdInvestmentMin:
			action = market.ActionHold
			rationale = fmt.Sprintf("solid investment score %.1f but yield below target", invest)
		default:
			action = market.ActionAvoid
			rationale = fmt.Sprintf("investment score %.1f under the hold threshold", invest)
		}
		recs = append(recs, market.Recommendation{
			FSA:             area.FSA,
			Action:          action,
			InvestmentScore: invest,
			RentalYield:     yield,
			Rationale:       rationale,
		})
	}
	return recs
}

// assessRisk accumulates weighted risk factors into a 0-100 score
func (m *Merger) assessRisk(targets map[market.TargetMetric]*market.TargetResult, combined market.CombinedStatistics) market.RiskAssessment {
	score := 0.0
	var factors []market.RiskFactor

	if pd, ok := targets[market.TargetPriceDelta]; ok && pd.Summary.Mean != 0 {
		cv := pd.Summary.StdDev / math.Abs(pd.Summary.Mean)
		if cv > m.opts.Risk.PriceVolatilityCV {
			score += riskWeightVolatility
			factors = append(factors, market.RiskFactor{
				Name:     "price_volatility",
				Severity: market.SeverityHigh,
				Detail:   fmt.Sprintf("price delta coefficient of variation %.2f exceeds %.2f", cv, m.opts.Risk.PriceVolatilityCV),
			})
		}
	}

	if tom, ok := targets[market.TargetTimeOnMarket]; ok && tom.Summary.Mean > m.opts.Risk.SlowMarketDays {
		score += riskWeightSlowMarket
		factors = append(factors, market.RiskFactor{
			Name:     "slow_market",
			Severity: market.SeverityModerate,
			Detail:   fmt.Sprintf("mean time on market %.0f days exceeds %.0f", tom.Summary.Mean, m.opts.Risk.SlowMarketDays),
		})
	}

	if combined.DataCompleteness < m.opts.Risk.MinCompleteness {
		score += riskWeightCompleteness
		factors = append(factors, market.RiskFactor{
			Name:     "data_completeness",
			Severity: market.SeverityModerate,
			Detail:   fmt.Sprintf("data completeness %.0f%% below the %.0f%% floor", combined.DataCompleteness*100, m.opts.Risk.MinCompleteness*100),
		})
	}

	level := market.SeverityLow
	switch {
	case score >= 60:
		level = market.SeverityHigh
	case score >= 30:
		level = market.SeverityModerate
	}
	return market.RiskAssessment{Score: score, Level: level, Factors: factors}
}

// predictiveTrends reads each target's mean/median skew as a directional
// signal: a mean well above the median suggests upward pressure from the
// high tail, and vice versa.
func predictiveTrends(targets map[market.TargetMetric]*market.TargetResult) []market.TrendStatement {
	trends := make([]market.TrendStatement, 0, len(targets))
	for _, metric := range market.AllTargets() {
		tr, ok := targets[metric]
		if !ok {
			continue
		}
		direction := market.TrendStable
		gap := tr.Summary.Mean - tr.Summary.Median
		scale := math.Abs(tr.Summary.Median)
		if scale == 0 {
			scale = 1
		}
		switch {
		case gap/scale > trendSkewTolerance:
			direction = market.TrendIncreasing
		case gap/scale < -trendSkewTolerance:
			direction = market.TrendDecreasing
		}
		trends = append(trends, market.TrendStatement{
			Metric:    metric,
			Direction: direction,
			Statement: fmt.Sprintf("%s distribution is %s (mean %.2f vs median %.2f)", metric, direction, tr.Summary.Mean, tr.Summary.Median),
		})
	}
	return trends
}

// comparative contrasts the best and worst areas and flags properties whose
// price sits more than two standard deviations from the portfolio mean.
func comparative(geographic market.GeographicAnalysis, properties []market.PropertyRecord) market.ComparativeAnalysis {
	out := market.ComparativeAnalysis{
		Outliers: priceOutliers(properties),
		Segments: []market.MarketSegment{
			{
				Name:        "high_yield",
				Description: "Areas where rental income outpaces the portfolio median",
				Criteria:    "area mean rental yield above portfolio median yield",
			},
			{
				Name:        "fast_moving",
				Description: "Areas whose listings sell faster than the portfolio at large",
				Criteria:    "area mean time on market below portfolio mean",
			},
		},
	}
	if top := geographic.TopArea(); top != nil {
		out.BestArea = top.FSA
	}
	if bottom := geographic.BottomArea(); bottom != nil {
		out.WorstArea = bottom.FSA
	}
	return out
}

// priceOutliers standardizes the price feature and keeps |z| > 2
func priceOutliers(properties []market.PropertyRecord) []market.OutlierProperty {
	prices := make([]float64, 0, len(properties))
	indexed := make([]int, 0, len(properties))
	for i, p := range properties {
		if v, ok := p.Feature(market.FeaturePrice); ok {
			prices = append(prices, v)
			indexed = append(indexed, i)
		}
	}
	if len(prices) < 2 {
		return nil
	}

	mean := meanOf(prices)
	sd := math.Sqrt(populationVariance(prices))
	if sd == 0 {
		return nil
	}

	var outliers []market.OutlierProperty
	for j, price := range prices {
		z := (price - mean) / sd
		if math.Abs(z) <= outlierZThreshold {
			continue
		}
		p := properties[indexed[j]]
		outliers = append(outliers, market.OutlierProperty{
			PropertyKey: p.Key(),
			FSA:         p.FSA,
			ZScore:      z,
			Price:       price,
		})
	}
	sort.SliceStable(outliers, func(i, j int) bool {
		return math.Abs(outliers[i].ZScore) > math.Abs(outliers[j].ZScore)
	})
	return outliers
}
