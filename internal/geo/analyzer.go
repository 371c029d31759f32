package geo

import (
	"context"
	"math"
	"sort"

	"propmerge/domain/market"
	"propmerge/internal/errors"
	"propmerge/internal/stats"
	"propmerge/ports"
)

// PerformancePolicy is the weighting that maps area metric means onto a
// qualitative band.
type PerformancePolicy struct {
	InvestmentWeight float64 // Weight on the mean investment score
	YieldScale       float64 // Multiplier on the mean rental yield (fraction)
	ExcellentMin     float64
	GoodMin          float64
	AverageMin       float64
}

// DefaultPerformancePolicy returns the standard 0.6-investment / x40-yield
// blend with 75/60/40 bands.
func DefaultPerformancePolicy() PerformancePolicy {
	return PerformancePolicy{
		InvestmentWeight: 0.6,
		YieldScale:       40.0,
		ExcellentMin:     75,
		GoodMin:          60,
		AverageMin:       40,
	}
}

// Score blends the two area means into a 0-100-ish performance score
func (p PerformancePolicy) Score(investmentMean, yieldMean float64) float64 {
	return p.InvestmentWeight*investmentMean + p.YieldScale*yieldMean
}

// Band maps a performance score onto its qualitative label
func (p PerformancePolicy) Band(score float64) market.PerformanceBand {
	switch {
	case score >= p.ExcellentMin:
		return market.BandExcellent
	case score >= p.GoodMin:
		return market.BandGood
	case score >= p.AverageMin:
		return market.BandAverage
	default:
		return market.BandPoor
	}
}

// Regional trend confidences are illustrative constants, carried as-is from
// the upstream heuristic.
const (
	trendIncreasingConfidence = 0.75
	trendDecreasingConfidence = 0.70
	trendStableConfidence     = 0.60
)

// Analyzer aggregates properties by Forward Sortation Area and derives
// area-level and portfolio-level spatial statistics.
type Analyzer struct {
	calc   *stats.Calculator
	index  ports.NeighborIndex
	policy PerformancePolicy
}

// NewAnalyzer creates a geographic analyzer around a neighbor index
func NewAnalyzer(index ports.NeighborIndex, policy PerformancePolicy) *Analyzer {
	return &Analyzer{
		calc:   stats.NewCalculator(),
		index:  index,
		policy: policy,
	}
}

// Analyze groups the aligned predictions by area code and computes the full
// geographic aggregation. predictions maps each target to a sequence aligned
// positionally with props.
func (a *Analyzer) Analyze(ctx context.Context, predictions map[market.TargetMetric][]float64, props []market.PropertyRecord) (market.GeographicAnalysis, error) {
	var analysis market.GeographicAnalysis

	if len(props) == 0 {
		return analysis, errors.EmptyInput("property records")
	}
	for metric, preds := range predictions {
		if len(preds) != len(props) {
			return analysis, errors.ValidationError(
				"predictions for " + metric.String() + " are not aligned with properties")
		}
	}

	areas, err := a.aggregateAreas(predictions, props)
	if err != nil {
		return analysis, err
	}
	rankAreas(areas)

	spatial, err := a.spatialStatistics(ctx, props)
	if err != nil {
		return analysis, errors.Wrap(err, "spatial statistics failed")
	}

	analysis = market.GeographicAnalysis{
		Areas:   areas,
		Spatial: spatial,
		Trends:  regionalTrends(areas),
	}
	return analysis, nil
}

// aggregateAreas builds one FSAAnalysis per area code. An area with zero
// finite values for a requested metric fails explicitly rather than
// defaulting.
func (a *Analyzer) aggregateAreas(predictions map[market.TargetMetric][]float64, props []market.PropertyRecord) ([]market.FSAAnalysis, error) {
	members := make(map[string][]int)
	for i, p := range props {
		if p.FSA == "" {
			continue
		}
		members[p.FSA] = append(members[p.FSA], i)
	}

	areas := make([]market.FSAAnalysis, 0, len(members))
	for fsa, indices := range members {
		area := market.FSAAnalysis{
			FSA:           fsa,
			PropertyCount: len(indices),
			Metrics:       make(map[market.TargetMetric]market.StatisticalSummary, len(predictions)),
		}

		latSum, lngSum := 0.0, 0.0
		for _, i := range indices {
			latSum += props[i].Latitude
			lngSum += props[i].Longitude
		}
		area.Center = market.GeographicCenter{
			Latitude:  latSum / float64(len(indices)),
			Longitude: lngSum / float64(len(indices)),
		}

		for metric, preds := range predictions {
			values := make([]float64, 0, len(indices))
			for _, i := range indices {
				v := preds[i]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					continue
				}
				values = append(values, v)
			}
			if len(values) == 0 {
				return nil, errors.EmptySubset(fsa, metric.String())
			}
			summary, err := a.calc.Summarize(values)
			if err != nil {
				return nil, errors.Wrapf(err, "summarizing %s for area %s", metric, fsa)
			}
			area.Metrics[metric] = summary
		}

		invMean := area.Metrics[market.TargetInvestmentScore].Mean
		if yieldSummary, ok := area.Metrics[market.TargetRentalYield]; ok {
			area.PerformanceScore = a.policy.Score(invMean, yieldSummary.Mean)
		} else {
			// No yield data: the investment mean stands alone
			area.PerformanceScore = invMean
		}
		area.Performance = a.policy.Band(area.PerformanceScore)

		areas = append(areas, area)
	}
	return areas, nil
}

// rankAreas sorts areas by descending mean investment score and assigns
// 1-based ranks. Ties break on FSA code to keep output deterministic.
func rankAreas(areas []market.FSAAnalysis) {
	sort.SliceStable(areas, func(i, j int) bool {
		mi := areas[i].Metrics[market.TargetInvestmentScore].Mean
		mj := areas[j].Metrics[market.TargetInvestmentScore].Mean
		if mi != mj {
			return mi > mj
		}
		return areas[i].FSA < areas[j].FSA
	})
	for i := range areas {
		areas[i].Rank = i + 1
	}
}

// spatialStatistics derives the portfolio-level spatial measures
func (a *Analyzer) spatialStatistics(ctx context.Context, props []market.PropertyRecord) (market.SpatialStatistics, error) {
	var spatial market.SpatialStatistics

	nn, err := a.index.NearestNeighborDistances(ctx, props)
	if err != nil {
		return spatial, err
	}

	meanNN := 0.0
	for _, d := range nn {
		meanNN += d
	}
	if len(nn) > 0 {
		meanNN /= float64(len(nn))
	}

	// Moran autocorrelation runs over the price feature; properties with no
	// price drop out of the reference set pairwise.
	priced := make([]market.PropertyRecord, 0, len(props))
	prices := make([]float64, 0, len(props))
	for _, p := range props {
		if price, ok := p.Feature(market.FeaturePrice); ok {
			priced = append(priced, p)
			prices = append(prices, price)
		}
	}
	moran, err := moranI(ctx, priced, prices)
	if err != nil {
		return spatial, err
	}

	spatial = market.SpatialStatistics{
		NearestNeighborKm:     nn,
		MeanNearestNeighborKm: meanNN,
		MoranI:                moran,
		ClusteringCoefficient: clusteringCoefficient(nn),
		DispersalIndex:        dispersalIndex(props),
	}
	return spatial, nil
}

// regionalTrends groups areas by the first character of the FSA (a coarse
// regional proxy) and labels each region's movement from its average
// investment score.
func regionalTrends(areas []market.FSAAnalysis) []market.RegionalTrend {
	type bucket struct {
		sum   float64
		count int
	}
	regions := make(map[string]*bucket)
	for _, area := range areas {
		region := area.FSA[:1]
		b := regions[region]
		if b == nil {
			b = &bucket{}
			regions[region] = b
		}
		b.sum += area.Metrics[market.TargetInvestmentScore].Mean
		b.count++
	}

	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)

	trends := make([]market.RegionalTrend, 0, len(names))
	for _, name := range names {
		b := regions[name]
		avg := b.sum / float64(b.count)

		direction := market.TrendStable
		confidence := trendStableConfidence
		switch {
		case avg > 60:
			direction = market.TrendIncreasing
			confidence = trendIncreasingConfidence
		case avg < 40:
			direction = market.TrendDecreasing
			confidence = trendDecreasingConfidence
		}

		trends = append(trends, market.RegionalTrend{
			Region:             name,
			Direction:          direction,
			AvgInvestmentScore: avg,
			Confidence:         confidence,
			FSACount:           b.count,
		})
	}
	return trends
}
