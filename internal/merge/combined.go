package merge

import (
	"math"

	"propmerge/domain/market"
)

// combinedStatistics summarizes the merged portfolio as a whole: coverage,
// completeness and the cross-target means.
func (m *Merger) combinedStatistics(targets map[market.TargetMetric]*market.TargetResult, properties []market.PropertyRecord) (market.CombinedStatistics, error) {
	means := make(map[market.TargetMetric]float64, len(targets))
	confSum := 0.0
	confCount := 0
	for metric, tr := range targets {
		means[metric] = tr.Summary.Mean
		if len(tr.Confidences) > 0 {
			confSum += meanOf(tr.Confidences)
			confCount++
		}
	}
	meanConfidence := 0.0
	if confCount > 0 {
		meanConfidence = confSum / float64(confCount)
	}

	return market.CombinedStatistics{
		PropertyCount:    len(properties),
		FSACoverage:      m.fsaCoverage(properties),
		DataCompleteness: dataCompleteness(properties, m.opts.RequiredFeatures),
		CrossTarget: market.CrossTargetSummary{
			Means:          means,
			MeanConfidence: meanConfidence,
		},
	}, nil
}

// fsaCoverage reports distinct areas as a fraction of the assumed universe
func (m *Merger) fsaCoverage(properties []market.PropertyRecord) float64 {
	seen := make(map[string]struct{})
	for _, p := range properties {
		if p.FSA != "" {
			seen[p.FSA] = struct{}{}
		}
	}
	return float64(len(seen)) / float64(m.opts.FSAUniverseSize)
}

// dataCompleteness averages, across properties, the fraction of required
// features present with a finite value.
func dataCompleteness(properties []market.PropertyRecord, required []string) float64 {
	if len(properties) == 0 || len(required) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range properties {
		present := 0
		for _, feature := range required {
			if v, ok := p.Features[feature]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				present++
			}
		}
		total += float64(present) / float64(len(required))
	}
	return total / float64(len(properties))
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
