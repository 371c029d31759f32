package merge

import (
	"sort"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

// buildRankings ranks every property per target metric and by the blended
// combined score. Rank 1 is always the most desirable property, so the
// time-on-market ranking sorts ascending while the others sort descending.
func (m *Merger) buildRankings(targets map[market.TargetMetric]*market.TargetResult, properties []market.PropertyRecord) (map[market.TargetMetric]market.PropertyRanking, market.PropertyRanking, error) {
	rankings := make(map[market.TargetMetric]market.PropertyRanking, len(targets))
	for _, metric := range market.AllTargets() {
		tr, ok := targets[metric]
		if !ok {
			continue
		}
		rankings[metric] = rankProperties(metric.String(), metric.LowerIsBetter(), tr.Predictions, properties)
	}

	scores, err := m.combinedScores(targets, len(properties))
	if err != nil {
		return nil, market.PropertyRanking{}, err
	}
	combined := rankProperties(market.CombinedScoreMetric, false, scores, properties)
	return rankings, combined, nil
}

// rankProperties assigns dense 1..n ranks over one value series. Ties break
// on the property key so repeated merges order identically.
func rankProperties(metric string, ascending bool, values []float64, properties []market.PropertyRecord) market.PropertyRanking {
	n := len(values)
	entries := make([]market.RankedProperty, n)
	for i := range values {
		entries[i] = market.RankedProperty{
			PropertyKey: properties[i].Key(),
			FSA:         properties[i].FSA,
			Value:       values[i],
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			if ascending {
				return entries[i].Value < entries[j].Value
			}
			return entries[i].Value > entries[j].Value
		}
		return entries[i].PropertyKey < entries[j].PropertyKey
	})
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Percentile = percentileForRank(i+1, n)
		entries[i].Category = market.CategoryForPercentile(entries[i].Percentile)
	}
	return market.PropertyRanking{Metric: metric, Ascending: ascending, Entries: entries}
}

// percentileForRank maps rank 1 to 100 and rank n to 0
func percentileForRank(rank, n int) float64 {
	if n <= 1 {
		return 100
	}
	return 100 * float64(n-rank) / float64(n-1)
}

// combinedScores blends the four normalized target predictions per property.
// Time on market is inverted so a fast-selling property scores high. A
// degenerate series (all values equal) contributes a neutral 0.5.
func (m *Merger) combinedScores(targets map[market.TargetMetric]*market.TargetResult, n int) ([]float64, error) {
	w := m.opts.CombinedWeights
	components := []struct {
		metric market.TargetMetric
		weight float64
	}{
		{market.TargetTimeOnMarket, w.TimeOnMarket},
		{market.TargetPriceDelta, w.PriceDelta},
		{market.TargetRentalYield, w.RentalYield},
		{market.TargetInvestmentScore, w.InvestmentScore},
	}

	scores := make([]float64, n)
	for _, c := range components {
		tr, ok := targets[c.metric]
		if !ok {
			return nil, errors.ValidationError("combined score requires target " + c.metric.String())
		}
		normalized := minMaxNormalize(tr.Predictions)
		invert := c.metric.LowerIsBetter()
		for i, v := range normalized {
			if invert {
				v = 1 - v
			}
			scores[i] += c.weight * v
		}
	}
	return scores, nil
}

// minMaxNormalize maps a series onto [0, 1]; a flat series maps to 0.5
func minMaxNormalize(values []float64) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(values))
	if hi == lo {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
