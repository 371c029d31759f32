package merge

import (
	"math"
	"sort"
	"strings"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

// Quality score blend: confidence dominates, prediction stability tempers it
const (
	qualityConfidenceWeight = 0.7
	qualityStabilityWeight  = 0.3
)

// hotspotLimit caps the per-target hotspot listing
const hotspotLimit = 10

// extractTargets concatenates each target's predictions and confidences
// across all contributing responses (in sorted call order), aggregates
// feature importances, and computes the per-target summary, geospatial
// rollup and quality score.
func (m *Merger) extractTargets(callIDs []string, responses map[string]*market.PredictionResponse, properties []market.PropertyRecord) (map[market.TargetMetric]*market.TargetResult, error) {
	targets := make(map[market.TargetMetric]*market.TargetResult, 4)

	for _, metric := range market.AllTargets() {
		predictions := make([]float64, 0, len(properties))
		confidences := make([]float64, 0, len(properties))
		importanceSums := make(map[string]float64)
		importanceCounts := make(map[string]int)

		for _, callID := range callIDs {
			tp, ok := responses[callID].Targets[metric]
			if !ok {
				continue
			}
			predictions = append(predictions, tp.Predictions...)
			confidences = append(confidences, tp.Confidences...)

			for _, row := range tp.Explanation.Values {
				for f, contribution := range row {
					name := tp.Explanation.FeatureNames[f]
					importanceSums[name] += math.Abs(contribution)
					importanceCounts[name]++
				}
			}
		}

		if len(predictions) == 0 {
			return nil, errors.EmptyInput("predictions for target " + metric.String())
		}
		if len(predictions) != len(properties) {
			return nil, errors.ValidationError(
				"concatenated predictions for " + metric.String() + " do not align with properties")
		}

		summary, err := m.calc.Summarize(predictions)
		if err != nil {
			return nil, errors.Wrapf(err, "summarizing target %s", metric)
		}

		geospatial := buildGeospatialSummary(predictions, properties, summary.Mean)

		targets[metric] = &market.TargetResult{
			Target:            metric,
			Predictions:       predictions,
			Confidences:       confidences,
			FeatureImportance: rankFeatureImportances(importanceSums, importanceCounts),
			Summary:           summary,
			Geospatial:        geospatial,
			QualityScore:      qualityScore(confidences, summary),
		}
	}
	return targets, nil
}

// rankFeatureImportances converts accumulated absolute SHAP magnitudes into
// a descending importance listing.
func rankFeatureImportances(sums map[string]float64, counts map[string]int) []market.FeatureImportance {
	importances := make([]market.FeatureImportance, 0, len(sums))
	for feature, sum := range sums {
		importances = append(importances, market.FeatureImportance{
			Feature:    feature,
			Importance: sum / float64(counts[feature]),
			Category:   categorizeFeature(feature),
		})
	}
	sort.SliceStable(importances, func(i, j int) bool {
		if importances[i].Importance != importances[j].Importance {
			return importances[i].Importance > importances[j].Importance
		}
		return importances[i].Feature < importances[j].Feature
	})
	return importances
}

// categorizeFeature maps a feature name onto a coarse explanation category
func categorizeFeature(name string) string {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "fsa", "lat", "lng", "longitude", "distance", "transit", "school"):
		return "location"
	case containsAny(lower, "area", "sqft", "bedroom", "bathroom", "room", "lot", "size"):
		return "size"
	case containsAny(lower, "age", "condition", "renovat", "quality", "built"):
		return "quality"
	case containsAny(lower, "price", "yield", "tax", "market", "days", "income"):
		return "market"
	default:
		return "other"
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// buildGeospatialSummary rolls one target's predictions up by area and
// flags the areas deviating most from the overall mean as hotspots.
func buildGeospatialSummary(predictions []float64, properties []market.PropertyRecord, overallMean float64) market.GeospatialSummary {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, p := range properties {
		if p.FSA == "" {
			continue
		}
		sums[p.FSA] += predictions[i]
		counts[p.FSA]++
	}

	fsas := make([]string, 0, len(sums))
	for fsa := range sums {
		fsas = append(fsas, fsa)
	}
	sort.Strings(fsas)

	areas := make([]market.AreaDistribution, 0, len(fsas))
	areaMeans := make([]float64, 0, len(fsas))
	for _, fsa := range fsas {
		mean := sums[fsa] / float64(counts[fsa])
		areas = append(areas, market.AreaDistribution{FSA: fsa, Count: counts[fsa], Mean: mean})
		areaMeans = append(areaMeans, mean)
	}

	hotspots := make([]market.HotspotArea, 0, len(areas))
	for _, area := range areas {
		hotspots = append(hotspots, market.HotspotArea{
			FSA:       area.FSA,
			Mean:      area.Mean,
			Deviation: math.Abs(area.Mean - overallMean),
		})
	}
	sort.SliceStable(hotspots, func(i, j int) bool {
		if hotspots[i].Deviation != hotspots[j].Deviation {
			return hotspots[i].Deviation > hotspots[j].Deviation
		}
		return hotspots[i].FSA < hotspots[j].FSA
	})
	if len(hotspots) > hotspotLimit {
		hotspots = hotspots[:hotspotLimit]
	}

	return market.GeospatialSummary{
		Areas:              areas,
		GeographicVariance: populationVariance(areaMeans),
		Hotspots:           hotspots,
	}
}

// qualityScore blends mean confidence with prediction stability into 0-100.
// Variability is the coefficient of variation clamped to [0, 1]; a
// zero-mean sequence with any spread counts as maximally variable.
func qualityScore(confidences []float64, summary market.StatisticalSummary) float64 {
	meanConf := 0.0
	for _, c := range confidences {
		meanConf += c
	}
	if len(confidences) > 0 {
		meanConf /= float64(len(confidences))
	}

	variability := 0.0
	switch {
	case summary.StdDev == 0:
		variability = 0
	case summary.Mean == 0:
		variability = 1
	default:
		variability = math.Min(summary.StdDev/math.Abs(summary.Mean), 1.0)
	}

	score := 100 * (qualityConfidenceWeight*meanConf + qualityStabilityWeight*(1-variability))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func populationVariance(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return variance / float64(n)
}
