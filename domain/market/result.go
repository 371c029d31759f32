package market

import (
	"fmt"

	"propmerge/domain/core"
)

// ============================================================================
// PER-TARGET RESULTS
// ============================================================================

// AreaDistribution is one area's share of a target's predictions
type AreaDistribution struct {
	FSA   string  `json:"fsa"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// HotspotArea is an area whose mean deviates strongly from the overall mean
type HotspotArea struct {
	FSA       string  `json:"fsa"`
	Mean      float64 `json:"mean"`
	Deviation float64 `json:"deviation"` // |area mean - overall mean|
}

// GeospatialSummary is the per-target geographic rollup
type GeospatialSummary struct {
	Areas              []AreaDistribution `json:"areas"`
	GeographicVariance float64            `json:"geographic_variance"` // Variance of area means
	Hotspots           []HotspotArea      `json:"hotspots"`            // Top 10 by deviation
}

// TargetResult is the merged output for one target metric across all
// contributing calls.
type TargetResult struct {
	Target            TargetMetric        `json:"target"`
	Predictions       []float64           `json:"predictions"`
	Confidences       []float64           `json:"confidence_scores"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	Summary           StatisticalSummary  `json:"summary"`
	Geospatial        GeospatialSummary   `json:"geospatial"`
	QualityScore      float64             `json:"quality_score"` // 0-100
}

// ============================================================================
// COMBINED STATISTICS AND BENCHMARK
// ============================================================================

// CrossTargetSummary holds the means across the four targets
type CrossTargetSummary struct {
	Means          map[TargetMetric]float64 `json:"means"`
	MeanConfidence float64                  `json:"mean_confidence"` // Mean of per-target mean confidences
}

// CombinedStatistics summarizes the merged portfolio as a whole
type CombinedStatistics struct {
	PropertyCount    int                `json:"property_count"`
	FSACoverage      float64            `json:"fsa_coverage"`      // Distinct FSAs / assumed universe
	DataCompleteness float64            `json:"data_completeness"` // Required-field presence, averaged
	CrossTarget      CrossTargetSummary `json:"cross_target"`
}

// PerformanceBenchmark records the merge's own runtime profile plus the
// timings each contributing call reported about itself.
type PerformanceBenchmark struct {
	TotalDurationMs      float64            `json:"total_duration_ms"`
	ResponseTimesMs      map[string]float64 `json:"response_times_ms"` // By call identifier
	CacheHitRatio        float64            `json:"cache_hit_ratio"`   // Cached responses / total
	PropertiesPerSecond  float64            `json:"properties_per_second"`
	PredictionsPerSecond float64            `json:"predictions_per_second"`
	ModelVersions        map[string]string  `json:"model_versions"` // By call identifier
	MeasuredAt           core.Timestamp     `json:"measured_at"`
}

// ============================================================================
// ROOT RESULT
// ============================================================================

// MergedAnalysisResult is the single immutable record a merge produces.
// It has no further lifecycle: re-merging creates a new result.
type MergedAnalysisResult struct {
	AnalysisID      core.AnalysisID                  `json:"analysis_id"`
	Targets         map[TargetMetric]*TargetResult   `json:"targets"`
	Combined        CombinedStatistics               `json:"combined_statistics"`
	Correlations    CorrelationAnalysis              `json:"correlations"`
	Geographic      GeographicAnalysis               `json:"geographic"`
	Rankings        map[TargetMetric]PropertyRanking `json:"rankings"`
	CombinedRanking PropertyRanking                  `json:"combined_ranking"`
	Benchmark       PerformanceBenchmark             `json:"benchmark"`
	Insights        Insights                         `json:"insights"`
	Fingerprint     core.Hash                        `json:"fingerprint"`
	CreatedAt       core.Timestamp                   `json:"created_at"`
}

// Validate checks the structural invariants of an assembled result
func (r *MergedAnalysisResult) Validate() error {
	if r.AnalysisID.String() == "" {
		return fmt.Errorf("analysis ID must be set")
	}
	if len(r.Targets) == 0 {
		return fmt.Errorf("result has no target results")
	}
	for metric, tr := range r.Targets {
		if tr == nil {
			return fmt.Errorf("target %s result is nil", metric)
		}
		if err := tr.Summary.Validate(); err != nil {
			return fmt.Errorf("target %s: %w", metric, err)
		}
	}
	return nil
}
