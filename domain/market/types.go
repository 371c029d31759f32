package market

import (
	"fmt"
	"math"
	"strings"
)

// ============================================================================
// TARGET METRICS (Canonical, fixed set)
// ============================================================================

// TargetMetric identifies one of the four predicted market metrics
type TargetMetric string

const (
	TargetTimeOnMarket    TargetMetric = "time_on_market"   // Days until sale (lower is better)
	TargetPriceDelta      TargetMetric = "price_delta"      // Predicted price change (%)
	TargetRentalYield     TargetMetric = "rental_yield"     // Annual rental yield (fraction)
	TargetInvestmentScore TargetMetric = "investment_score" // Composite score (0-100)
)

// AllTargets returns the fixed target set in canonical order.
// Extraction, correlation and ranking all iterate in this order so
// merged results are deterministic.
func AllTargets() []TargetMetric {
	return []TargetMetric{
		TargetTimeOnMarket,
		TargetPriceDelta,
		TargetRentalYield,
		TargetInvestmentScore,
	}
}

// String returns the metric name
func (t TargetMetric) String() string { return string(t) }

// LowerIsBetter reports whether smaller predictions rank higher for this metric
func (t TargetMetric) LowerIsBetter() bool { return t == TargetTimeOnMarket }

// Well-known property feature names
const (
	FeaturePrice      = "price"
	FeatureLivingArea = "living_area"
	FeatureBedrooms   = "bedrooms"
	FeatureBathrooms  = "bathrooms"
	FeatureAge        = "age"
)

// DefaultRequiredFeatures lists the fields counted toward data completeness
func DefaultRequiredFeatures() []string {
	return []string{FeaturePrice, FeatureLivingArea, FeatureBedrooms, FeatureBathrooms, FeatureAge}
}

// ============================================================================
// PROPERTY RECORDS
// ============================================================================

// PropertyRecord is one property observation, aligned positionally with the
// per-target prediction sequences. Created upstream; read-only to the merger.
type PropertyRecord struct {
	FSA       string             `json:"fsa"` // Forward Sortation Area (first 3 postal characters)
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Features  map[string]float64 `json:"features"` // price, living_area, bedrooms, ...
}

// Key derives the ranking identity of a property from its coordinates
func (p PropertyRecord) Key() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

// Feature looks up a numeric feature, reporting whether it is present and finite
func (p PropertyRecord) Feature(name string) (float64, bool) {
	v, ok := p.Features[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Region returns the coarse region key (first FSA character), or "" when unknown
func (p PropertyRecord) Region() string {
	if p.FSA == "" {
		return ""
	}
	return strings.ToUpper(p.FSA[:1])
}

// ============================================================================
// SHAP EXPLANATIONS
// ============================================================================

// ShapExplanation is a schema-validated per-target explanation payload:
// one contribution row per property, one column per feature.
type ShapExplanation struct {
	FeatureNames []string    `json:"feature_names"`
	Values       [][]float64 `json:"shap_values"`
	BaseValue    float64     `json:"base_value,omitempty"`
}

// Validate checks the explanation shape: non-empty feature list and every
// contribution row exactly as wide as the feature list.
func (e *ShapExplanation) Validate() error {
	if e == nil {
		return fmt.Errorf("explanation is missing")
	}
	if len(e.FeatureNames) == 0 {
		return fmt.Errorf("explanation has no feature names")
	}
	for i, row := range e.Values {
		if len(row) != len(e.FeatureNames) {
			return fmt.Errorf("explanation row %d has %d values, want %d", i, len(row), len(e.FeatureNames))
		}
	}
	return nil
}

// FeatureImportance is one aggregated feature contribution, ranked by magnitude
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"` // Mean absolute SHAP magnitude
	Category   string  `json:"category"`   // location, size, quality, market, other
}

// ============================================================================
// PREDICTION RESPONSES (merger input)
// ============================================================================

// TargetPrediction is one call's output for a single target metric
type TargetPrediction struct {
	Predictions []float64        `json:"predictions"`
	Confidences []float64        `json:"confidence_scores"`
	Explanation *ShapExplanation `json:"explanation"`
}

// Validate enforces the minimum shape a response slice must have
func (t *TargetPrediction) Validate() error {
	if len(t.Predictions) == 0 {
		return fmt.Errorf("predictions are missing")
	}
	if len(t.Confidences) != len(t.Predictions) {
		return fmt.Errorf("got %d confidence scores for %d predictions", len(t.Confidences), len(t.Predictions))
	}
	if err := t.Explanation.Validate(); err != nil {
		return err
	}
	return nil
}

// PredictionResponse is the resolved output of one model-serving call.
// The merger treats it as an opaque, already-resolved value; it never
// orchestrates the calls themselves.
type PredictionResponse struct {
	Targets          map[TargetMetric]TargetPrediction `json:"targets"`
	ProcessingTimeMs float64                           `json:"processing_time_ms"`
	ModelVersion     string                            `json:"model_version"`
	Cached           bool                              `json:"cached"`
}

// Validate checks the response carries at least one well-formed target slice
func (r *PredictionResponse) Validate() error {
	if r == nil || len(r.Targets) == 0 {
		return fmt.Errorf("response has no target predictions")
	}
	for metric, tp := range r.Targets {
		if err := tp.Validate(); err != nil {
			return fmt.Errorf("target %s: %w", metric, err)
		}
	}
	return nil
}
