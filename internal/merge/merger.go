package merge

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"propmerge/domain/core"
	"propmerge/domain/market"
	"propmerge/internal/correlation"
	"propmerge/internal/errors"
	"propmerge/internal/geo"
	"propmerge/internal/stats"
	"propmerge/ports"
)

// Stage names carried in merge-failure wrapping so a caller can localize
// which step broke.
const (
	stageValidate    = "validate"
	stageExtract     = "extract"
	stageCombined    = "combined_statistics"
	stageCorrelation = "correlation"
	stageGeographic  = "geographic"
	stageRankings    = "rankings"
	stageBenchmark   = "benchmark"
	stageInsights    = "insights"
	stageFinalize    = "finalize"
)

// defaultFSAUniverseSize approximates the number of Forward Sortation Areas
// in Canada, the denominator for coverage reporting.
const defaultFSAUniverseSize = 1620

// RiskThresholds hold the cut points the risk assessment reacts to
type RiskThresholds struct {
	PriceVolatilityCV float64 // Coefficient of variation on price-delta predictions
	SlowMarketDays    float64 // Mean time-on-market above this is a risk factor
	MinCompleteness   float64 // Data completeness below this is a risk factor
}

// DefaultRiskThresholds returns the standard risk cut points
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		PriceVolatilityCV: 0.25,
		SlowMarketDays:    45,
		MinCompleteness:   0.8,
	}
}

// Options configure a Merger. Zero values fall back to defaults.
type Options struct {
	FSAUniverseSize  int
	RequiredFeatures []string
	CombinedWeights  market.CombinedScoreWeights
	Performance      geo.PerformancePolicy
	Risk             RiskThresholds
	Index            ports.NeighborIndex
}

// DefaultOptions returns the standard merger configuration
func DefaultOptions() Options {
	return Options{
		FSAUniverseSize:  defaultFSAUniverseSize,
		RequiredFeatures: market.DefaultRequiredFeatures(),
		CombinedWeights:  market.DefaultCombinedScoreWeights(),
		Performance:      geo.DefaultPerformancePolicy(),
		Risk:             DefaultRiskThresholds(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FSAUniverseSize <= 0 {
		o.FSAUniverseSize = d.FSAUniverseSize
	}
	if len(o.RequiredFeatures) == 0 {
		o.RequiredFeatures = d.RequiredFeatures
	}
	if o.CombinedWeights == (market.CombinedScoreWeights{}) {
		o.CombinedWeights = d.CombinedWeights
	}
	if o.Performance == (geo.PerformancePolicy{}) {
		o.Performance = d.Performance
	}
	if o.Risk == (RiskThresholds{}) {
		o.Risk = d.Risk
	}
	if o.Index == nil {
		o.Index = geo.NewBruteForceIndex()
	}
	return o
}

// Merger fuses independent per-target prediction responses into one
// immutable analytical result. A single synchronous computation: no shared
// mutable state beyond local accumulators, no retries.
type Merger struct {
	opts         Options
	calc         *stats.Calculator
	correlations *correlation.Analyzer
	geographic   *geo.Analyzer
	logger       zerolog.Logger
}

// NewMerger creates a merger with explicit options and logger
func NewMerger(opts Options, logger zerolog.Logger) *Merger {
	opts = opts.withDefaults()
	return &Merger{
		opts:         opts,
		calc:         stats.NewCalculator(),
		correlations: correlation.NewAnalyzer(),
		geographic:   geo.NewAnalyzer(opts.Index, opts.Performance),
		logger:       logger,
	}
}

// Merge validates the inputs and runs the full fusion pipeline.
// It either fully succeeds and returns one immutable result, or fully fails
// with the offending stage named in the error.
func (m *Merger) Merge(ctx context.Context, responses map[string]*market.PredictionResponse, properties []market.PropertyRecord, analysisID string) (*market.MergedAnalysisResult, error) {
	start := time.Now()

	if err := validateInputs(responses, properties); err != nil {
		return nil, errors.MergeFailed(stageValidate, err)
	}

	if analysisID == "" {
		analysisID = core.NewAnalysisID().String()
	}
	m.logger.Info().
		Str("analysis_id", analysisID).
		Int("responses", len(responses)).
		Int("properties", len(properties)).
		Msg("starting merge")

	callIDs := sortedCallIDs(responses)

	targets, err := m.extractTargets(callIDs, responses, properties)
	if err != nil {
		return nil, errors.MergeFailed(stageExtract, err)
	}

	combined, err := m.combinedStatistics(targets, properties)
	if err != nil {
		return nil, errors.MergeFailed(stageCombined, err)
	}

	series := make(map[market.TargetMetric][]float64, len(targets))
	for metric, tr := range targets {
		series[metric] = tr.Predictions
	}

	correlations, err := m.correlations.Analyze(ctx, series)
	if err != nil {
		return nil, errors.MergeFailed(stageCorrelation, err)
	}

	geographic, err := m.geographic.Analyze(ctx, series, properties)
	if err != nil {
		return nil, errors.MergeFailed(stageGeographic, err)
	}

	rankings, combinedRanking, err := m.buildRankings(targets, properties)
	if err != nil {
		return nil, errors.MergeFailed(stageRankings, err)
	}

	benchmark := m.buildBenchmark(callIDs, responses, properties, targets, start)

	insights, err := m.generateInsights(targets, combined, correlations, geographic, properties)
	if err != nil {
		return nil, errors.MergeFailed(stageInsights, err)
	}

	result := &market.MergedAnalysisResult{
		AnalysisID:      core.AnalysisID(analysisID),
		Targets:         targets,
		Combined:        combined,
		Correlations:    correlations,
		Geographic:      geographic,
		Rankings:        rankings,
		CombinedRanking: combinedRanking,
		Benchmark:       benchmark,
		Insights:        insights,
		Fingerprint:     resultFingerprint(analysisID, targets, properties),
		CreatedAt:       core.Now(),
	}
	if err := result.Validate(); err != nil {
		return nil, errors.MergeFailed(stageFinalize, err)
	}

	m.logger.Info().
		Str("analysis_id", analysisID).
		Float64("duration_ms", benchmark.TotalDurationMs).
		Msg("merge complete")
	return result, nil
}

// validateInputs fails fast before any computation, naming the offender
func validateInputs(responses map[string]*market.PredictionResponse, properties []market.PropertyRecord) error {
	if len(responses) == 0 {
		return errors.EmptyInput("responses")
	}
	if len(properties) == 0 {
		return errors.EmptyInput("properties")
	}
	for callID, response := range responses {
		if err := response.Validate(); err != nil {
			return errors.MalformedResponse(callID, err.Error())
		}
	}
	return nil
}

// sortedCallIDs fixes the response iteration order so concatenation and
// benchmarks are deterministic.
func sortedCallIDs(responses map[string]*market.PredictionResponse) []string {
	ids := make([]string, 0, len(responses))
	for id := range responses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// resultFingerprint derives a deterministic identity for the merged result
func resultFingerprint(analysisID string, targets map[market.TargetMetric]*market.TargetResult, properties []market.PropertyRecord) core.Hash {
	parts := []string{analysisID, fmt.Sprintf("n=%d", len(properties))}
	for _, metric := range market.AllTargets() {
		if tr, ok := targets[metric]; ok {
			parts = append(parts, fmt.Sprintf("%s:%.9f", metric, tr.Summary.Mean))
		}
	}
	return core.ComputeFingerprint(parts...)
}
