package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmerge/domain/market"
	"propmerge/internal/errors"
	"propmerge/internal/logging"
	"propmerge/internal/testkit"
)

func newTestMerger() *Merger {
	return NewMerger(DefaultOptions(), logging.Nop())
}

func TestMerge_EndToEnd(t *testing.T) {
	gen := testkit.NewGenerator(42)
	props := gen.Properties(60)
	responses := gen.Responses(props, 3)

	result, err := newTestMerger().Merge(context.Background(), responses, props, "analysis-e2e")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "analysis-e2e", result.AnalysisID.String())
	require.Len(t, result.Targets, 4)
	for _, metric := range market.AllTargets() {
		tr, ok := result.Targets[metric]
		require.True(t, ok, "missing target %s", metric)
		assert.Equal(t, 60, tr.Summary.Count)
		assert.Len(t, tr.Predictions, 60)
		assert.Len(t, tr.Confidences, 60)
		assert.NotEmpty(t, tr.FeatureImportance)
		assert.GreaterOrEqual(t, tr.QualityScore, 0.0)
		assert.LessOrEqual(t, tr.QualityScore, 100.0)
	}

	assert.Equal(t, 60, result.Combined.PropertyCount)
	assert.Greater(t, result.Combined.FSACoverage, 0.0)
	assert.InDelta(t, 1.0, result.Combined.DataCompleteness, 1e-9)

	assert.Len(t, result.Benchmark.ResponseTimesMs, 3)
	assert.Len(t, result.Benchmark.ModelVersions, 3)
	assert.GreaterOrEqual(t, result.Benchmark.CacheHitRatio, 0.0)
	assert.LessOrEqual(t, result.Benchmark.CacheHitRatio, 1.0)

	assert.NotEmpty(t, result.Insights.MarketSummary)
	assert.NotEmpty(t, result.Insights.PredictiveTrends)
	assert.NotEmpty(t, result.Fingerprint)
	assert.NotEmpty(t, result.Geographic.Areas)
}

func TestMerge_Deterministic(t *testing.T) {
	gen := testkit.NewGenerator(7)
	props := gen.Properties(30)
	responses := gen.Responses(props, 2)

	m := newTestMerger()
	first, err := m.Merge(context.Background(), responses, props, "analysis-repeat")
	require.NoError(t, err)
	second, err := m.Merge(context.Background(), responses, props, "analysis-repeat")
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.CombinedRanking.Entries, second.CombinedRanking.Entries)
	assert.Equal(t, first.Insights.KeyFindings, second.Insights.KeyFindings)
}

func TestMerge_EmptyResponses(t *testing.T) {
	gen := testkit.NewGenerator(1)
	props := gen.Properties(10)

	_, err := newTestMerger().Merge(context.Background(), nil, props, "")
	require.Error(t, err)
	assert.Equal(t, errors.CodeMergeFailed, errors.GetCode(err))
	assert.Contains(t, err.Error(), "validate")
}

func TestMerge_EmptyProperties(t *testing.T) {
	gen := testkit.NewGenerator(2)
	props := gen.Properties(10)
	responses := gen.Responses(props, 1)

	_, err := newTestMerger().Merge(context.Background(), responses, nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "properties")
}

func TestMerge_MalformedResponse(t *testing.T) {
	gen := testkit.NewGenerator(3)
	props := gen.Properties(12)
	responses := gen.Responses(props, 1)

	for _, r := range responses {
		tp := r.Targets[market.TargetRentalYield]
		tp.Confidences = tp.Confidences[:len(tp.Confidences)-1]
		r.Targets[market.TargetRentalYield] = tp
	}

	_, err := newTestMerger().Merge(context.Background(), responses, props, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate")
}

func TestMerge_MisalignedPredictions(t *testing.T) {
	gen := testkit.NewGenerator(4)
	props := gen.Properties(20)
	responses := gen.Responses(props[:15], 1)

	_, err := newTestMerger().Merge(context.Background(), responses, props, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
}

func TestMerge_GeneratesAnalysisID(t *testing.T) {
	gen := testkit.NewGenerator(5)
	props := gen.Properties(16)
	responses := gen.Responses(props, 2)

	result, err := newTestMerger().Merge(context.Background(), responses, props, "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AnalysisID.String())
}

func TestRankings_PermutationAndBuckets(t *testing.T) {
	gen := testkit.NewGenerator(9)
	props := gen.Properties(40)
	responses := gen.Responses(props, 2)

	result, err := newTestMerger().Merge(context.Background(), responses, props, "analysis-rank")
	require.NoError(t, err)

	checkRanking := func(ranking market.PropertyRanking) {
		t.Helper()
		require.Len(t, ranking.Entries, 40)

		seen := make(map[int]bool, 40)
		buckets := make(map[market.RankCategory]int)
		for i, entry := range ranking.Entries {
			assert.Equal(t, i+1, entry.Rank)
			assert.False(t, seen[entry.Rank], "duplicate rank %d in %s", entry.Rank, ranking.Metric)
			seen[entry.Rank] = true
			buckets[entry.Category]++
		}
		assert.Equal(t, 100.0, ranking.Entries[0].Percentile)
		assert.Equal(t, 0.0, ranking.Entries[len(ranking.Entries)-1].Percentile)

		total := 0
		for _, count := range buckets {
			total += count
		}
		assert.Equal(t, 40, total, "buckets must partition the ranking")
	}

	for _, metric := range market.AllTargets() {
		checkRanking(result.Rankings[metric])
	}
	checkRanking(result.CombinedRanking)
}

func TestRankings_TimeOnMarketAscending(t *testing.T) {
	gen := testkit.NewGenerator(11)
	props := gen.Properties(25)
	responses := gen.Responses(props, 1)

	result, err := newTestMerger().Merge(context.Background(), responses, props, "analysis-tom")
	require.NoError(t, err)

	tom := result.Rankings[market.TargetTimeOnMarket]
	require.True(t, tom.Ascending)
	for i := 1; i < len(tom.Entries); i++ {
		assert.LessOrEqual(t, tom.Entries[i-1].Value, tom.Entries[i].Value,
			"time on market ranking must order fastest sellers first")
	}

	invest := result.Rankings[market.TargetInvestmentScore]
	require.False(t, invest.Ascending)
	for i := 1; i < len(invest.Entries); i++ {
		assert.GreaterOrEqual(t, invest.Entries[i-1].Value, invest.Entries[i].Value)
	}
}

func TestCombinedScores_FlatSeriesIsNeutral(t *testing.T) {
	m := newTestMerger()
	n := 4
	targets := make(map[market.TargetMetric]*market.TargetResult, 4)
	for _, metric := range market.AllTargets() {
		flat := make([]float64, n)
		for i := range flat {
			flat[i] = 10
		}
		targets[metric] = &market.TargetResult{Target: metric, Predictions: flat}
	}

	scores, err := m.combinedScores(targets, n)
	require.NoError(t, err)
	for _, s := range scores {
		assert.InDelta(t, 0.5, s, 1e-9)
	}
}

func TestCombinedScores_MissingTarget(t *testing.T) {
	m := newTestMerger()
	targets := map[market.TargetMetric]*market.TargetResult{
		market.TargetRentalYield: {Target: market.TargetRentalYield, Predictions: []float64{1, 2}},
	}
	_, err := m.combinedScores(targets, 2)
	require.Error(t, err)
}

func TestQualityScore_Bounds(t *testing.T) {
	summary := market.StatisticalSummary{Mean: 100, StdDev: 0}
	assert.InDelta(t, 100, qualityScore([]float64{1, 1, 1}, summary), 1e-9)

	volatile := market.StatisticalSummary{Mean: 10, StdDev: 500}
	assert.InDelta(t, 0, qualityScore([]float64{0, 0}, volatile), 1e-9)
}

func TestDataCompleteness_MissingFeatures(t *testing.T) {
	props := []market.PropertyRecord{
		{FSA: "M5V", Features: map[string]float64{market.FeaturePrice: 500000}},
		{FSA: "M5V", Features: map[string]float64{}},
	}
	got := dataCompleteness(props, []string{market.FeaturePrice, market.FeatureAge})
	assert.InDelta(t, 0.25, got, 1e-9)
}
