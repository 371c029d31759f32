package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

func testProperties() []market.PropertyRecord {
	return []market.PropertyRecord{
		{FSA: "A1", Latitude: 43.65, Longitude: -79.38, Features: map[string]float64{market.FeaturePrice: 850000}},
		{FSA: "A1", Latitude: 43.66, Longitude: -79.39, Features: map[string]float64{market.FeaturePrice: 920000}},
		{FSA: "B2", Latitude: 43.70, Longitude: -79.42, Features: map[string]float64{market.FeaturePrice: 610000}},
		{FSA: "B2", Latitude: 43.71, Longitude: -79.43, Features: map[string]float64{market.FeaturePrice: 580000}},
	}
}

func TestAnalyze_AreaRanking(t *testing.T) {
	analyzer := NewAnalyzer(NewBruteForceIndex(), DefaultPerformancePolicy())

	// Investment scores only: area performance falls back to the raw
	// investment mean
	predictions := map[market.TargetMetric][]float64{
		market.TargetInvestmentScore: {80, 80, 20, 20},
	}

	analysis, err := analyzer.Analyze(context.Background(), predictions, testProperties())
	require.NoError(t, err)
	require.Len(t, analysis.Areas, 2)

	top := analysis.Areas[0]
	assert.Equal(t, "A1", top.FSA)
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, "B2", analysis.Areas[1].FSA)
	assert.Equal(t, 2, analysis.Areas[1].Rank)

	assert.Contains(t,
		[]market.PerformanceBand{market.BandGood, market.BandExcellent},
		top.Performance)
	assert.Equal(t, market.BandPoor, analysis.Areas[1].Performance)
}

func TestAnalyze_BlendedPerformanceScore(t *testing.T) {
	analyzer := NewAnalyzer(NewBruteForceIndex(), DefaultPerformancePolicy())

	predictions := map[market.TargetMetric][]float64{
		market.TargetInvestmentScore: {80, 80, 20, 20},
		market.TargetRentalYield:     {0.06, 0.06, 0.03, 0.03},
	}

	analysis, err := analyzer.Analyze(context.Background(), predictions, testProperties())
	require.NoError(t, err)

	// 0.6*80 + 40*0.06 = 50.4
	assert.InDelta(t, 50.4, analysis.Areas[0].PerformanceScore, 1e-9)
	assert.Equal(t, market.BandAverage, analysis.Areas[0].Performance)
}

func TestAnalyze_GeographicCenters(t *testing.T) {
	analyzer := NewAnalyzer(NewBruteForceIndex(), DefaultPerformancePolicy())

	predictions := map[market.TargetMetric][]float64{
		market.TargetInvestmentScore: {80, 80, 20, 20},
		market.TargetRentalYield:     {0.06, 0.06, 0.03, 0.03},
	}

	analysis, err := analyzer.Analyze(context.Background(), predictions, testProperties())
	require.NoError(t, err)

	for _, area := range analysis.Areas {
		if area.FSA == "A1" {
			assert.InDelta(t, 43.655, area.Center.Latitude, 1e-9)
			assert.InDelta(t, -79.385, area.Center.Longitude, 1e-9)
		}
	}
}

func TestAnalyze_IdenticalCoordinates(t *testing.T) {
	analyzer := NewAnalyzer(NewBruteForceIndex(), DefaultPerformancePolicy())

	props := []market.PropertyRecord{
		{FSA: "C3", Latitude: 45.0, Longitude: -75.0, Features: map[string]float64{market.FeaturePrice: 500000}},
		{FSA: "C3", Latitude: 45.0, Longitude: -75.0, Features: map[string]float64{market.FeaturePrice: 520000}},
		{FSA: "C3", Latitude: 45.0, Longitude: -75.0, Features: map[string]float64{market.FeaturePrice: 480000}},
	}
	predictions := map[market.TargetMetric][]float64{
		market.TargetInvestmentScore: {50, 55, 45},
		market.TargetRentalYield:     {0.05, 0.05, 0.05},
	}

	analysis, err := analyzer.Analyze(context.Background(), predictions, props)
	require.NoError(t, err)

	for _, d := range analysis.Spatial.NearestNeighborKm {
		assert.InDelta(t, 0.0, d, 1e-9)
	}
	assert.InDelta(t, 1.0, analysis.Spatial.ClusteringCoefficient, 1e-12)
	assert.InDelta(t, 0.0, analysis.Spatial.DispersalIndex, 1e-12)
}

func TestAnalyze_EmptySubsetFails(t *testing.T) {
	analyzer := NewAnalyzer(NewBruteForceIndex(), DefaultPerformancePolicy())

	props := []market.PropertyRecord{
		{FSA: "A1", Latitude: 43.65, Longitude: -79.38},
		{FSA: "B2", Latitude: 43.70, Longitude: -79.42},
	}
	// B2's only value is NaN-free but A1's is NaN, so A1 has no finite
	// values for the metric
	nan := func() float64 { var z float64; return z / z }()
	predictions := map[market.TargetMetric][]float64{
		market.TargetInvestmentScore: {nan, 60},
	}

	_, err := analyzer.Analyze(context.Background(), predictions, props)
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptySubset, errors.GetCode(err))
}

func TestAnalyze_RegionalTrends(t *testing.T) {
	analyzer := NewAnalyzer(NewBruteForceIndex(), DefaultPerformancePolicy())

	props := []market.PropertyRecord{
		{FSA: "M5V", Latitude: 43.64, Longitude: -79.40, Features: map[string]float64{market.FeaturePrice: 900000}},
		{FSA: "M4C", Latitude: 43.69, Longitude: -79.30, Features: map[string]float64{market.FeaturePrice: 750000}},
		{FSA: "K1A", Latitude: 45.42, Longitude: -75.69, Features: map[string]float64{market.FeaturePrice: 500000}},
	}
	predictions := map[market.TargetMetric][]float64{
		market.TargetInvestmentScore: {85, 75, 30},
		market.TargetRentalYield:     {0.05, 0.055, 0.04},
	}

	analysis, err := analyzer.Analyze(context.Background(), predictions, props)
	require.NoError(t, err)
	require.Len(t, analysis.Trends, 2)

	byRegion := make(map[string]market.RegionalTrend)
	for _, trend := range analysis.Trends {
		byRegion[trend.Region] = trend
	}

	assert.Equal(t, market.TrendIncreasing, byRegion["M"].Direction)
	assert.Equal(t, 2, byRegion["M"].FSACount)
	assert.Equal(t, market.TrendDecreasing, byRegion["K"].Direction)
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Toronto to Ottawa is roughly 352 km
	d := Haversine(43.6532, -79.3832, 45.4215, -75.6972)
	assert.InDelta(t, 352, d, 10)
}

func TestBruteForceIndex_TwoPoints(t *testing.T) {
	index := NewBruteForceIndex()

	props := []market.PropertyRecord{
		{Latitude: 43.65, Longitude: -79.38},
		{Latitude: 43.66, Longitude: -79.38},
	}
	distances, err := index.NearestNeighborDistances(context.Background(), props)
	require.NoError(t, err)
	require.Len(t, distances, 2)

	// Each is the other's nearest neighbor
	assert.InDelta(t, distances[0], distances[1], 1e-9)
	assert.Greater(t, distances[0], 1.0)
	assert.Less(t, distances[0], 1.3)
}

func TestClusteringCoefficient_MixedSpread(t *testing.T) {
	// Two tight points far from two other tight points: all four NN
	// distances are small against the mean
	coeff := clusteringCoefficient([]float64{0.1, 0.1, 0.1, 0.1, 10, 10})
	assert.InDelta(t, 4.0/6.0, coeff, 1e-12)
}
