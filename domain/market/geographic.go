package market

// PerformanceBand is the qualitative label assigned to an area
type PerformanceBand string

const (
	BandExcellent PerformanceBand = "excellent" // score >= 75
	BandGood      PerformanceBand = "good"      // score >= 60
	BandAverage   PerformanceBand = "average"   // score >= 40
	BandPoor      PerformanceBand = "poor"
)

// GeographicCenter is the arithmetic mean coordinate of an area's members
type GeographicCenter struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FSAAnalysis aggregates one Forward Sortation Area.
// Rank is 1-based and assigned only after every area has been scored.
type FSAAnalysis struct {
	FSA              string                              `json:"fsa"`
	PropertyCount    int                                 `json:"property_count"`
	Metrics          map[TargetMetric]StatisticalSummary `json:"metrics"`
	Center           GeographicCenter                    `json:"center"`
	Rank             int                                 `json:"rank"`
	Performance      PerformanceBand                     `json:"performance"`
	PerformanceScore float64                             `json:"performance_score"`
}

// SpatialStatistics holds portfolio-level spatial measures
type SpatialStatistics struct {
	NearestNeighborKm     []float64 `json:"nearest_neighbor_km"`      // Per property, haversine
	MeanNearestNeighborKm float64   `json:"mean_nearest_neighbor_km"` //
	MoranI                float64   `json:"moran_i"`                  // Inverse-distance-weighted autocorrelation over price
	ClusteringCoefficient float64   `json:"clustering_coefficient"`   // Fraction of NN distances < mean/2
	DispersalIndex        float64   `json:"dispersal_index"`          // Var(centroid dist) / mean(centroid dist)
}

// TrendDirection is the qualitative regional movement label
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendStable     TrendDirection = "stable"
	TrendDecreasing TrendDirection = "decreasing"
)

// RegionalTrend describes one coarse region (grouped by the first FSA letter)
type RegionalTrend struct {
	Region             string         `json:"region"`
	Direction          TrendDirection `json:"direction"`
	AvgInvestmentScore float64        `json:"avg_investment_score"`
	Confidence         float64        `json:"confidence"`
	FSACount           int            `json:"fsa_count"`
}

// GeographicAnalysis is the full spatial aggregation output.
// Areas are ordered by rank (1 first).
type GeographicAnalysis struct {
	Areas   []FSAAnalysis     `json:"areas"`
	Spatial SpatialStatistics `json:"spatial"`
	Trends  []RegionalTrend   `json:"regional_trends"`
}

// TopArea returns the rank-1 area, or nil when no areas were analyzed
func (g GeographicAnalysis) TopArea() *FSAAnalysis {
	if len(g.Areas) == 0 {
		return nil
	}
	return &g.Areas[0]
}

// BottomArea returns the last-ranked area, or nil when no areas were analyzed
func (g GeographicAnalysis) BottomArea() *FSAAnalysis {
	if len(g.Areas) == 0 {
		return nil
	}
	return &g.Areas[len(g.Areas)-1]
}
