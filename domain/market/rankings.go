package market

// RankCategory is the coarse percentile bucket of a ranked property
type RankCategory string

const (
	RankTop10    RankCategory = "top_10"    // percentile >= 90
	RankTop25    RankCategory = "top_25"    // percentile >= 75
	RankMedian   RankCategory = "median"    // percentile >= 25
	RankBottom25 RankCategory = "bottom_25" // percentile >= 10
	RankBottom10 RankCategory = "bottom_10"
)

// CategoryForPercentile maps a percentile (100 = best) onto its bucket.
// The five buckets partition [0, 100] with no gaps.
func CategoryForPercentile(percentile float64) RankCategory {
	switch {
	case percentile >= 90:
		return RankTop10
	case percentile >= 75:
		return RankTop25
	case percentile >= 25:
		return RankMedian
	case percentile >= 10:
		return RankBottom25
	default:
		return RankBottom10
	}
}

// RankedProperty is one property's position within a metric ranking
type RankedProperty struct {
	PropertyKey string       `json:"property_key"` // Coordinate-derived identity
	FSA         string       `json:"fsa"`
	Value       float64      `json:"value"`
	Rank        int          `json:"rank"`       // 1-based, 1 = best
	Percentile  float64      `json:"percentile"` // 100 = best
	Category    RankCategory `json:"category"`
}

// PropertyRanking holds every property ranked by one metric.
// INVARIANTS: each property appears exactly once; ranks are a permutation
// of 1..n.
type PropertyRanking struct {
	Metric    string           `json:"metric"` // Target name or "combined_score"
	Ascending bool             `json:"ascending"`
	Entries   []RankedProperty `json:"entries"` // Ordered by rank
}

// CombinedScoreMetric names the blended cross-target ranking
const CombinedScoreMetric = "combined_score"

// CombinedScoreWeights are the fixed blend weights for the combined ranking
type CombinedScoreWeights struct {
	TimeOnMarket    float64 `json:"time_on_market"`
	PriceDelta      float64 `json:"price_delta"`
	RentalYield     float64 `json:"rental_yield"`
	InvestmentScore float64 `json:"investment_score"`
}

// DefaultCombinedScoreWeights returns the standard 0.2/0.3/0.3/0.2 blend
func DefaultCombinedScoreWeights() CombinedScoreWeights {
	return CombinedScoreWeights{
		TimeOnMarket:    0.2,
		PriceDelta:      0.3,
		RentalYield:     0.3,
		InvestmentScore: 0.2,
	}
}
