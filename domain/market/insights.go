package market

import "propmerge/domain/core"

// RecommendationAction is the investment stance for an area
type RecommendationAction string

const (
	ActionBuy   RecommendationAction = "buy"
	ActionHold  RecommendationAction = "hold"
	ActionAvoid RecommendationAction = "avoid"
)

// Recommendation is one area-level investment suggestion
type Recommendation struct {
	FSA             string               `json:"fsa"`
	Action          RecommendationAction `json:"action"`
	InvestmentScore float64              `json:"investment_score"`
	RentalYield     float64              `json:"rental_yield"`
	Rationale       string               `json:"rationale"`
}

// RiskSeverity grades one risk factor
type RiskSeverity string

const (
	SeverityLow      RiskSeverity = "low"
	SeverityModerate RiskSeverity = "moderate"
	SeverityHigh     RiskSeverity = "high"
)

// RiskFactor is one named contributor to the aggregate risk score
type RiskFactor struct {
	Name     string       `json:"name"`
	Severity RiskSeverity `json:"severity"`
	Detail   string       `json:"detail"`
}

// RiskAssessment aggregates risk factors into a 0-100 score
type RiskAssessment struct {
	Score   float64      `json:"score"` // 0 = low risk, 100 = high risk
	Level   RiskSeverity `json:"level"`
	Factors []RiskFactor `json:"factors"`
}

// TrendStatement is a per-metric predictive statement
type TrendStatement struct {
	Metric    TargetMetric   `json:"metric"`
	Direction TrendDirection `json:"direction"`
	Statement string         `json:"statement"`
}

// OutlierProperty is a property flagged by standardized score
type OutlierProperty struct {
	PropertyKey string  `json:"property_key"`
	FSA         string  `json:"fsa"`
	ZScore      float64 `json:"z_score"`
	Price       float64 `json:"price"`
}

// MarketSegment is an illustrative slice of the portfolio
type MarketSegment struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
}

// ComparativeAnalysis contrasts the portfolio's extremes
type ComparativeAnalysis struct {
	BestArea  string            `json:"best_area"`
	WorstArea string            `json:"worst_area"`
	Outliers  []OutlierProperty `json:"outliers"` // |z| > 2 on price
	Segments  []MarketSegment   `json:"segments"`
}

// Insights is the structured narrative derived from a merged result
type Insights struct {
	MarketSummary    string              `json:"market_summary"`
	KeyFindings      []string            `json:"key_findings"`
	Recommendations  []Recommendation    `json:"recommendations"`
	Risk             RiskAssessment      `json:"risk_assessment"`
	PredictiveTrends []TrendStatement    `json:"predictive_trends"`
	Comparative      ComparativeAnalysis `json:"comparative_analysis"`
	GeneratedAt      core.Timestamp      `json:"generated_at"`
}
