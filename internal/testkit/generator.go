// Package testkit builds seeded synthetic portfolios for tests and local
// experimentation. Same seed, same data.
package testkit

import (
	"fmt"
	"math/rand"

	"propmerge/domain/market"
)

// Toronto-ish FSAs so area grouping and regional trends have something to chew on
var sampleFSAs = []string{"M5V", "M4W", "M6G", "K1A", "K2P", "L4C"}

// Generator produces deterministic synthetic market data
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Properties generates n records spread across the sample areas, with the
// standard required features populated.
func (g *Generator) Properties(n int) []market.PropertyRecord {
	props := make([]market.PropertyRecord, n)
	for i := range props {
		fsa := sampleFSAs[i%len(sampleFSAs)]
		price := 450000 + g.rng.Float64()*900000
		props[i] = market.PropertyRecord{
			FSA:       fsa,
			Latitude:  43.6 + g.rng.Float64()*0.4,
			Longitude: -79.5 + g.rng.Float64()*0.4,
			Features: map[string]float64{
				market.FeaturePrice:      price,
				market.FeatureLivingArea: 600 + g.rng.Float64()*2400,
				market.FeatureBedrooms:   float64(1 + g.rng.Intn(4)),
				market.FeatureBathrooms:  float64(1 + g.rng.Intn(3)),
				market.FeatureAge:        g.rng.Float64() * 60,
			},
		}
	}
	return props
}

// Responses splits the portfolio into parts contiguous chunks and builds one
// prediction response per chunk, keyed so that sorted call order reassembles
// the original property order.
func (g *Generator) Responses(props []market.PropertyRecord, parts int) map[string]*market.PredictionResponse {
	if parts < 1 {
		parts = 1
	}
	if parts > len(props) {
		parts = len(props)
	}
	responses := make(map[string]*market.PredictionResponse, parts)
	chunk := (len(props) + parts - 1) / parts
	for p := 0; p < parts; p++ {
		lo := p * chunk
		hi := lo + chunk
		if hi > len(props) {
			hi = len(props)
		}
		if lo >= hi {
			break
		}
		responses[fmt.Sprintf("call-%03d", p)] = g.response(props[lo:hi])
	}
	return responses
}

func (g *Generator) response(props []market.PropertyRecord) *market.PredictionResponse {
	targets := make(map[market.TargetMetric]market.TargetPrediction, 4)
	for _, metric := range market.AllTargets() {
		targets[metric] = g.targetPrediction(metric, props)
	}
	return &market.PredictionResponse{
		Targets:          targets,
		ProcessingTimeMs: 40 + g.rng.Float64()*160,
		ModelVersion:     "xgb-2.3.1",
		Cached:           g.rng.Float64() < 0.5,
	}
}

func (g *Generator) targetPrediction(metric market.TargetMetric, props []market.PropertyRecord) market.TargetPrediction {
	n := len(props)
	predictions := make([]float64, n)
	confidences := make([]float64, n)
	features := market.DefaultRequiredFeatures()
	values := make([][]float64, n)

	for i := range props {
		switch metric {
		case market.TargetTimeOnMarket:
			predictions[i] = 12 + g.rng.Float64()*70
		case market.TargetPriceDelta:
			predictions[i] = -20000 + g.rng.Float64()*60000
		case market.TargetRentalYield:
			predictions[i] = 0.025 + g.rng.Float64()*0.05
		case market.TargetInvestmentScore:
			predictions[i] = 25 + g.rng.Float64()*70
		default:
			predictions[i] = g.rng.Float64()
		}
		confidences[i] = 0.6 + g.rng.Float64()*0.35

		row := make([]float64, len(features))
		for f := range row {
			row[f] = -1 + g.rng.Float64()*2
		}
		values[i] = row
	}

	return market.TargetPrediction{
		Predictions: predictions,
		Confidences: confidences,
		Explanation: &market.ShapExplanation{
			FeatureNames: features,
			Values:       values,
			BaseValue:    g.rng.Float64() * 10,
		},
	}
}
