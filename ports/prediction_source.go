package ports

import (
	"context"

	"propmerge/domain/market"
)

// PredictionSource supplies the already-resolved per-call prediction
// responses a merge consumes, keyed by call identifier. The merger never
// orchestrates the model calls itself.
type PredictionSource interface {
	FetchResponses(ctx context.Context) (map[string]*market.PredictionResponse, error)
}
