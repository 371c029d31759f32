package ports

import (
	"context"

	"propmerge/domain/market"
)

// NeighborIndex answers nearest-neighbor queries over a property set.
// The default implementation is a brute-force O(n^2) scan; the interface
// exists so a spatial index or sampling strategy can replace it without
// changing the geographic analyzer's contract.
type NeighborIndex interface {
	// NearestNeighborDistances returns, for each property, the minimum
	// haversine distance in kilometers to any other property in props.
	NearestNeighborDistances(ctx context.Context, props []market.PropertyRecord) ([]float64, error)
}
