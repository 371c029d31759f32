package geo

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"propmerge/domain/market"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances
const EarthRadiusKm = 6371.0

// moranNeighborhoodKm bounds the inverse-distance weighting: pairs farther
// apart than this contribute no weight at all.
const moranNeighborhoodKm = 5.0

// moranDistanceOffset keeps the inverse-distance weight finite for
// coincident points.
const moranDistanceOffset = 0.1

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// BruteForceIndex is the reference NeighborIndex: a full O(n^2) scan,
// batched across workers so large portfolios stay bounded.
type BruteForceIndex struct {
	workers int
}

// NewBruteForceIndex creates a brute-force neighbor index using one worker
// per CPU.
func NewBruteForceIndex() *BruteForceIndex {
	return &BruteForceIndex{workers: runtime.NumCPU()}
}

// NearestNeighborDistances computes, per property, the minimum haversine
// distance to any other property. A single-property set has no neighbors and
// yields a zero distance.
func (idx *BruteForceIndex) NearestNeighborDistances(ctx context.Context, props []market.PropertyRecord) ([]float64, error) {
	n := len(props)
	distances := make([]float64, n)
	if n < 2 {
		return distances, nil
	}

	workers := idx.workers
	if workers < 1 {
		workers = 1
	}
	batch := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += batch {
		start := start
		end := start + batch
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				min := math.Inf(1)
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					d := Haversine(props[i].Latitude, props[i].Longitude,
						props[j].Latitude, props[j].Longitude)
					if d < min {
						min = d
					}
				}
				distances[i] = min
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return distances, nil
}

// moranI computes an inverse-distance-weighted spatial autocorrelation over
// one value per property: weight 1/(d+offset) inside the neighborhood, 0
// outside, normalized by total weight and variance. Zero variance or zero
// total weight carries no signal and yields 0. The O(n^2) pair scan is
// batched over the outer index.
func moranI(ctx context.Context, props []market.PropertyRecord, values []float64) (float64, error) {
	n := len(values)
	if n < 2 {
		return 0, nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	if variance == 0 {
		return 0, nil
	}

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	batch := (n + workers - 1) / workers

	type partial struct {
		weightedSum float64
		totalWeight float64
	}
	partials := make([]partial, 0, workers)
	for start := 0; start < n; start += batch {
		partials = append(partials, partial{})
	}

	g, ctx := errgroup.WithContext(ctx)
	slot := 0
	for start := 0; start < n; start += batch {
		start, chunk := start, slot
		end := start + batch
		if end > n {
			end = n
		}
		g.Go(func() error {
			var p partial
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					d := Haversine(props[i].Latitude, props[i].Longitude,
						props[j].Latitude, props[j].Longitude)
					if d > moranNeighborhoodKm {
						continue
					}
					w := 1.0 / (d + moranDistanceOffset)
					p.weightedSum += w * (values[i] - mean) * (values[j] - mean)
					p.totalWeight += w
				}
			}
			partials[chunk] = p
			return nil
		})
		slot++
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	weightedSum, totalWeight := 0.0, 0.0
	for _, p := range partials {
		weightedSum += p.weightedSum
		totalWeight += p.totalWeight
	}
	if totalWeight == 0 {
		return 0, nil
	}
	return (weightedSum / totalWeight) / variance, nil
}

// clusteringCoefficient is the fraction of nearest-neighbor distances below
// half the mean nearest-neighbor distance. A fully coincident set has zero
// mean distance and is treated as maximally clustered.
func clusteringCoefficient(nnDistances []float64) float64 {
	if len(nnDistances) == 0 {
		return 0
	}

	mean := 0.0
	for _, d := range nnDistances {
		mean += d
	}
	mean /= float64(len(nnDistances))
	if mean == 0 {
		return 1.0
	}

	threshold := mean / 2
	clustered := 0
	for _, d := range nnDistances {
		if d < threshold {
			clustered++
		}
	}
	return float64(clustered) / float64(len(nnDistances))
}

// dispersalIndex is the coefficient of dispersion of distances from the
// portfolio centroid: variance over mean. Zero mean distance yields 0.
func dispersalIndex(props []market.PropertyRecord) float64 {
	n := len(props)
	if n < 2 {
		return 0
	}

	centroidLat, centroidLng := 0.0, 0.0
	for _, p := range props {
		centroidLat += p.Latitude
		centroidLng += p.Longitude
	}
	centroidLat /= float64(n)
	centroidLng /= float64(n)

	distances := make([]float64, n)
	mean := 0.0
	for i, p := range props {
		distances[i] = Haversine(p.Latitude, p.Longitude, centroidLat, centroidLng)
		mean += distances[i]
	}
	mean /= float64(n)
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, d := range distances {
		dev := d - mean
		variance += dev * dev
	}
	variance /= float64(n)

	return variance / mean
}
