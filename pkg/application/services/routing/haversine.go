package routing

import (
	"context"
	"math"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// EarthRadiusMeters is the mean earth radius
const EarthRadiusMeters = 6371008.8

// HaversineDistance returns the great-circle distance in meters between a and b
func HaversineDistance(a, b entities.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// HaversineOracle computes straight-line distances offline.
// When SpeedKmh is positive durations are derived from it.
type HaversineOracle struct {
	SpeedKmh float64
}

// NewHaversineOracle creates a haversine oracle
func NewHaversineOracle(speedKmh float64) *HaversineOracle {
	return &HaversineOracle{SpeedKmh: speedKmh}
}

// Matrix computes the full pairwise matrix
func (o *HaversineOracle) Matrix(ctx context.Context, points []entities.GeoPoint) (*DistanceMatrix, error) {
	if err := validatePoints(points); err != nil {
		return nil, err
	}

	n := len(points)
	matrix := &DistanceMatrix{Distances: newGrid(n), Source: "haversine"}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < n; j++ {
			d := HaversineDistance(points[i], points[j])
			matrix.Distances[i][j] = d
			matrix.Distances[j][i] = d
		}
	}

	if o.SpeedKmh > 0 {
		metersPerSecond := o.SpeedKmh * 1000 / 3600
		matrix.Durations = newGrid(n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				matrix.Durations[i][j] = matrix.Distances[i][j] / metersPerSecond
			}
		}
	}

	return matrix, nil
}
