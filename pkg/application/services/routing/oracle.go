package routing

import (
	"context"
	"fmt"
	"math"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// DistanceOracle computes pairwise travel cost between points.
// Implementations return an N x N matrix that is symmetric with a zero diagonal.
type DistanceOracle interface {
	Matrix(ctx context.Context, points []entities.GeoPoint) (*DistanceMatrix, error)
}

// DistanceMatrix holds distances in meters and, when known, durations in seconds
type DistanceMatrix struct {
	Distances [][]float64 `json:"distances"`
	Durations [][]float64 `json:"durations,omitempty"`
	Source    string      `json:"source"`
}

// Size returns the number of points covered by the matrix
func (m *DistanceMatrix) Size() int {
	return len(m.Distances)
}

// Distance returns the distance from i to j
func (m *DistanceMatrix) Distance(i, j int) float64 {
	return m.Distances[i][j]
}

// Duration returns the duration from i to j, or 0 when durations are unknown
func (m *DistanceMatrix) Duration(i, j int) float64 {
	if m.Durations == nil {
		return 0
	}
	return m.Durations[i][j]
}

// HasDurations reports whether the matrix carries durations
func (m *DistanceMatrix) HasDurations() bool {
	return m.Durations != nil
}

// Validate checks that the matrix is n x n with finite non-negative cells
func (m *DistanceMatrix) Validate(n int) error {
	if m == nil {
		return fmt.Errorf("matrix is missing")
	}
	if err := validateGrid("distance", m.Distances, n); err != nil {
		return err
	}
	if m.Durations != nil {
		if err := validateGrid("duration", m.Durations, n); err != nil {
			return err
		}
	}
	return nil
}

func validateGrid(name string, grid [][]float64, n int) error {
	if len(grid) != n {
		return fmt.Errorf("%s matrix has %d rows, expected %d", name, len(grid), n)
	}
	for i, row := range grid {
		if len(row) != n {
			return fmt.Errorf("%s matrix row %d has %d columns, expected %d", name, i, len(row), n)
		}
		for j, value := range row {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return fmt.Errorf("%s matrix cell [%d][%d] is not a finite number", name, i, j)
			}
			if value < 0 {
				return fmt.Errorf("%s matrix cell [%d][%d] is negative: %v", name, i, j, value)
			}
		}
	}
	return nil
}

// symmetrize returns a copy of grid averaged with its transpose and with a zero diagonal
func symmetrize(grid [][]float64) [][]float64 {
	if grid == nil {
		return nil
	}
	n := len(grid)
	out := newGrid(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			avg := (grid[i][j] + grid[j][i]) / 2
			out[i][j] = avg
			out[j][i] = avg
		}
	}
	return out
}

func newGrid(n int) [][]float64 {
	grid := make([][]float64, n)
	for i := range grid {
		grid[i] = make([]float64, n)
	}
	return grid
}

// validatePoints checks every point is a valid WGS84 location
func validatePoints(points []entities.GeoPoint) error {
	for i := range points {
		if err := points[i].Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return nil
}
