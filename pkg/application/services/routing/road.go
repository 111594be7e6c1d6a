package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// ErrMalformedMatrix is wrapped when a provider answers with an unusable matrix
var ErrMalformedMatrix = errors.New("malformed matrix")

// DefaultProviderTimeout bounds a single provider call
const DefaultProviderTimeout = 20 * time.Second

// MatrixProvider fetches road distances (meters) and durations (seconds) for an ordered point list
type MatrixProvider interface {
	Name() string
	FetchMatrix(ctx context.Context, points []entities.GeoPoint) (distances [][]float64, durations [][]float64, err error)
}

// RoadOracle queries an external road-routing provider
type RoadOracle struct {
	provider MatrixProvider
	timeout  time.Duration
}

// NewRoadOracle creates a road oracle. A non-positive timeout uses DefaultProviderTimeout.
func NewRoadOracle(provider MatrixProvider, timeout time.Duration) *RoadOracle {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &RoadOracle{provider: provider, timeout: timeout}
}

// Matrix fetches the provider matrix and normalizes it to a symmetric matrix with a zero diagonal.
// Any provider failure is returned as an ExternalProviderError; a zero-filled matrix is never returned.
func (o *RoadOracle) Matrix(ctx context.Context, points []entities.GeoPoint) (*DistanceMatrix, error) {
	if err := validatePoints(points); err != nil {
		return nil, err
	}

	n := len(points)
	source := "road:" + o.provider.Name()
	if n <= 1 {
		return &DistanceMatrix{Distances: newGrid(n), Durations: newGrid(n), Source: source}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	distances, durations, err := o.provider.FetchMatrix(callCtx, points)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var providerErr *entities.ExternalProviderError
		if errors.As(err, &providerErr) {
			return nil, err
		}
		return nil, &entities.ExternalProviderError{Provider: o.provider.Name(), Op: "matrix", Err: err}
	}

	raw := &DistanceMatrix{Distances: distances, Durations: durations}
	if err := raw.Validate(n); err != nil {
		return nil, &entities.ExternalProviderError{
			Provider: o.provider.Name(),
			Op:       "matrix",
			Err:      fmt.Errorf("%w: %v", ErrMalformedMatrix, err),
		}
	}

	return &DistanceMatrix{
		Distances: symmetrize(distances),
		Durations: symmetrize(durations),
		Source:    source,
	}, nil
}
