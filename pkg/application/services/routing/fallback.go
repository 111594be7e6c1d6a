package routing

import (
	"context"
	"errors"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/logger"
)

// FallbackOracle answers from Primary and switches to Secondary when Primary fails
// with an ExternalProviderError. Cancellation and input errors are not retried.
type FallbackOracle struct {
	primary    DistanceOracle
	secondary  DistanceOracle
	log        *logger.Logger
	onFallback func(ctx context.Context, err error)
}

// NewFallbackOracle creates a fallback oracle. log may be nil.
func NewFallbackOracle(primary, secondary DistanceOracle, log *logger.Logger) *FallbackOracle {
	if log == nil {
		log = logger.Nop()
	}
	return &FallbackOracle{primary: primary, secondary: secondary, log: log.Named("oracle")}
}

// OnFallback registers a hook called with the primary error each time the secondary is used
func (o *FallbackOracle) OnFallback(hook func(ctx context.Context, err error)) {
	o.onFallback = hook
}

// Matrix returns the primary matrix or, on a provider failure, the secondary one
func (o *FallbackOracle) Matrix(ctx context.Context, points []entities.GeoPoint) (*DistanceMatrix, error) {
	matrix, err := o.primary.Matrix(ctx, points)
	if err == nil {
		return matrix, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	var providerErr *entities.ExternalProviderError
	if !errors.As(err, &providerErr) {
		return nil, err
	}

	o.log.Warn().
		Err(err).
		Str("provider", providerErr.Provider).
		Int("points", len(points)).
		Msg("distance provider failed, falling back")
	if o.onFallback != nil {
		o.onFallback(ctx, err)
	}

	return o.secondary.Matrix(ctx, points)
}
