package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/logger"
)

// PlanRequest describes a routing problem. Depots are the points whose role is depot.
type PlanRequest struct {
	Points          []entities.GeoPoint
	VehicleCapacity decimal.Decimal
	VehicleCount    int
	Improve         ImproveMode
}

// Planner resolves a distance matrix, builds routes and optionally improves them
type Planner struct {
	oracle  DistanceOracle
	builder *Builder
	log     *logger.Logger
}

// NewPlanner creates a planner on top of an oracle. log may be nil.
func NewPlanner(oracle DistanceOracle, log *logger.Logger) *Planner {
	if log == nil {
		log = logger.Nop()
	}
	return &Planner{oracle: oracle, builder: NewBuilder(), log: log.Named("routing")}
}

// Plan runs the full routing pipeline
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*dto.RoutingResult, error) {
	start := time.Now()

	mode, err := ParseImproveMode(string(req.Improve))
	if err != nil {
		return nil, err
	}

	depots := DepotIndices(req.Points)
	if len(depots) == 0 {
		return nil, entities.NewConfigurationError("depots", "at least one depot is required")
	}

	matrix, err := p.oracle.Matrix(ctx, req.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to compute distance matrix: %w", err)
	}

	result, err := p.builder.Build(ctx, BuildRequest{
		Depots:          depots,
		Points:          req.Points,
		Matrix:          matrix,
		VehicleCapacity: req.VehicleCapacity,
		VehicleCount:    req.VehicleCount,
	})
	if err != nil {
		return nil, err
	}

	if mode != ImproveNone {
		before := result.Metrics.TotalDistance
		improver, err := NewImprover(req.Points, matrix, req.VehicleCapacity)
		if err != nil {
			return nil, err
		}
		if result, err = improver.Improve(result, mode); err != nil {
			return nil, fmt.Errorf("failed to improve routes: %w", err)
		}
		p.log.Debug().
			Str("mode", string(mode)).
			Float64("before", before).
			Float64("after", result.Metrics.TotalDistance).
			Msg("routes improved")
	}

	p.log.Info().
		Str("source", matrix.Source).
		Int("routes", len(result.Routes)).
		Int("unrouted", len(result.Unrouted)).
		Float64("distance", result.Metrics.TotalDistance).
		Dur("elapsed", time.Since(start)).
		Msg("routing completed")

	return result, nil
}
