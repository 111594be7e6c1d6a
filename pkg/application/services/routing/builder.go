package routing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// BuildRequest is the input of a route construction
type BuildRequest struct {
	// Depots are indices into Points and must cover every depot-role point.
	// Vehicle i starts and ends at Depots[i % len(Depots)].
	Depots          []int
	Points          []entities.GeoPoint
	Matrix          *DistanceMatrix
	VehicleCapacity decimal.Decimal
	VehicleCount    int
}

// Builder constructs capacitated routes with a greedy nearest-feasible-stop heuristic
type Builder struct{}

// NewBuilder creates a route builder
func NewBuilder() *Builder {
	return &Builder{}
}

// DepotIndices returns the indices of the points whose role is depot, in input order
func DepotIndices(points []entities.GeoPoint) []int {
	depots := make([]int, 0, 1)
	for i := range points {
		if points[i].IsDepot() {
			depots = append(depots, i)
		}
	}
	return depots
}

// Build partitions the stops into routes. Stops heavier than the vehicle capacity and
// stops left over once every vehicle has closed its route are reported in Unrouted.
// Every input stop ends up either on exactly one route or in Unrouted.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*dto.RoutingResult, error) {
	depotSet, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	result := &dto.RoutingResult{
		Routes:   make([]entities.Route, 0),
		Unrouted: make([]entities.UnroutedPoint, 0),
	}
	if req.Matrix != nil {
		result.MatrixSource = req.Matrix.Source
	}

	unassigned := make([]int, 0, len(req.Points))
	for i := range req.Points {
		if depotSet[i] {
			continue
		}
		if req.Points[i].DemandWeight.GreaterThan(req.VehicleCapacity) {
			result.Unrouted = append(result.Unrouted, unrouted(req.Points[i], entities.ExceedsCapacity))
			continue
		}
		unassigned = append(unassigned, i)
	}

	for vehicle := 0; vehicle < req.VehicleCount && len(unassigned) > 0; vehicle++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		depot := req.Depots[vehicle%len(req.Depots)]
		current := depot
		load := decimal.Zero
		sequence := make([]int, 0)

		for {
			next := -1
			best := 0.0
			for pos, candidate := range unassigned {
				if load.Add(req.Points[candidate].DemandWeight).GreaterThan(req.VehicleCapacity) {
					continue
				}
				d := req.Matrix.Distance(current, candidate)
				if next == -1 || d < best {
					next = pos
					best = d
				}
			}
			if next == -1 {
				break
			}

			stop := unassigned[next]
			unassigned = append(unassigned[:next], unassigned[next+1:]...)
			sequence = append(sequence, stop)
			load = load.Add(req.Points[stop].DemandWeight)
			current = stop
		}

		if len(sequence) == 0 {
			continue
		}
		result.Routes = append(result.Routes, makeRoute(vehicle, depot, sequence, req.Points, req.Matrix, req.VehicleCapacity))
	}

	for _, idx := range unassigned {
		result.Unrouted = append(result.Unrouted, unrouted(req.Points[idx], entities.NoVehicleAvailable))
	}

	result.Metrics = ComputeMetrics(result.Routes, len(result.Unrouted), req.VehicleCapacity)
	return result, nil
}

func validateRequest(req BuildRequest) (map[int]bool, error) {
	if len(req.Depots) == 0 {
		return nil, entities.NewConfigurationError("depots", "at least one depot is required")
	}
	if req.VehicleCapacity.IsNegative() {
		return nil, entities.NewConfigurationError("vehicle_capacity", "capacity cannot be negative, got %s", req.VehicleCapacity)
	}
	if req.VehicleCount < 0 {
		return nil, entities.NewConfigurationError("vehicle_count", "vehicle count cannot be negative, got %d", req.VehicleCount)
	}

	seen := make(map[string]bool, len(req.Points))
	for i := range req.Points {
		if err := req.Points[i].Validate(); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		if seen[req.Points[i].ID] {
			return nil, entities.NewConfigurationError("points", "duplicate point id %s", req.Points[i].ID)
		}
		seen[req.Points[i].ID] = true
	}

	depotSet := make(map[int]bool, len(req.Depots))
	for _, depot := range req.Depots {
		if depot < 0 || depot >= len(req.Points) {
			return nil, entities.NewConfigurationError("depots", "depot index %d out of range for %d points", depot, len(req.Points))
		}
		depotSet[depot] = true
	}
	for i := range req.Points {
		if req.Points[i].IsDepot() && !depotSet[i] {
			return nil, entities.NewConfigurationError("depots", "point %s has the depot role but index %d is not listed in depots", req.Points[i].ID, i)
		}
	}

	if req.Matrix == nil {
		return nil, entities.NewConfigurationError("matrix", "distance matrix is required")
	}
	if err := req.Matrix.Validate(len(req.Points)); err != nil {
		return nil, entities.NewConfigurationError("matrix", "%v", err)
	}

	return depotSet, nil
}

func unrouted(point entities.GeoPoint, reason entities.UnroutedReason) entities.UnroutedPoint {
	return entities.UnroutedPoint{ID: point.ID, DemandWeight: point.DemandWeight, Reason: reason}
}

// makeRoute assembles a Route for a depot and an index sequence
func makeRoute(
	vehicle, depot int,
	sequence []int,
	points []entities.GeoPoint,
	matrix *DistanceMatrix,
	capacity decimal.Decimal,
) entities.Route {
	stops := make([]string, len(sequence))
	load := decimal.Zero
	for i, idx := range sequence {
		stops[i] = points[idx].ID
		load = load.Add(points[idx].DemandWeight)
	}

	route := entities.Route{
		VehicleIndex:  vehicle,
		DepotID:       points[depot].ID,
		Stops:         stops,
		TotalDistance: sequenceDistance(depot, sequence, matrix),
		TotalLoad:     load,
		LoadFactor:    decimal.Zero,
	}
	if matrix.HasDurations() {
		route.TotalDuration = sequenceDuration(depot, sequence, matrix)
	}
	if capacity.IsPositive() {
		route.LoadFactor = load.DivRound(capacity, 4)
	}
	return route
}

// sequenceDistance includes the legs from and back to the depot
func sequenceDistance(depot int, sequence []int, matrix *DistanceMatrix) float64 {
	if len(sequence) == 0 {
		return 0
	}
	total := matrix.Distance(depot, sequence[0])
	for i := 1; i < len(sequence); i++ {
		total += matrix.Distance(sequence[i-1], sequence[i])
	}
	return total + matrix.Distance(sequence[len(sequence)-1], depot)
}

func sequenceDuration(depot int, sequence []int, matrix *DistanceMatrix) float64 {
	if len(sequence) == 0 {
		return 0
	}
	total := matrix.Duration(depot, sequence[0])
	for i := 1; i < len(sequence); i++ {
		total += matrix.Duration(sequence[i-1], sequence[i])
	}
	return total + matrix.Duration(sequence[len(sequence)-1], depot)
}

// ComputeMetrics aggregates routes. Efficiency is assigned demand over the capacity of the
// vehicles actually used, and zero when no vehicle is used.
func ComputeMetrics(routes []entities.Route, unroutedCount int, capacity decimal.Decimal) dto.RoutingMetrics {
	metrics := dto.RoutingMetrics{
		VehiclesUsed:   len(routes),
		UnroutedStops:  unroutedCount,
		AssignedDemand: decimal.Zero,
		Efficiency:     decimal.Zero,
	}
	for _, route := range routes {
		metrics.TotalDistance += route.TotalDistance
		metrics.TotalDuration += route.TotalDuration
		metrics.RoutedStops += len(route.Stops)
		metrics.AssignedDemand = metrics.AssignedDemand.Add(route.TotalLoad)
	}

	available := capacity.Mul(decimal.NewFromInt(int64(len(routes))))
	if available.IsPositive() {
		metrics.Efficiency = metrics.AssignedDemand.DivRound(available, 4)
	}
	return metrics
}
