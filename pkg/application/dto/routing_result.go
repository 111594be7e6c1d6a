package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// RoutingResult is a partial-or-complete routing outcome. Callers must check
// Unrouted before treating the plan as complete.
type RoutingResult struct {
	RunID        string                   `json:"run_id,omitempty"`
	Routes       []entities.Route         `json:"routes"`
	Unrouted     []entities.UnroutedPoint `json:"unrouted_points"`
	Metrics      RoutingMetrics           `json:"metrics"`
	MatrixSource string                   `json:"matrix_source,omitempty"`
}

// IsComplete reports whether every stop was routed
func (r *RoutingResult) IsComplete() bool {
	return len(r.Unrouted) == 0
}

// RoutingMetrics aggregates the routes of a result
type RoutingMetrics struct {
	TotalDistance  float64         `json:"total_distance"`
	TotalDuration  float64         `json:"total_duration,omitempty"`
	VehiclesUsed   int             `json:"vehicles_used"`
	RoutedStops    int             `json:"routed_stops"`
	UnroutedStops  int             `json:"unrouted_stops"`
	AssignedDemand decimal.Decimal `json:"assigned_demand"`
	Efficiency     decimal.Decimal `json:"efficiency"`
}
