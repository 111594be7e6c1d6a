package entities

import (
	"github.com/shopspring/decimal"
)

// Route is the ordered stop sequence of one vehicle. The depot is the implicit
// first and last position and is never stored as a stop.
type Route struct {
	VehicleIndex  int             `json:"vehicle_index"`
	DepotID       string          `json:"depot_id"`
	Stops         []string        `json:"ordered_stops"`
	TotalDistance float64         `json:"total_distance"`
	TotalDuration float64         `json:"total_duration,omitempty"`
	TotalLoad     decimal.Decimal `json:"total_load"`
	LoadFactor    decimal.Decimal `json:"load_factor"`
}

// Clone returns a deep copy of the route
func (r Route) Clone() Route {
	stops := make([]string, len(r.Stops))
	copy(stops, r.Stops)
	r.Stops = stops
	return r
}

// UnroutedReason explains why a stop could not be placed on a route
type UnroutedReason string

const (
	ExceedsCapacity    UnroutedReason = "exceeds_capacity"
	NoVehicleAvailable UnroutedReason = "no_vehicle_available"
)

// UnroutedPoint is a stop that no route carries
type UnroutedPoint struct {
	ID           string          `json:"id"`
	DemandWeight decimal.Decimal `json:"demand_weight"`
	Reason       UnroutedReason  `json:"reason"`
}
