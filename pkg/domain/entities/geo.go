package entities

import (
	"math"

	"github.com/shopspring/decimal"
)

// PointRole tells depots apart from delivery stops
type PointRole int

const (
	Stop PointRole = iota
	Depot
)

// String method for PointRole enum
func (r PointRole) String() string {
	switch r {
	case Stop:
		return "STOP"
	case Depot:
		return "DEPOT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the role for JSON and YAML output
func (r PointRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses the role from JSON and YAML input
func (r *PointRole) UnmarshalText(text []byte) error {
	switch string(text) {
	case "STOP", "stop", "":
		*r = Stop
	case "DEPOT", "depot":
		*r = Depot
	default:
		return NewConfigurationError("role", "unknown point role %q", string(text))
	}
	return nil
}

// GeoPoint is a WGS84 location with the demand weight to deliver there
type GeoPoint struct {
	ID           string          `json:"id"`
	Lat          float64         `json:"lat"`
	Lon          float64         `json:"lon"`
	DemandWeight decimal.Decimal `json:"demand_weight"`
	Role         PointRole       `json:"role"`
}

// NewGeoPoint creates a validated GeoPoint
func NewGeoPoint(id string, lat, lon float64, demandWeight decimal.Decimal, role PointRole) (*GeoPoint, error) {
	point := &GeoPoint{ID: id, Lat: lat, Lon: lon, DemandWeight: demandWeight, Role: role}
	if err := point.Validate(); err != nil {
		return nil, err
	}
	return point, nil
}

// Validate checks coordinates are decimal degrees in range and the weight is not negative
func (p *GeoPoint) Validate() error {
	if p.ID == "" {
		return NewConfigurationError("id", "point id cannot be empty")
	}
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return NewConfigurationError("lat", "latitude out of range for %s, got %v", p.ID, p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return NewConfigurationError("lon", "longitude out of range for %s, got %v", p.ID, p.Lon)
	}
	if p.DemandWeight.IsNegative() {
		return NewConfigurationError("demand_weight", "demand weight cannot be negative for %s, got %s", p.ID, p.DemandWeight)
	}
	return nil
}

// IsDepot reports whether the point is a depot
func (p *GeoPoint) IsDepot() bool {
	return p.Role == Depot
}
