package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// DemandRepository provides access to demand data
type DemandRepository interface {
	GetDemands() ([]*entities.Demand, error)
	LoadDemands(demands []*entities.Demand) error
}
