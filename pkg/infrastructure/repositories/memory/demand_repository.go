package memory

import (
	"fmt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// DemandRepository provides in-memory demand storage
type DemandRepository struct {
	demands []*entities.Demand
}

// NewDemandRepository creates a new in-memory demand repository
func NewDemandRepository() *DemandRepository {
	return &DemandRepository{
		demands: make([]*entities.Demand, 0),
	}
}

// Verify interface compliance
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// GetDemands returns all demands in load order
func (r *DemandRepository) GetDemands() ([]*entities.Demand, error) {
	return r.demands, nil
}

// LoadDemands validates and loads demands into the repository
func (r *DemandRepository) LoadDemands(demands []*entities.Demand) error {
	for i, demand := range demands {
		if err := demand.Validate(); err != nil {
			return fmt.Errorf("demand %d: %w", i, err)
		}
	}
	r.demands = append(r.demands, demands...)
	return nil
}
