package memory

import (
	"fmt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// SupplierRepository provides in-memory supplier storage
type SupplierRepository struct {
	suppliers map[string]entities.Supplier
	order     []string
}

// NewSupplierRepository creates a new in-memory supplier repository
func NewSupplierRepository() *SupplierRepository {
	return &SupplierRepository{
		suppliers: make(map[string]entities.Supplier),
	}
}

// Verify interface compliance
var _ repositories.SupplierRepository = (*SupplierRepository)(nil)

// LoadSuppliers loads suppliers, replacing any with the same id
func (r *SupplierRepository) LoadSuppliers(suppliers []*entities.Supplier) error {
	for i, supplier := range suppliers {
		if err := supplier.Validate(); err != nil {
			return fmt.Errorf("supplier %d: %w", i, err)
		}
		if _, exists := r.suppliers[supplier.ID]; !exists {
			r.order = append(r.order, supplier.ID)
		}
		r.suppliers[supplier.ID] = *supplier
	}
	return nil
}

// GetSupplier returns the supplier with id
func (r *SupplierRepository) GetSupplier(id string) (*entities.Supplier, error) {
	supplier, exists := r.suppliers[id]
	if !exists {
		return nil, fmt.Errorf("supplier %s: %w", id, entities.ErrNotFound)
	}
	return &supplier, nil
}

// GetAllSuppliers returns all suppliers in load order
func (r *SupplierRepository) GetAllSuppliers() ([]*entities.Supplier, error) {
	out := make([]*entities.Supplier, 0, len(r.order))
	for _, id := range r.order {
		supplier := r.suppliers[id]
		out = append(out, &supplier)
	}
	return out, nil
}
