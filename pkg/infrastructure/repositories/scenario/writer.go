package scenario

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Write encodes a scenario as a YAML document that Parse reads back
func Write(w io.Writer, s *Scenario) error {
	doc := document{
		Name:      s.Name,
		Articles:  make([]articleRecord, 0, len(s.Articles)),
		Suppliers: make([]supplierRecord, 0, len(s.Suppliers)),
		BOM:       make([]bomRecord, 0, len(s.BOM)),
		Stock:     make([]stockRecord, 0, len(s.Stock)),
		Demands:   make([]demandRecord, 0, len(s.Demands)),
		Clients:   s.Clients,
		Machines:  make([]machineRecord, 0, len(s.Machines)),
	}

	for _, a := range s.Articles {
		doc.Articles = append(doc.Articles, articleRecord{
			Code:         string(a.Code),
			Name:         a.Name,
			Kind:         a.Kind,
			LeadTimeDays: a.LeadTimeDays,
			UnitCost:     a.UnitCost,
			Supplier:     a.SupplierRef,
		})
	}
	for _, sup := range s.Suppliers {
		doc.Suppliers = append(doc.Suppliers, supplierRecord{ID: sup.ID, Name: sup.Name, LeadTimeDays: sup.LeadTimeDays})
	}
	for _, line := range s.BOM {
		doc.BOM = append(doc.BOM, bomRecord{
			Parent:    string(line.ParentCode),
			Component: string(line.ComponentCode),
			Quantity:  line.QuantityPerUnit,
		})
	}
	for _, st := range s.Stock {
		doc.Stock = append(doc.Stock, stockRecord{Article: string(st.ArticleCode), OnHand: st.OnHandQty, Safety: st.SafetyQty})
	}
	for _, d := range s.Demands {
		doc.Demands = append(doc.Demands, demandRecord{
			Client:   d.Client,
			Article:  string(d.ArticleCode),
			Quantity: d.Quantity,
			DueDate:  d.DueDate.Format(DateLayout),
		})
	}
	for _, m := range s.Machines {
		doc.Machines = append(doc.Machines, machineRecord{ID: m.ID, Name: m.Name, CapacityHoursPerDay: m.CapacityHoursPerDay})
	}
	for _, p := range s.Points {
		rec := pointRecord{ID: p.ID, Lat: p.Lat, Lon: p.Lon, Demand: p.DemandWeight}
		if p.Role == entities.Depot {
			doc.Depots = append(doc.Depots, rec)
		} else {
			doc.Stops = append(doc.Stops, rec)
		}
	}
	if s.Fleet.VehicleCount > 0 || !s.Fleet.VehicleCapacity.IsZero() {
		fleet := s.Fleet
		doc.Fleet = &fleet
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	return encoder.Close()
}
