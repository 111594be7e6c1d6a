package entities

import (
	"github.com/shopspring/decimal"
)

// BOMLine is a directed parent -> component edge of the BOM graph
type BOMLine struct {
	ParentCode      ArticleCode     `json:"parent_code"`
	ComponentCode   ArticleCode     `json:"component_code"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// NewBOMLine creates a validated BOMLine. Self references are accepted here and
// handled as cycles during explosion.
func NewBOMLine(parentCode, componentCode ArticleCode, quantityPerUnit decimal.Decimal) (*BOMLine, error) {
	line := &BOMLine{
		ParentCode:      parentCode,
		ComponentCode:   componentCode,
		QuantityPerUnit: quantityPerUnit,
	}
	if err := line.Validate(); err != nil {
		return nil, err
	}
	return line, nil
}

// Validate checks the BOM line invariants
func (l *BOMLine) Validate() error {
	if l.ParentCode == "" {
		return NewConfigurationError("parent_code", "parent code cannot be empty")
	}
	if l.ComponentCode == "" {
		return NewConfigurationError("component_code", "component code cannot be empty")
	}
	if !l.QuantityPerUnit.IsPositive() {
		return NewConfigurationError("quantity_per_unit", "quantity per unit must be positive for %s -> %s, got %s",
			l.ParentCode, l.ComponentCode, l.QuantityPerUnit)
	}
	return nil
}
