package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Demand is an independent demand line. Each one triggers a full BOM explosion.
type Demand struct {
	Client      string          `json:"client"`
	ArticleCode ArticleCode     `json:"article_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	DueDate     time.Time       `json:"due_date"`
}

// NewDemand creates a validated Demand
func NewDemand(client string, articleCode ArticleCode, quantity decimal.Decimal, dueDate time.Time) (*Demand, error) {
	demand := &Demand{
		Client:      client,
		ArticleCode: articleCode,
		Quantity:    quantity,
		DueDate:     dueDate,
	}
	if err := demand.Validate(); err != nil {
		return nil, err
	}
	return demand, nil
}

// Validate checks the demand invariants
func (d *Demand) Validate() error {
	if d.ArticleCode == "" {
		return NewConfigurationError("article_code", "demand article code cannot be empty")
	}
	if !d.Quantity.IsPositive() {
		return NewConfigurationError("quantity", "demand quantity must be positive for %s, got %s", d.ArticleCode, d.Quantity)
	}
	if d.DueDate.IsZero() {
		return NewConfigurationError("due_date", "demand due date is required for %s", d.ArticleCode)
	}
	return nil
}

// GrossRequirements is an additive map of article quantities that remembers
// the order in which codes were first added
type GrossRequirements struct {
	order      []ArticleCode
	quantities map[ArticleCode]decimal.Decimal
}

// NewGrossRequirements creates an empty requirement map
func NewGrossRequirements() *GrossRequirements {
	return &GrossRequirements{quantities: make(map[ArticleCode]decimal.Decimal)}
}

// Add accumulates qty into code
func (g *GrossRequirements) Add(code ArticleCode, qty decimal.Decimal) {
	current, exists := g.quantities[code]
	if !exists {
		g.order = append(g.order, code)
		g.quantities[code] = qty
		return
	}
	g.quantities[code] = current.Add(qty)
}

// Merge adds every entry of other, keeping other's order for new codes
func (g *GrossRequirements) Merge(other *GrossRequirements) {
	if other == nil {
		return
	}
	for _, code := range other.order {
		g.Add(code, other.quantities[code])
	}
}

// Get returns the accumulated quantity for code
func (g *GrossRequirements) Get(code ArticleCode) (decimal.Decimal, bool) {
	qty, ok := g.quantities[code]
	return qty, ok
}

// Codes returns the codes in first-added order
func (g *GrossRequirements) Codes() []ArticleCode {
	out := make([]ArticleCode, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of distinct codes
func (g *GrossRequirements) Len() int {
	return len(g.order)
}

// Map returns a copy of the quantities keyed by code
func (g *GrossRequirements) Map() map[ArticleCode]decimal.Decimal {
	out := make(map[ArticleCode]decimal.Decimal, len(g.quantities))
	for code, qty := range g.quantities {
		out[code] = qty
	}
	return out
}
