package mrp

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// ExplosionResult holds the total component quantities below one article
type ExplosionResult struct {
	Root            entities.ArticleCode
	Quantity        decimal.Decimal
	Requirements    *entities.GrossRequirements
	TruncatedCycles [][]entities.ArticleCode
}

// Quantities returns component code -> total required quantity
func (r *ExplosionResult) Quantities() map[entities.ArticleCode]decimal.Decimal {
	return r.Requirements.Map()
}

// explosionVisitor accumulates every visited component below the root into an additive map
type explosionVisitor struct {
	requirements *entities.GrossRequirements
	truncated    [][]entities.ArticleCode
}

func (v *explosionVisitor) VisitNode(ctx context.Context, nodeCtx BOMNodeContext) (interface{}, bool, error) {
	if nodeCtx.Level > 0 {
		v.requirements.Add(nodeCtx.ArticleCode, nodeCtx.Quantity)
	}
	return nil, true, nil
}

func (v *explosionVisitor) ProcessChildren(
	ctx context.Context,
	nodeCtx BOMNodeContext,
	nodeData interface{},
	childResults []interface{},
) (interface{}, error) {
	return nil, nil
}

func (v *explosionVisitor) OnCycleTruncated(ctx context.Context, path []entities.ArticleCode) {
	v.truncated = append(v.truncated, path)
}

// BOMExploder expands a parent article into the total quantities of its components
type BOMExploder struct {
	traverser *BOMTraverser
}

// NewBOMExploder creates an exploder over the given repositories
func NewBOMExploder(
	bomRepo repositories.BOMRepository,
	articleRepo repositories.ArticleRepository,
	policy CyclePolicy,
) *BOMExploder {
	return &BOMExploder{traverser: NewBOMTraverser(bomRepo, articleRepo, policy)}
}

// Explode returns every component needed below code for quantity units of code.
// Contributions reaching the same component through several parents are summed.
// The root itself is not part of the result.
func (e *BOMExploder) Explode(
	ctx context.Context,
	code entities.ArticleCode,
	quantity decimal.Decimal,
) (*ExplosionResult, error) {
	visitor := &explosionVisitor{requirements: entities.NewGrossRequirements()}

	if _, err := e.traverser.TraverseBOM(ctx, code, quantity, visitor); err != nil {
		return nil, fmt.Errorf("failed to explode %s: %w", code, err)
	}

	return &ExplosionResult{
		Root:            code,
		Quantity:        quantity,
		Requirements:    visitor.requirements,
		TruncatedCycles: visitor.truncated,
	}, nil
}
