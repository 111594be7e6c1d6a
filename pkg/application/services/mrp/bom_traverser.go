package mrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// CyclePolicy decides what happens when traversal reaches an article already on the active path
type CyclePolicy int

const (
	// TruncateCycles stops descending into the repeated article and records the cycle
	TruncateCycles CyclePolicy = iota
	// FailOnCycle aborts the traversal with a CyclicBOMError
	FailOnCycle
)

// String method for CyclePolicy enum
func (p CyclePolicy) String() string {
	switch p {
	case TruncateCycles:
		return "truncate"
	case FailOnCycle:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseCyclePolicy maps a configuration value to a CyclePolicy
func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch s {
	case "", "truncate":
		return TruncateCycles, nil
	case "fail":
		return FailOnCycle, nil
	default:
		return TruncateCycles, entities.NewConfigurationError("cycle_policy", "unknown cycle policy %q", s)
	}
}

// BOMNodeContext provides context information during BOM traversal
type BOMNodeContext struct {
	ArticleCode entities.ArticleCode
	Article     *entities.Article // nil when the code is not in the catalog
	Quantity    decimal.Decimal
	Level       int
	Path        []entities.ArticleCode // active path from the root, ending with this node
}

// BOMNodeVisitor defines the interface for processing nodes during BOM traversal
type BOMNodeVisitor interface {
	// VisitNode is called for each node in the BOM structure
	// Returns data to be passed to children and whether to continue traversal
	VisitNode(ctx context.Context, nodeCtx BOMNodeContext) (interface{}, bool, error)

	// ProcessChildren is called after visiting all children
	// Receives the node context, data from VisitNode, and results from children
	ProcessChildren(
		ctx context.Context,
		nodeCtx BOMNodeContext,
		nodeData interface{},
		childResults []interface{},
	) (interface{}, error)
}

// CycleObserver is implemented by visitors that want to know about truncated cycles
type CycleObserver interface {
	OnCycleTruncated(ctx context.Context, path []entities.ArticleCode)
}

// BOMTraverser walks the BOM graph depth first keeping the set of articles on the active path
type BOMTraverser struct {
	bomRepo     repositories.BOMRepository
	articleRepo repositories.ArticleRepository
	policy      CyclePolicy
}

// NewBOMTraverser creates a new BOM traverser
func NewBOMTraverser(
	bomRepo repositories.BOMRepository,
	articleRepo repositories.ArticleRepository,
	policy CyclePolicy,
) *BOMTraverser {
	return &BOMTraverser{
		bomRepo:     bomRepo,
		articleRepo: articleRepo,
		policy:      policy,
	}
}

// TraverseBOM performs BOM traversal from code using the visitor pattern
func (bt *BOMTraverser) TraverseBOM(
	ctx context.Context,
	code entities.ArticleCode,
	quantity decimal.Decimal,
	visitor BOMNodeVisitor,
) (interface{}, error) {
	onPath := make(map[entities.ArticleCode]bool)
	return bt.traverse(ctx, code, quantity, 0, onPath, nil, visitor)
}

func (bt *BOMTraverser) traverse(
	ctx context.Context,
	code entities.ArticleCode,
	quantity decimal.Decimal,
	level int,
	onPath map[entities.ArticleCode]bool,
	path []entities.ArticleCode,
	visitor BOMNodeVisitor,
) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	article, err := bt.articleRepo.GetArticle(code)
	if err != nil {
		if !errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("failed to get article %s: %w", code, err)
		}
		article = nil
	}

	onPath[code] = true
	defer delete(onPath, code)

	nodePath := make([]entities.ArticleCode, len(path)+1)
	copy(nodePath, path)
	nodePath[len(path)] = code

	nodeCtx := BOMNodeContext{
		ArticleCode: code,
		Article:     article,
		Quantity:    quantity,
		Level:       level,
		Path:        nodePath,
	}

	nodeData, shouldContinue, err := visitor.VisitNode(ctx, nodeCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to visit node %s: %w", code, err)
	}

	if !shouldContinue {
		return visitor.ProcessChildren(ctx, nodeCtx, nodeData, nil)
	}

	lines, err := bt.bomRepo.GetBOMLines(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get BOM lines for %s: %w", code, err)
	}

	childResults := make([]interface{}, 0, len(lines))
	for _, line := range lines {
		child := line.ComponentCode

		if onPath[child] {
			cycle := make([]entities.ArticleCode, len(nodePath)+1)
			copy(cycle, nodePath)
			cycle[len(nodePath)] = child

			if bt.policy == FailOnCycle {
				return nil, &entities.CyclicBOMError{Path: cycle}
			}
			if observer, ok := visitor.(CycleObserver); ok {
				observer.OnCycleTruncated(ctx, cycle)
			}
			continue
		}

		childResult, err := bt.traverse(
			ctx,
			child,
			quantity.Mul(line.QuantityPerUnit),
			level+1,
			onPath,
			nodePath,
			visitor,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to traverse child %s: %w", child, err)
		}

		childResults = append(childResults, childResult)
	}

	return visitor.ProcessChildren(ctx, nodeCtx, nodeData, childResults)
}
