package criticalpath

import (
	"context"

	"github.com/vsinha/supplyplan/pkg/application/services/mrp"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// CriticalPathVisitor implements BOMNodeVisitor for critical path analysis
type CriticalPathVisitor struct {
	supplierRepo repositories.SupplierRepository
}

// NewCriticalPathVisitor creates a new critical path visitor. supplierRepo may be nil.
func NewCriticalPathVisitor(supplierRepo repositories.SupplierRepository) *CriticalPathVisitor {
	return &CriticalPathVisitor{supplierRepo: supplierRepo}
}

// VisitNode creates a critical path node for this article
func (v *CriticalPathVisitor) VisitNode(
	ctx context.Context,
	nodeCtx mrp.BOMNodeContext,
) (interface{}, bool, error) {
	node := entities.CriticalPathNode{
		ArticleCode:  nodeCtx.ArticleCode,
		LeadTimeDays: v.leadTime(nodeCtx.Article),
		Level:        nodeCtx.Level,
	}
	if nodeCtx.Article != nil {
		node.Name = nodeCtx.Article.Name
	}

	return node, true, nil
}

// ProcessChildren creates critical paths by prepending this node to each child path
func (v *CriticalPathVisitor) ProcessChildren(
	ctx context.Context,
	nodeCtx mrp.BOMNodeContext,
	nodeData interface{},
	childResults []interface{},
) (interface{}, error) {
	node := nodeData.(entities.CriticalPathNode)

	var allChildPaths []entities.CriticalPath
	for _, childResult := range childResults {
		if childResult != nil {
			allChildPaths = append(allChildPaths, childResult.([]entities.CriticalPath)...)
		}
	}

	if len(allChildPaths) == 0 {
		node.CumulativeTime = node.LeadTimeDays
		return []entities.CriticalPath{{
			TotalLeadTime:     node.LeadTimeDays,
			PathLength:        1,
			Path:              []entities.ArticleCode{node.ArticleCode},
			PathDetails:       []entities.CriticalPathNode{node},
			BottleneckArticle: node.ArticleCode,
		}}, nil
	}

	resultPaths := make([]entities.CriticalPath, 0, len(allChildPaths))
	for _, childPath := range allChildPaths {
		head := node
		head.CumulativeTime = node.LeadTimeDays + childPath.TotalLeadTime

		bottleneck := node.ArticleCode
		if node.LeadTimeDays < leadTimeOf(childPath.BottleneckArticle, childPath.PathDetails) {
			bottleneck = childPath.BottleneckArticle
		}

		resultPaths = append(resultPaths, entities.CriticalPath{
			TotalLeadTime:     node.LeadTimeDays + childPath.TotalLeadTime,
			PathLength:        1 + childPath.PathLength,
			Path:              append([]entities.ArticleCode{node.ArticleCode}, childPath.Path...),
			PathDetails:       append([]entities.CriticalPathNode{head}, childPath.PathDetails...),
			BottleneckArticle: bottleneck,
		})
	}

	return resultPaths, nil
}

// leadTime applies the supplier override the same way the netting does
func (v *CriticalPathVisitor) leadTime(article *entities.Article) int {
	if article == nil {
		return 0
	}
	if article.HasSupplier() && v.supplierRepo != nil {
		if supplier, err := v.supplierRepo.GetSupplier(article.SupplierRef); err == nil {
			return supplier.LeadTimeDays
		}
	}
	return article.LeadTimeDays
}

func leadTimeOf(code entities.ArticleCode, details []entities.CriticalPathNode) int {
	for _, node := range details {
		if node.ArticleCode == code {
			return node.LeadTimeDays
		}
	}
	return 0
}
