package criticalpath

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/services/mrp"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// CriticalPathService finds the longest cumulative lead-time chains below an article
type CriticalPathService struct {
	bomTraverser *mrp.BOMTraverser
	supplierRepo repositories.SupplierRepository
}

// NewCriticalPathService creates a new critical path service. Cycles are always truncated.
func NewCriticalPathService(
	bomRepo repositories.BOMRepository,
	articleRepo repositories.ArticleRepository,
	supplierRepo repositories.SupplierRepository,
) *CriticalPathService {
	return &CriticalPathService{
		bomTraverser: mrp.NewBOMTraverser(bomRepo, articleRepo, mrp.TruncateCycles),
		supplierRepo: supplierRepo,
	}
}

// AnalyzeCriticalPath returns the topN longest lead-time chains below code
func (cps *CriticalPathService) AnalyzeCriticalPath(
	ctx context.Context,
	code entities.ArticleCode,
	topN int,
) (*entities.CriticalPathAnalysis, error) {
	visitor := NewCriticalPathVisitor(cps.supplierRepo)

	result, err := cps.bomTraverser.TraverseBOM(ctx, code, decimal.NewFromInt(1), visitor)
	if err != nil {
		return nil, fmt.Errorf("failed to find paths for %s: %w", code, err)
	}

	analysis := &entities.CriticalPathAnalysis{
		TopLevelArticle: code,
		AnalysisDate:    time.Now(),
	}

	allPaths, _ := result.([]entities.CriticalPath)
	if len(allPaths) == 0 {
		return analysis, nil
	}

	sort.SliceStable(allPaths, func(i, j int) bool {
		if allPaths[i].TotalLeadTime != allPaths[j].TotalLeadTime {
			return allPaths[i].TotalLeadTime > allPaths[j].TotalLeadTime
		}
		return allPaths[i].PathLength > allPaths[j].PathLength
	})

	topPaths := allPaths
	if topN > 0 && len(allPaths) > topN {
		topPaths = allPaths[:topN]
	}

	analysis.CriticalPath = allPaths[0]
	analysis.TopPaths = topPaths
	analysis.TotalPaths = len(allPaths)

	return analysis, nil
}
