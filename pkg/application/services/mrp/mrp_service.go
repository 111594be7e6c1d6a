package mrp

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
	"github.com/vsinha/supplyplan/pkg/logger"
)

// UnknownArticlePolicy decides what happens to requirement codes missing from the catalog
type UnknownArticlePolicy int

const (
	// SkipUnknownArticles drops the requirement and reports the code in the result
	SkipUnknownArticles UnknownArticlePolicy = iota
	// StrictArticles fails the run with an UnresolvedReferenceError
	StrictArticles
)

// String method for UnknownArticlePolicy enum
func (p UnknownArticlePolicy) String() string {
	switch p {
	case SkipUnknownArticles:
		return "skip"
	case StrictArticles:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseUnknownArticlePolicy maps a configuration value to an UnknownArticlePolicy
func ParseUnknownArticlePolicy(s string) (UnknownArticlePolicy, error) {
	switch s {
	case "", "skip":
		return SkipUnknownArticles, nil
	case "strict":
		return StrictArticles, nil
	default:
		return SkipUnknownArticles, entities.NewConfigurationError("unknown_article_policy", "unknown article policy %q", s)
	}
}

// EngineConfig holds the policies of the MRP engine
type EngineConfig struct {
	CyclePolicy          CyclePolicy
	UnknownArticlePolicy UnknownArticlePolicy
	Logger               *logger.Logger
}

// Catalog bundles the repositories a run reads from
type Catalog struct {
	Articles  repositories.ArticleRepository
	BOM       repositories.BOMRepository
	Stock     repositories.StockRepository
	Suppliers repositories.SupplierRepository
}

// MRPService nets exploded demand against stock and back-schedules order dates.
// It holds no state between runs.
type MRPService struct {
	config EngineConfig
	log    *logger.Logger
}

// NewMRPService creates a new MRP service with default policies
func NewMRPService() *MRPService {
	return NewMRPServiceWithConfig(EngineConfig{})
}

// NewMRPServiceWithConfig creates a new MRP service with custom configuration
func NewMRPServiceWithConfig(config EngineConfig) *MRPService {
	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &MRPService{
		config: config,
		log:    log.Named("mrp"),
	}
}

// Config returns the engine configuration
func (s *MRPService) Config() EngineConfig {
	return s.config
}

// Run explodes every demand, nets each gross requirement against stock and returns
// order lines sorted by order date. Ties keep their generation order.
func (s *MRPService) Run(
	ctx context.Context,
	demands []*entities.Demand,
	catalog Catalog,
) (*dto.MRPResult, error) {
	if err := s.validateInputs(demands, catalog); err != nil {
		return nil, err
	}

	exploder := NewBOMExploder(catalog.BOM, catalog.Articles, s.config.CyclePolicy)
	result := &dto.MRPResult{
		OrderLines:      make([]entities.OrderLine, 0, len(demands)*4),
		SkippedArticles: make([]entities.ArticleCode, 0),
		TruncatedCycles: make([][]entities.ArticleCode, 0),
	}
	skipped := make(map[entities.ArticleCode]bool)

	for i, demand := range demands {
		explosion, err := exploder.Explode(ctx, demand.ArticleCode, demand.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to explode demand %d for %s: %w", i, demand.ArticleCode, err)
		}
		for _, cycle := range explosion.TruncatedCycles {
			s.log.Warn().
				Str("article", string(demand.ArticleCode)).
				Interface("path", cycle).
				Msg("BOM cycle truncated")
		}
		result.TruncatedCycles = append(result.TruncatedCycles, explosion.TruncatedCycles...)

		gross := entities.NewGrossRequirements()
		gross.Add(demand.ArticleCode, demand.Quantity)
		gross.Merge(explosion.Requirements)

		for _, code := range gross.Codes() {
			grossQty, _ := gross.Get(code)

			line, err := s.netRequirement(i, demand, code, grossQty, catalog)
			if err != nil {
				var unresolved *entities.UnresolvedReferenceError
				if errors.As(err, &unresolved) && s.config.UnknownArticlePolicy == SkipUnknownArticles && unresolved.Kind == "article" {
					if !skipped[code] {
						skipped[code] = true
						result.SkippedArticles = append(result.SkippedArticles, code)
						s.log.Debug().Str("article", string(code)).Msg("unknown article skipped")
					}
					continue
				}
				return nil, fmt.Errorf("failed to net demand %d for %s: %w", i, code, err)
			}
			result.OrderLines = append(result.OrderLines, *line)
		}
	}

	sort.SliceStable(result.OrderLines, func(a, b int) bool {
		return result.OrderLines[a].OrderDate.Before(result.OrderLines[b].OrderDate)
	})

	result.Summary = dto.Summarize(result.OrderLines)

	s.log.Info().
		Int("demands", len(demands)).
		Int("order_lines", len(result.OrderLines)).
		Int("skipped", len(result.SkippedArticles)).
		Str("total_cost", result.Summary.TotalCost.StringFixed(2)).
		Msg("MRP run completed")

	return result, nil
}

// netRequirement builds the order line of one gross requirement
func (s *MRPService) netRequirement(
	demandIndex int,
	demand *entities.Demand,
	code entities.ArticleCode,
	grossQty decimal.Decimal,
	catalog Catalog,
) (*entities.OrderLine, error) {
	article, err := catalog.Articles.GetArticle(code)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, &entities.UnresolvedReferenceError{Kind: "article", Code: string(code)}
		}
		return nil, err
	}

	stock, err := catalog.Stock.GetStock(code)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock for %s: %w", code, err)
	}

	lead, err := s.leadTime(article, catalog)
	if err != nil {
		return nil, err
	}

	net := entities.NetRequirement(grossQty, stock.OnHandQty, stock.SafetyQty)

	return &entities.OrderLine{
		ArticleCode:  code,
		ArticleName:  article.Name,
		OrderType:    article.Kind.OrderType(),
		Client:       demand.Client,
		DemandIndex:  demandIndex,
		GrossQty:     grossQty,
		NetQty:       net,
		LeadTimeDays: lead,
		OrderDate:    entities.BackSchedule(demand.DueDate, lead),
		DueDate:      demand.DueDate,
		Cost:         net.Mul(article.UnitCost).Round(2),
	}, nil
}

// leadTime prefers the linked supplier's lead time and falls back to the article's own.
// A dangling supplier link falls back as well unless the article policy is strict.
func (s *MRPService) leadTime(article *entities.Article, catalog Catalog) (int, error) {
	if !article.HasSupplier() || catalog.Suppliers == nil {
		return article.LeadTimeDays, nil
	}

	supplier, err := catalog.Suppliers.GetSupplier(article.SupplierRef)
	if err == nil {
		return supplier.LeadTimeDays, nil
	}
	if !errors.Is(err, entities.ErrNotFound) {
		return 0, fmt.Errorf("failed to get supplier %s: %w", article.SupplierRef, err)
	}
	if s.config.UnknownArticlePolicy == StrictArticles {
		return 0, &entities.UnresolvedReferenceError{Kind: "supplier", Code: article.SupplierRef}
	}

	s.log.Debug().
		Str("article", string(article.Code)).
		Str("supplier", article.SupplierRef).
		Msg("supplier not found, using article lead time")
	return article.LeadTimeDays, nil
}

// validateInputs fails fast on configuration errors before any explosion starts
func (s *MRPService) validateInputs(demands []*entities.Demand, catalog Catalog) error {
	if catalog.Articles == nil || catalog.BOM == nil || catalog.Stock == nil {
		return entities.NewConfigurationError("catalog", "articles, BOM and stock repositories are required")
	}

	for i, demand := range demands {
		if err := demand.Validate(); err != nil {
			return fmt.Errorf("demand %d: %w", i, err)
		}
	}

	articles, err := catalog.Articles.GetAllArticles()
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}
	for _, article := range articles {
		if err := article.Validate(); err != nil {
			return err
		}
	}

	lines, err := catalog.BOM.GetAllBOMLines()
	if err != nil {
		return fmt.Errorf("failed to list BOM lines: %w", err)
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	return nil
}
