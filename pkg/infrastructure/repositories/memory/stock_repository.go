package memory

import (
	"fmt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// StockRepository keeps at most one stock record per article
type StockRepository struct {
	stock    []entities.Stock
	stockMap map[entities.ArticleCode]int
}

// NewStockRepository creates a new in-memory stock repository
func NewStockRepository() *StockRepository {
	return &StockRepository{
		stock:    make([]entities.Stock, 0),
		stockMap: make(map[entities.ArticleCode]int),
	}
}

// Verify interface compliance
var _ repositories.StockRepository = (*StockRepository)(nil)

// LoadStock validates and loads stock records. A second record for the same article is rejected.
func (r *StockRepository) LoadStock(stock []*entities.Stock) error {
	for i, record := range stock {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("stock %d: %w", i, err)
		}
		if _, exists := r.stockMap[record.ArticleCode]; exists {
			return entities.NewConfigurationError("article_code", "duplicate stock record for %s", record.ArticleCode)
		}
		r.stockMap[record.ArticleCode] = len(r.stock)
		r.stock = append(r.stock, *record)
	}
	return nil
}

// GetStock returns the stock of code, defaulting to zero on hand and zero safety
func (r *StockRepository) GetStock(code entities.ArticleCode) (entities.Stock, error) {
	index, exists := r.stockMap[code]
	if !exists {
		return entities.EmptyStock(code), nil
	}
	return r.stock[index], nil
}

// GetAllStock returns all stock records in load order
func (r *StockRepository) GetAllStock() ([]*entities.Stock, error) {
	out := make([]*entities.Stock, 0, len(r.stock))
	for i := range r.stock {
		record := r.stock[i]
		out = append(out, &record)
	}
	return out, nil
}
