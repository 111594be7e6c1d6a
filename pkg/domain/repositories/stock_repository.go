package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// StockRepository provides access to on-hand and safety stock
type StockRepository interface {
	// GetStock returns the stock record of code, or an empty record when none exists
	GetStock(code entities.ArticleCode) (entities.Stock, error)
	GetAllStock() ([]*entities.Stock, error)
	LoadStock(stock []*entities.Stock) error
}
