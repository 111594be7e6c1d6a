package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// BOMRepository provides access to Bill of Materials data
type BOMRepository interface {
	// GetBOMLines returns the lines whose parent is code, in load order
	GetBOMLines(code entities.ArticleCode) ([]*entities.BOMLine, error)
	GetAllBOMLines() ([]*entities.BOMLine, error)
	LoadBOMLines(lines []*entities.BOMLine) error
}
