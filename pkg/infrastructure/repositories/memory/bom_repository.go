package memory

import (
	"fmt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// BOMRepository stores BOM lines in a flat slice indexed by parent code
type BOMRepository struct {
	bomLines   []entities.BOMLine
	bomIndexes map[entities.ArticleCode][]int
}

// NewBOMRepository creates a BOM repository sized for the expected input
func NewBOMRepository(expectedParents, expectedBOMLines int) *BOMRepository {
	return &BOMRepository{
		bomLines:   make([]entities.BOMLine, 0, expectedBOMLines),
		bomIndexes: make(map[entities.ArticleCode][]int, expectedParents),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)

// LoadBOMLines validates and loads BOM lines
func (r *BOMRepository) LoadBOMLines(lines []*entities.BOMLine) error {
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("bom line %d: %w", i, err)
		}
		r.AddBOMLine(*line)
	}
	return nil
}

// AddBOMLine adds a BOM line to the repository
func (r *BOMRepository) AddBOMLine(line entities.BOMLine) {
	index := len(r.bomLines)
	r.bomLines = append(r.bomLines, line)
	r.bomIndexes[line.ParentCode] = append(r.bomIndexes[line.ParentCode], index)
}

// GetBOMLines returns all BOM lines whose parent is code
func (r *BOMRepository) GetBOMLines(code entities.ArticleCode) ([]*entities.BOMLine, error) {
	indexes, exists := r.bomIndexes[code]
	if !exists {
		return []*entities.BOMLine{}, nil
	}

	lines := make([]*entities.BOMLine, 0, len(indexes))
	for _, index := range indexes {
		line := r.bomLines[index]
		lines = append(lines, &line)
	}

	return lines, nil
}

// GetAllBOMLines returns all BOM lines
func (r *BOMRepository) GetAllBOMLines() ([]*entities.BOMLine, error) {
	lines := make([]*entities.BOMLine, 0, len(r.bomLines))
	for i := range r.bomLines {
		line := r.bomLines[i]
		lines = append(lines, &line)
	}
	return lines, nil
}

// HasComponents reports whether code is the parent of at least one line
func (r *BOMRepository) HasComponents(code entities.ArticleCode) bool {
	return len(r.bomIndexes[code]) > 0
}
