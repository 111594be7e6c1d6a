package bom_validator

import (
	"fmt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	HasCycles        bool                     `json:"has_cycles"`
	CyclePaths       [][]entities.ArticleCode `json:"cycle_paths"`
	DuplicateLines   []entities.BOMLine       `json:"duplicate_lines"`
	UnknownArticles  []entities.ArticleCode   `json:"unknown_articles"`
	OrphanedArticles []entities.ArticleCode   `json:"orphaned_articles"`
	Errors           []string                 `json:"errors"`
}

// IsValid reports whether no errors were found
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateBOM checks a set of BOM lines for cycles and duplicate parent/component pairs
func ValidateBOM(bomLines []entities.BOMLine) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:       make([][]entities.ArticleCode, 0),
		DuplicateLines:   make([]entities.BOMLine, 0),
		UnknownArticles:  make([]entities.ArticleCode, 0),
		OrphanedArticles: make([]entities.ArticleCode, 0),
		Errors:           make([]string, 0),
	}

	parents, adjacencyMap := buildAdjacencyMap(bomLines)

	result.CyclePaths = detectCycles(parents, adjacencyMap)
	result.HasCycles = len(result.CyclePaths) > 0
	result.DuplicateLines = detectDuplicateLines(bomLines)

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, (&entities.CyclicBOMError{Path: cycle}).Error())
	}

	if len(result.DuplicateLines) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("found %d duplicate BOM lines", len(result.DuplicateLines)))
	}

	return result
}

// ValidateReferences checks that every code used by the BOM is in the article catalog
// and lists catalog articles that no BOM line and no root demand uses
func ValidateReferences(
	bomLines []entities.BOMLine,
	articles []entities.Article,
	roots []entities.ArticleCode,
) *ValidationResult {
	result := &ValidationResult{
		UnknownArticles:  make([]entities.ArticleCode, 0),
		OrphanedArticles: make([]entities.ArticleCode, 0),
		Errors:           make([]string, 0),
	}

	known := make(map[entities.ArticleCode]bool, len(articles))
	for _, article := range articles {
		known[article.Code] = true
	}

	used := make(map[entities.ArticleCode]bool)
	for _, root := range roots {
		used[root] = true
	}

	reported := make(map[entities.ArticleCode]bool)
	for _, line := range bomLines {
		for _, code := range []entities.ArticleCode{line.ParentCode, line.ComponentCode} {
			used[code] = true
			if !known[code] && !reported[code] {
				reported[code] = true
				result.UnknownArticles = append(result.UnknownArticles, code)
			}
		}
	}

	for _, article := range articles {
		if !used[article.Code] {
			result.OrphanedArticles = append(result.OrphanedArticles, article.Code)
		}
	}

	if len(result.UnknownArticles) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM references unknown articles: %v", result.UnknownArticles))
	}

	return result
}

// buildAdjacencyMap creates parent -> components relationships, keeping first-seen parent order
func buildAdjacencyMap(bomLines []entities.BOMLine) ([]entities.ArticleCode, map[entities.ArticleCode][]entities.ArticleCode) {
	adjacencyMap := make(map[entities.ArticleCode][]entities.ArticleCode)
	parents := make([]entities.ArticleCode, 0)

	for _, line := range bomLines {
		children, exists := adjacencyMap[line.ParentCode]
		if !exists {
			parents = append(parents, line.ParentCode)
		}

		found := false
		for _, child := range children {
			if child == line.ComponentCode {
				found = true
				break
			}
		}

		if !found {
			adjacencyMap[line.ParentCode] = append(children, line.ComponentCode)
		}
	}

	return parents, adjacencyMap
}

// detectCycles uses DFS with a recursion stack to find cycles
func detectCycles(
	parents []entities.ArticleCode,
	adjacencyMap map[entities.ArticleCode][]entities.ArticleCode,
) [][]entities.ArticleCode {
	visited := make(map[entities.ArticleCode]bool)
	recursionStack := make(map[entities.ArticleCode]bool)
	cycles := make([][]entities.ArticleCode, 0)

	for _, parent := range parents {
		if !visited[parent] {
			dfsDetectCycle(parent, adjacencyMap, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

func dfsDetectCycle(
	current entities.ArticleCode,
	adjacencyMap map[entities.ArticleCode][]entities.ArticleCode,
	visited map[entities.ArticleCode]bool,
	recursionStack map[entities.ArticleCode]bool,
	path []entities.ArticleCode,
	cycles *[][]entities.ArticleCode,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	for _, child := range adjacencyMap[current] {
		if !visited[child] {
			dfsDetectCycle(child, adjacencyMap, visited, recursionStack, path, cycles)
			continue
		}
		if !recursionStack[child] {
			continue
		}
		for i, code := range path {
			if code == child {
				cycle := make([]entities.ArticleCode, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	recursionStack[current] = false
}

// detectDuplicateLines finds lines repeating a parent/component pair
func detectDuplicateLines(bomLines []entities.BOMLine) []entities.BOMLine {
	type pair struct {
		parent    entities.ArticleCode
		component entities.ArticleCode
	}
	seen := make(map[pair]bool)
	duplicates := make([]entities.BOMLine, 0)

	for _, line := range bomLines {
		key := pair{line.ParentCode, line.ComponentCode}
		if seen[key] {
			duplicates = append(duplicates, line)
			continue
		}
		seen[key] = true
	}

	return duplicates
}
