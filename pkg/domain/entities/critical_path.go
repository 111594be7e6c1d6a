package entities

import (
	"fmt"
	"time"
)

// CriticalPathNode is one article on a lead-time chain
type CriticalPathNode struct {
	ArticleCode    ArticleCode `json:"article_code"`
	Name           string      `json:"name"`
	LeadTimeDays   int         `json:"lead_time_days"`
	CumulativeTime int         `json:"cumulative_time"`
	Level          int         `json:"level"`
}

// CriticalPath is a root-to-leaf chain through the BOM with its cumulative lead time
type CriticalPath struct {
	TotalLeadTime     int                `json:"total_lead_time"`
	PathLength        int                `json:"path_length"`
	Path              []ArticleCode      `json:"path"`
	PathDetails       []CriticalPathNode `json:"path_details"`
	BottleneckArticle ArticleCode        `json:"bottleneck_article"`
}

// CriticalPathAnalysis contains the results of critical path analysis
type CriticalPathAnalysis struct {
	TopLevelArticle ArticleCode    `json:"top_level_article"`
	AnalysisDate    time.Time      `json:"analysis_date"`
	CriticalPath    CriticalPath   `json:"critical_path"`
	TopPaths        []CriticalPath `json:"top_paths"`
	TotalPaths      int            `json:"total_paths"`
}

// GetCriticalPathSummary returns a formatted summary of the critical path
func (analysis *CriticalPathAnalysis) GetCriticalPathSummary() string {
	if len(analysis.TopPaths) == 0 {
		return "No critical path found"
	}

	cp := analysis.CriticalPath
	summary := fmt.Sprintf("Critical Path: %d days over %d levels", cp.TotalLeadTime, cp.PathLength)
	if cp.BottleneckArticle != "" {
		summary += fmt.Sprintf(" | Bottleneck: %s", cp.BottleneckArticle)
	}
	return summary
}

// GetPathSummary returns a formatted summary for a specific path
func (path *CriticalPath) GetPathSummary() string {
	return fmt.Sprintf("%d days - %d levels - %s",
		path.TotalLeadTime, path.PathLength, path.BottleneckArticle)
}
