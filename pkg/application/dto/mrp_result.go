package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// MRPResult contains the complete output of an MRP run
type MRPResult struct {
	RunID           string                          `json:"run_id,omitempty"`
	OrderLines      []entities.OrderLine            `json:"order_lines"`
	SkippedArticles []entities.ArticleCode          `json:"skipped_articles"`
	TruncatedCycles [][]entities.ArticleCode        `json:"truncated_cycles"`
	Summary         MRPSummary                      `json:"summary"`
	CriticalPaths   []entities.CriticalPathAnalysis `json:"critical_paths,omitempty"`
}

// MRPSummary holds the headline indicators of a run
type MRPSummary struct {
	OrderCount          int             `json:"order_count"`
	CriticalOrders      int             `json:"critical_orders"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	MeanLeadTimeDays    decimal.Decimal `json:"mean_lead_time_days"`
	PurchaseOrders      int             `json:"purchase_orders"`
	ManufacturingOrders int             `json:"manufacturing_orders"`
}

// Summarize computes the summary indicators of a set of order lines
func Summarize(lines []entities.OrderLine) MRPSummary {
	summary := MRPSummary{
		OrderCount:       len(lines),
		TotalCost:        decimal.Zero,
		MeanLeadTimeDays: decimal.Zero,
	}
	if len(lines) == 0 {
		return summary
	}

	totalLead := 0
	for _, line := range lines {
		summary.TotalCost = summary.TotalCost.Add(line.Cost)
		totalLead += line.LeadTimeDays
		if line.IsCritical() {
			summary.CriticalOrders++
		}
		switch line.OrderType {
		case entities.Purchase:
			summary.PurchaseOrders++
		case entities.Manufacturing:
			summary.ManufacturingOrders++
		}
	}
	summary.MeanLeadTimeDays = decimal.NewFromInt(int64(totalLead)).
		Div(decimal.NewFromInt(int64(len(lines)))).
		Round(2)

	return summary
}
