package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vsinha/supplyplan/pkg/application/services/mrp"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	"github.com/vsinha/supplyplan/pkg/application/services/routing"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/scenario"
)

func main() {
	ctx := context.Background()

	s := scenario.Furniture()
	repos, err := s.Repositories()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenario: %v\n", err)
		os.Exit(1)
	}

	store := events.NewInMemoryEventStore(nil)
	orchestrator := orchestration.NewPlanningOrchestrator(routing.NewHaversineOracle(0), store, nil)

	result, err := orchestrator.RunMRP(ctx, orchestration.MRPRequest{
		Demands: s.Demands,
		Catalog: mrp.Catalog{
			Articles:  repos.Articles,
			BOM:       repos.BOM,
			Stock:     repos.Stock,
			Suppliers: repos.Suppliers,
		},
		CriticalPathTopN: 1,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "MRP failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("MRP run %s: %d order lines, total cost %s\n",
		result.RunID, result.Summary.OrderCount, result.Summary.TotalCost.StringFixed(2))
	for _, line := range result.OrderLines {
		fmt.Printf("  %-6s %-4s %-8s net %-6s order %s due %s\n",
			line.ArticleCode, line.OrderType.Code(), line.Client, line.NetQty,
			line.OrderDate.Format("2006-01-02"), line.DueDate.Format("2006-01-02"))
	}
	for _, analysis := range result.CriticalPaths {
		fmt.Printf("  critical path of %s: %s\n", analysis.TopLevelArticle, analysis.GetCriticalPathSummary())
	}

	routes, err := orchestrator.PlanRoutes(ctx, routing.PlanRequest{
		Points:          s.Points,
		VehicleCount:    s.Fleet.VehicleCount,
		VehicleCapacity: s.Fleet.VehicleCapacity,
		Improve:         routing.ImproveAll,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "routing failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nRouting run %s: %d vehicles, %.1f km, efficiency %s\n",
		routes.RunID, routes.Metrics.VehiclesUsed, routes.Metrics.TotalDistance/1000, routes.Metrics.Efficiency)
	for _, route := range routes.Routes {
		fmt.Printf("  vehicle %d: %v load %s\n", route.VehicleIndex, route.Stops, route.TotalLoad)
	}
	for _, point := range routes.Unrouted {
		fmt.Printf("  unrouted %s (%s)\n", point.ID, point.Reason)
	}

	journal, _ := store.ReadAllEvents(0)
	fmt.Printf("\n%d events journaled\n", len(journal))
}
