package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Elapsed   time.Duration
}

// GenerateMRP writes an MRP result in the configured format
func GenerateMRP(w io.Writer, result *dto.MRPResult, config Config) error {
	switch config.Format {
	case "", "text":
		return writeMRPText(w, result, config)
	case "json":
		return writeJSON(w, result, config, "mrp_results.json")
	case "csv":
		return writeCSV(w, config, "order_lines.csv", mrpRecords(result))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// GenerateRouting writes a routing result in the configured format
func GenerateRouting(w io.Writer, result *dto.RoutingResult, config Config) error {
	switch config.Format {
	case "", "text":
		return writeRoutingText(w, result, config)
	case "json":
		return writeJSON(w, result, config, "routes.json")
	case "csv":
		return writeCSV(w, config, "routes.csv", routingRecords(result))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func writeMRPText(w io.Writer, result *dto.MRPResult, config Config) error {
	summary := result.Summary

	fmt.Fprintf(w, "MRP Results\n")
	fmt.Fprintf(w, "===========\n\n")
	if result.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", result.RunID)
	}
	fmt.Fprintf(w, "Order lines: %d (%d purchase, %d manufacturing)\n",
		summary.OrderCount, summary.PurchaseOrders, summary.ManufacturingOrders)
	fmt.Fprintf(w, "Critical orders: %d\n", summary.CriticalOrders)
	fmt.Fprintf(w, "Total cost: %s\n", summary.TotalCost.StringFixed(2))
	fmt.Fprintf(w, "Mean lead time: %s days\n", summary.MeanLeadTimeDays.StringFixed(2))
	if config.Verbose {
		fmt.Fprintf(w, "Elapsed: %v\n", config.Elapsed)
	}
	fmt.Fprintln(w)

	if len(result.OrderLines) > 0 {
		fmt.Fprintf(w, "%-10s %-20s %-4s %-10s %10s %10s %5s %-12s %-12s %12s\n",
			"Article", "Name", "Type", "Client", "Gross", "Net", "Lead", "Order Date", "Due Date", "Cost")
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 112))

		for _, line := range result.OrderLines {
			marker := ""
			if line.IsCritical() {
				marker = " !"
			}
			fmt.Fprintf(w, "%-10s %-20s %-4s %-10s %10s %10s %5d %-12s %-12s %12s%s\n",
				line.ArticleCode,
				truncate(line.ArticleName, 20),
				line.OrderType.Code(),
				line.Client,
				line.GrossQty.String(),
				line.NetQty.String(),
				line.LeadTimeDays,
				line.OrderDate.Format(dateLayout),
				line.DueDate.Format(dateLayout),
				line.Cost.StringFixed(2),
				marker)
		}
		fmt.Fprintln(w)
	}

	if len(result.SkippedArticles) > 0 {
		codes := make([]string, len(result.SkippedArticles))
		for i, code := range result.SkippedArticles {
			codes[i] = string(code)
		}
		fmt.Fprintf(w, "Skipped unknown articles: %s\n", strings.Join(codes, ", "))
	}

	for _, cycle := range result.TruncatedCycles {
		fmt.Fprintf(w, "Truncated BOM cycle: %s\n", joinCodes(cycle))
	}

	for _, analysis := range result.CriticalPaths {
		fmt.Fprintf(w, "%s: %s\n", analysis.TopLevelArticle, analysis.GetCriticalPathSummary())
		for i, path := range analysis.TopPaths {
			fmt.Fprintf(w, "  %d. %s\n", i+1, path.GetPathSummary())
		}
	}

	return nil
}

func writeRoutingText(w io.Writer, result *dto.RoutingResult, config Config) error {
	metrics := result.Metrics

	fmt.Fprintf(w, "Routing Results\n")
	fmt.Fprintf(w, "===============\n\n")
	if result.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", result.RunID)
	}
	fmt.Fprintf(w, "Distance source: %s\n", result.MatrixSource)
	fmt.Fprintf(w, "Vehicles used: %d\n", metrics.VehiclesUsed)
	fmt.Fprintf(w, "Total distance: %.1f km\n", metrics.TotalDistance/1000)
	if metrics.TotalDuration > 0 {
		fmt.Fprintf(w, "Total duration: %s\n", (time.Duration(metrics.TotalDuration) * time.Second).Round(time.Minute))
	}
	fmt.Fprintf(w, "Assigned demand: %s (efficiency %s)\n", metrics.AssignedDemand.String(), metrics.Efficiency.String())
	if config.Verbose {
		fmt.Fprintf(w, "Elapsed: %v\n", config.Elapsed)
	}
	fmt.Fprintln(w)

	for _, route := range result.Routes {
		fmt.Fprintf(w, "Vehicle %d [%s] load %s (%s) %.1f km\n",
			route.VehicleIndex, route.DepotID, route.TotalLoad.String(), route.LoadFactor.String(), route.TotalDistance/1000)
		fmt.Fprintf(w, "  %s -> %s -> %s\n", route.DepotID, strings.Join(route.Stops, " -> "), route.DepotID)
	}

	if len(result.Unrouted) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Unrouted stops: %d\n", len(result.Unrouted))
		for _, point := range result.Unrouted {
			fmt.Fprintf(w, "  %-12s %8s  %s\n", point.ID, point.DemandWeight.String(), point.Reason)
		}
	}

	return nil
}

func writeJSON(w io.Writer, v interface{}, config Config, filename string) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	path, err := outputPath(config.OutputDir, filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(w, "JSON results saved to: %s\n", path)
	}
	return nil
}

func writeCSV(w io.Writer, config Config, filename string, records [][]string) error {
	target := w
	var path string
	if config.OutputDir != "" {
		var err error
		if path, err = outputPath(config.OutputDir, filename); err != nil {
			return err
		}
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer file.Close()
		target = file
	}

	writer := csv.NewWriter(target)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}

	if path != "" && config.Verbose {
		fmt.Fprintf(w, "CSV results saved to: %s\n", path)
	}
	return nil
}

func mrpRecords(result *dto.MRPResult) [][]string {
	records := [][]string{{
		"article_code", "article_name", "order_type", "client", "gross_qty", "net_qty",
		"lead_time_days", "order_date", "due_date", "cost",
	}}
	for _, line := range result.OrderLines {
		records = append(records, []string{
			string(line.ArticleCode),
			line.ArticleName,
			line.OrderType.Code(),
			line.Client,
			line.GrossQty.String(),
			line.NetQty.String(),
			strconv.Itoa(line.LeadTimeDays),
			line.OrderDate.Format(dateLayout),
			line.DueDate.Format(dateLayout),
			line.Cost.StringFixed(2),
		})
	}
	return records
}

func routingRecords(result *dto.RoutingResult) [][]string {
	records := [][]string{{"vehicle", "depot", "sequence", "point_id", "status"}}
	for _, route := range result.Routes {
		for i, stop := range route.Stops {
			records = append(records, []string{
				strconv.Itoa(route.VehicleIndex), route.DepotID, strconv.Itoa(i + 1), stop, "routed",
			})
		}
	}
	for _, point := range result.Unrouted {
		records = append(records, []string{"", "", "", point.ID, string(point.Reason)})
	}
	return records
}

func outputPath(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(dir, filename), nil
}

func joinCodes(codes []entities.ArticleCode) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = string(code)
	}
	return strings.Join(parts, " -> ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
