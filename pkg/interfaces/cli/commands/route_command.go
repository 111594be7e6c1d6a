package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/application/services/routing"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/scenario"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

// RouteConfig holds configuration for the route command
type RouteConfig struct {
	Scenario  string
	Format    string
	OutputDir string
	Verbose   bool
	Oracle    string
	Improve   string
	// Vehicles and Capacity override the scenario fleet when positive
	Vehicles int
	Capacity float64
}

// RouteCommand plans delivery routes for the stops of a scenario
type RouteCommand struct {
	config  RouteConfig
	runtime *Runtime
}

// NewRouteCommand creates a new route command
func NewRouteCommand(config RouteConfig, runtime *Runtime) *RouteCommand {
	return &RouteCommand{config: config, runtime: runtime}
}

// Execute runs the route command
func (c *RouteCommand) Execute(ctx context.Context, w io.Writer) error {
	if c.config.Scenario == "" {
		return entities.NewConfigurationError("scenario", "a scenario file is required")
	}
	if err := validFormat(c.config.Format); err != nil {
		return err
	}

	s, err := scenario.Load(c.config.Scenario)
	if err != nil {
		return err
	}
	return runRoutes(ctx, w, c.runtime, s, c.config)
}

func runRoutes(ctx context.Context, w io.Writer, runtime *Runtime, s *scenario.Scenario, cfg RouteConfig) error {
	if !s.HasRouting() {
		return entities.NewConfigurationError("stops", "scenario %s has no depots or stops", s.Name)
	}

	improveName := runtime.Config.Routing.Improve
	if cfg.Improve != "" {
		improveName = cfg.Improve
	}
	improve, err := routing.ParseImproveMode(improveName)
	if err != nil {
		return err
	}

	fleet := s.Fleet
	if cfg.Vehicles > 0 {
		fleet.VehicleCount = cfg.Vehicles
	}
	if cfg.Capacity > 0 {
		fleet.VehicleCapacity = decimal.NewFromFloat(cfg.Capacity)
	}

	orchestrator, err := runtime.Orchestrator(cfg.Oracle)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := orchestrator.PlanRoutes(ctx, routing.PlanRequest{
		Points:          s.Points,
		VehicleCapacity: fleet.VehicleCapacity,
		VehicleCount:    fleet.VehicleCount,
		Improve:         improve,
	})
	if err != nil {
		return fmt.Errorf("error planning routes: %w", err)
	}

	return output.GenerateRouting(w, result, output.Config{
		Format:    cfg.Format,
		OutputDir: cfg.OutputDir,
		Verbose:   cfg.Verbose,
		Elapsed:   time.Since(start),
	})
}
