package commands

import (
	"github.com/vsinha/supplyplan/pkg/application/services/mrp"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	"github.com/vsinha/supplyplan/pkg/application/services/routing"
	"github.com/vsinha/supplyplan/pkg/config"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	"github.com/vsinha/supplyplan/pkg/infrastructure/routing/osrm"
	"github.com/vsinha/supplyplan/pkg/logger"
)

// Runtime bundles the configuration and shared services of every command
type Runtime struct {
	Config *config.Config
	Log    *logger.Logger
	Store  *events.InMemoryEventStore
}

// NewRuntime creates a runtime with an empty event journal
func NewRuntime(cfg *config.Config, log *logger.Logger) *Runtime {
	if log == nil {
		log = logger.Nop()
	}
	return &Runtime{Config: cfg, Log: log, Store: events.NewInMemoryEventStore(log)}
}

// EngineConfig returns the MRP policies from configuration
func (r *Runtime) EngineConfig() (mrp.EngineConfig, error) {
	cycle, err := mrp.ParseCyclePolicy(r.Config.MRP.CyclePolicy)
	if err != nil {
		return mrp.EngineConfig{}, err
	}
	unknown, err := mrp.ParseUnknownArticlePolicy(r.Config.MRP.UnknownArticlePolicy)
	if err != nil {
		return mrp.EngineConfig{}, err
	}
	return mrp.EngineConfig{CyclePolicy: cycle, UnknownArticlePolicy: unknown}, nil
}

// Oracle builds the distance oracle named by override, or by configuration when override is empty.
// The road oracle falls back to haversine distances when fallback is enabled.
func (r *Runtime) Oracle(override string) (routing.DistanceOracle, error) {
	cfg := r.Config.Routing
	name := cfg.Oracle
	if override != "" {
		name = override
	}

	offline := routing.NewHaversineOracle(cfg.SpeedKmh)
	switch name {
	case "haversine":
		return offline, nil
	case "road":
	default:
		return nil, unknownOracle(name)
	}

	client, err := osrm.New(osrm.Config{
		BaseURL:       cfg.ProviderURL,
		Profile:       cfg.ProviderProfile,
		Timeout:       cfg.ProviderTimeout,
		MaxConcurrent: cfg.ProviderMaxConcurrent,
	})
	if err != nil {
		if cfg.Fallback {
			r.Log.Warn().Err(err).Msg("road provider unusable, using haversine distances")
			return offline, nil
		}
		return nil, err
	}

	road := routing.NewRoadOracle(client, cfg.ProviderTimeout)
	if !cfg.Fallback {
		return road, nil
	}
	return routing.NewFallbackOracle(road, offline, r.Log), nil
}

// Orchestrator builds a planning orchestrator on the runtime journal
func (r *Runtime) Orchestrator(oracleOverride string) (*orchestration.PlanningOrchestrator, error) {
	oracle, err := r.Oracle(oracleOverride)
	if err != nil {
		return nil, err
	}
	return orchestration.NewPlanningOrchestrator(oracle, r.Store, r.Log), nil
}
