package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/criticalpath"
	"github.com/vsinha/supplyplan/pkg/application/services/mrp"
	"github.com/vsinha/supplyplan/pkg/application/services/routing"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	"github.com/vsinha/supplyplan/pkg/logger"
)

type runIDKey struct{}

// WithRunID returns a context carrying the run id
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id set by WithRunID, or ""
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey{}).(string)
	return runID
}

// MRPRequest is the input of an MRP run
type MRPRequest struct {
	Demands []*entities.Demand
	Catalog mrp.Catalog
	Policy  mrp.EngineConfig
	// CriticalPathTopN > 0 adds a critical path analysis per demanded article
	CriticalPathTopN int
}

// PlanningOrchestrator runs MRP and routing jobs, giving each run an id and a journal
type PlanningOrchestrator struct {
	oracle routing.DistanceOracle
	store  events.EventStore
	log    *logger.Logger
	newID  func() string
}

// NewPlanningOrchestrator creates an orchestrator. A fallback oracle gets its
// fallbacks journaled on the run that triggered them.
func NewPlanningOrchestrator(oracle routing.DistanceOracle, store events.EventStore, log *logger.Logger) *PlanningOrchestrator {
	if log == nil {
		log = logger.Nop()
	}
	po := &PlanningOrchestrator{
		oracle: oracle,
		store:  store,
		log:    log.Named("orchestrator"),
		newID:  func() string { return uuid.NewString() },
	}

	if fallback, ok := oracle.(*routing.FallbackOracle); ok {
		fallback.OnFallback(func(ctx context.Context, err error) {
			if runID := RunIDFromContext(ctx); runID != "" {
				po.emit(events.NewOracleFallbackEvent(runID, err))
			}
		})
	}

	return po
}

// Events returns the journal of a run. Unknown run ids wrap entities.ErrNotFound.
func (po *PlanningOrchestrator) Events(runID string) ([]events.Event, error) {
	if !po.store.HasStream(runID) {
		return nil, fmt.Errorf("run %s: %w", runID, entities.ErrNotFound)
	}
	return po.store.ReadEvents(runID, 1)
}

// RunMRP runs the MRP engine and journals its outcome
func (po *PlanningOrchestrator) RunMRP(ctx context.Context, req MRPRequest) (*dto.MRPResult, error) {
	runID := po.newID()
	ctx = WithRunID(ctx, runID)
	start := time.Now()
	log := po.runLogger(runID)

	po.emit(events.NewRunStartedEvent(runID, events.MRPRun, len(req.Demands)))

	policy := req.Policy
	if policy.Logger == nil {
		policy.Logger = log
	}
	result, err := mrp.NewMRPServiceWithConfig(policy).Run(ctx, req.Demands, req.Catalog)
	if err != nil {
		po.fail(runID, events.MRPRun, err)
		return nil, err
	}
	result.RunID = runID

	if req.CriticalPathTopN > 0 {
		paths, err := po.criticalPaths(ctx, req)
		if err != nil {
			po.fail(runID, events.MRPRun, err)
			return nil, err
		}
		result.CriticalPaths = paths
	}

	for _, code := range result.SkippedArticles {
		po.emit(events.NewArticleSkippedEvent(runID, code))
	}
	for _, cycle := range result.TruncatedCycles {
		po.emit(events.NewBOMCycleTruncatedEvent(runID, cycle))
	}
	for _, line := range result.OrderLines {
		po.emit(events.NewOrderPlannedEvent(runID, line))
	}

	elapsed := time.Since(start)
	po.emit(events.NewRunCompletedEvent(runID, events.MRPRun, len(result.OrderLines), elapsed.Milliseconds()))
	log.Info().
		Int("order_lines", len(result.OrderLines)).
		Str("total_cost", result.Summary.TotalCost.StringFixed(2)).
		Dur("elapsed", elapsed).
		Msg("MRP run finished")

	return result, nil
}

// PlanRoutes computes a distance matrix, builds routes and journals them
func (po *PlanningOrchestrator) PlanRoutes(ctx context.Context, req routing.PlanRequest) (*dto.RoutingResult, error) {
	runID := po.newID()
	ctx = WithRunID(ctx, runID)
	start := time.Now()
	log := po.runLogger(runID)

	po.emit(events.NewRunStartedEvent(runID, events.RoutingRun, len(req.Points)))

	result, err := routing.NewPlanner(po.oracle, log).Plan(ctx, req)
	if err != nil {
		po.fail(runID, events.RoutingRun, err)
		return nil, err
	}
	result.RunID = runID

	for _, route := range result.Routes {
		po.emit(events.NewRouteBuiltEvent(runID, route))
	}
	for _, point := range result.Unrouted {
		po.emit(events.NewPointUnroutedEvent(runID, point))
	}

	elapsed := time.Since(start)
	po.emit(events.NewRunCompletedEvent(runID, events.RoutingRun, len(result.Routes), elapsed.Milliseconds()))
	if !result.IsComplete() {
		log.Warn().Int("unrouted", len(result.Unrouted)).Msg("routing plan is partial")
	}

	return result, nil
}

func (po *PlanningOrchestrator) criticalPaths(ctx context.Context, req MRPRequest) ([]entities.CriticalPathAnalysis, error) {
	service := criticalpath.NewCriticalPathService(req.Catalog.BOM, req.Catalog.Articles, req.Catalog.Suppliers)

	seen := make(map[entities.ArticleCode]bool)
	analyses := make([]entities.CriticalPathAnalysis, 0)
	for _, demand := range req.Demands {
		if seen[demand.ArticleCode] {
			continue
		}
		seen[demand.ArticleCode] = true

		if _, err := req.Catalog.Articles.GetArticle(demand.ArticleCode); err != nil {
			continue
		}
		analysis, err := service.AnalyzeCriticalPath(ctx, demand.ArticleCode, req.CriticalPathTopN)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze critical path of %s: %w", demand.ArticleCode, err)
		}
		analyses = append(analyses, *analysis)
	}
	return analyses, nil
}

func (po *PlanningOrchestrator) runLogger(runID string) *logger.Logger {
	return logger.FromZerolog(po.log.With().Str("run_id", runID).Logger())
}

func (po *PlanningOrchestrator) fail(runID string, kind events.RunKind, err error) {
	po.emit(events.NewRunFailedEvent(runID, kind, err))
	po.log.Error().Err(err).Str("run_id", runID).Str("kind", string(kind)).Msg("run failed")
}

func (po *PlanningOrchestrator) emit(event events.Event) {
	if err := po.store.AppendEvent(event.StreamID(), event); err != nil {
		po.log.Error().Err(err).Str("event_type", event.Type()).Msg("failed to journal event")
	}
}
