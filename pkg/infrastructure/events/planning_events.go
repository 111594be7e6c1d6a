package events

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const (
	RunStartedEvent   = "run.started"
	RunCompletedEvent = "run.completed"
	RunFailedEvent    = "run.failed"

	ArticleSkippedEvent    = "article.skipped"
	BOMCycleTruncatedEvent = "bom.cycle.truncated"
	OrderPlannedEvent      = "order.planned"

	RouteBuiltEvent     = "route.built"
	PointUnroutedEvent  = "point.unrouted"
	OracleFallbackEvent = "oracle.fallback"
)

// RunKind tells MRP runs apart from routing runs
type RunKind string

const (
	MRPRun     RunKind = "mrp"
	RoutingRun RunKind = "routing"
)

type RunStarted struct {
	Kind   RunKind `json:"kind"`
	Inputs int     `json:"inputs"`
}

type RunCompleted struct {
	Kind       RunKind `json:"kind"`
	Outputs    int     `json:"outputs"`
	DurationMs int64   `json:"duration_ms"`
}

type RunFailed struct {
	Kind  RunKind `json:"kind"`
	Error string  `json:"error"`
}

type ArticleSkipped struct {
	ArticleCode entities.ArticleCode `json:"article_code"`
}

type BOMCycleTruncated struct {
	Path []entities.ArticleCode `json:"path"`
}

type OrderPlanned struct {
	Order entities.OrderLine `json:"order"`
}

type RouteBuilt struct {
	Route entities.Route `json:"route"`
}

type PointUnrouted struct {
	Point entities.UnroutedPoint `json:"point"`
}

type OracleFallback struct {
	Reason string `json:"reason"`
}

func NewRunStartedEvent(runID string, kind RunKind, inputs int) Event {
	return NewEvent(RunStartedEvent, runID, RunStarted{Kind: kind, Inputs: inputs})
}

func NewRunCompletedEvent(runID string, kind RunKind, outputs int, durationMs int64) Event {
	return NewEvent(RunCompletedEvent, runID, RunCompleted{Kind: kind, Outputs: outputs, DurationMs: durationMs})
}

func NewRunFailedEvent(runID string, kind RunKind, err error) Event {
	return NewEvent(RunFailedEvent, runID, RunFailed{Kind: kind, Error: err.Error()})
}

func NewArticleSkippedEvent(runID string, code entities.ArticleCode) Event {
	return NewEvent(ArticleSkippedEvent, runID, ArticleSkipped{ArticleCode: code})
}

func NewBOMCycleTruncatedEvent(runID string, path []entities.ArticleCode) Event {
	return NewEvent(BOMCycleTruncatedEvent, runID, BOMCycleTruncated{Path: path})
}

func NewOrderPlannedEvent(runID string, order entities.OrderLine) Event {
	return NewEvent(OrderPlannedEvent, runID, OrderPlanned{Order: order})
}

func NewRouteBuiltEvent(runID string, route entities.Route) Event {
	return NewEvent(RouteBuiltEvent, runID, RouteBuilt{Route: route})
}

func NewPointUnroutedEvent(runID string, point entities.UnroutedPoint) Event {
	return NewEvent(PointUnroutedEvent, runID, PointUnrouted{Point: point})
}

func NewOracleFallbackEvent(runID string, err error) Event {
	return NewEvent(OracleFallbackEvent, runID, OracleFallback{Reason: err.Error()})
}

// TotalCost sums the cost of the order.planned events of a stream
func TotalCost(events []Event) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if planned, ok := e.Data().(OrderPlanned); ok {
			total = total.Add(planned.Order.Cost)
		}
	}
	return total
}
