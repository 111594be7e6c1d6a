package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/mrp"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	"github.com/vsinha/supplyplan/pkg/application/services/routing"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/services/bom_validator"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/supplyplan/pkg/logger"
)

const dateLayout = "2006-01-02"

// PlanningHandler serves MRP and routing runs
type PlanningHandler struct {
	orchestrator *orchestration.PlanningOrchestrator
	defaults     mrp.EngineConfig
	improve      routing.ImproveMode
	log          *logger.Logger
}

// NewPlanningHandler builds the handler. defaults apply when a request names no policy.
func NewPlanningHandler(
	orchestrator *orchestration.PlanningOrchestrator,
	defaults mrp.EngineConfig,
	improve routing.ImproveMode,
	log *logger.Logger,
) *PlanningHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PlanningHandler{orchestrator: orchestrator, defaults: defaults, improve: improve, log: log.Named("http")}
}

// RunMRP handles POST /v1/mrp/run
func (h *PlanningHandler) RunMRP(c *fiber.Ctx) error {
	var in dto.MRPRunRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	if len(in.Demands) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "demands is required"})
	}
	if c.QueryBool("validate") {
		if problems := validateBOM(in); len(problems) > 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_BOM", Message: strings.Join(problems, "; ")})
		}
	}

	req, err := h.mrpRequest(in)
	if err != nil {
		return h.fail(c, err)
	}

	result, err := h.orchestrator.RunMRP(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// PlanRoutes handles POST /v1/routes/plan
func (h *PlanningHandler) PlanRoutes(c *fiber.Ctx) error {
	var in dto.RoutePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	if len(in.Points) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "points is required"})
	}

	improve := h.improve
	if in.Improve != "" {
		mode, err := routing.ParseImproveMode(in.Improve)
		if err != nil {
			return h.fail(c, err)
		}
		improve = mode
	}

	result, err := h.orchestrator.PlanRoutes(c.UserContext(), routing.PlanRequest{
		Points:          in.Points,
		VehicleCapacity: in.VehicleCapacity,
		VehicleCount:    in.VehicleCount,
		Improve:         improve,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// RunEvents handles GET /v1/runs/:id/events
func (h *PlanningHandler) RunEvents(c *fiber.Ctx) error {
	id := c.Params("id")
	journal, err := h.orchestrator.Events(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"run_id": id, "events": journal})
}

func (h *PlanningHandler) mrpRequest(in dto.MRPRunRequest) (orchestration.MRPRequest, error) {
	policy := h.defaults
	policy.Logger = nil
	if in.CyclePolicy != "" {
		cycle, err := mrp.ParseCyclePolicy(in.CyclePolicy)
		if err != nil {
			return orchestration.MRPRequest{}, err
		}
		policy.CyclePolicy = cycle
	}
	if in.ArticlePolicy != "" {
		unknown, err := mrp.ParseUnknownArticlePolicy(in.ArticlePolicy)
		if err != nil {
			return orchestration.MRPRequest{}, err
		}
		policy.UnknownArticlePolicy = unknown
	}

	articles := memory.NewArticleRepository(len(in.Articles))
	if err := articles.LoadArticles(pointers(in.Articles)); err != nil {
		return orchestration.MRPRequest{}, err
	}
	bom := memory.NewBOMRepository(len(in.Articles), len(in.BOM))
	if err := bom.LoadBOMLines(pointers(in.BOM)); err != nil {
		return orchestration.MRPRequest{}, err
	}
	stock := memory.NewStockRepository()
	if err := stock.LoadStock(pointers(in.Stock)); err != nil {
		return orchestration.MRPRequest{}, err
	}
	suppliers := memory.NewSupplierRepository()
	if err := suppliers.LoadSuppliers(pointers(in.Suppliers)); err != nil {
		return orchestration.MRPRequest{}, err
	}

	demands := make([]*entities.Demand, 0, len(in.Demands))
	for i, d := range in.Demands {
		due, err := time.Parse(dateLayout, d.DueDate)
		if err != nil {
			return orchestration.MRPRequest{}, fmt.Errorf("demand %d: %w",
				i, entities.NewConfigurationError("due_date", "expected YYYY-MM-DD, got %q", d.DueDate))
		}
		demand, err := entities.NewDemand(d.Client, entities.ArticleCode(d.ArticleCode), d.Quantity, due)
		if err != nil {
			return orchestration.MRPRequest{}, fmt.Errorf("demand %d: %w", i, err)
		}
		demands = append(demands, demand)
	}

	return orchestration.MRPRequest{
		Demands:          demands,
		Catalog:          mrp.Catalog{Articles: articles, BOM: bom, Stock: stock, Suppliers: suppliers},
		Policy:           policy,
		CriticalPathTopN: in.CriticalPathTopN,
	}, nil
}

// validateBOM reports structural BOM problems and codes missing from the catalog
func validateBOM(in dto.MRPRunRequest) []string {
	roots := make([]entities.ArticleCode, len(in.Demands))
	for i, d := range in.Demands {
		roots[i] = entities.ArticleCode(d.ArticleCode)
	}
	structure := bom_validator.ValidateBOM(in.BOM)
	references := bom_validator.ValidateReferences(in.BOM, in.Articles, roots)
	return append(structure.Errors, references.Errors...)
}

func (h *PlanningHandler) fail(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	if status >= fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// classify maps domain errors to HTTP statuses
func classify(err error) (int, string) {
	var (
		cfgErr        *entities.ConfigurationError
		cycleErr      *entities.CyclicBOMError
		unresolvedErr *entities.UnresolvedReferenceError
		providerErr   *entities.ExternalProviderError
	)
	switch {
	case errors.As(err, &cfgErr):
		return fiber.StatusUnprocessableEntity, "CONFIGURATION"
	case errors.As(err, &cycleErr):
		return fiber.StatusUnprocessableEntity, "CYCLIC_BOM"
	case errors.As(err, &unresolvedErr):
		return fiber.StatusUnprocessableEntity, "UNRESOLVED_REFERENCE"
	case errors.As(err, &providerErr):
		return fiber.StatusBadGateway, "PROVIDER_UNAVAILABLE"
	case errors.Is(err, entities.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

func pointers[T any](values []T) []*T {
	out := make([]*T, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}
