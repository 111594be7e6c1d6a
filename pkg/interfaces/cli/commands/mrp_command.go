package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vsinha/supplyplan/pkg/application/services/mrp"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/services/bom_validator"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/scenario"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/output"
)

// MRPConfig holds configuration for the mrp command
type MRPConfig struct {
	Scenario     string
	Format       string
	OutputDir    string
	Verbose      bool
	Strict       bool
	FailOnCycle  bool
	CriticalPath bool
	TopPaths     int
}

// MRPCommand runs the MRP engine on a scenario file
type MRPCommand struct {
	config  MRPConfig
	runtime *Runtime
}

// NewMRPCommand creates a new MRP command with the given configuration
func NewMRPCommand(config MRPConfig, runtime *Runtime) *MRPCommand {
	return &MRPCommand{config: config, runtime: runtime}
}

// Execute runs the MRP command
func (c *MRPCommand) Execute(ctx context.Context, w io.Writer) error {
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
	return runMRP(ctx, w, c.runtime, s, c.config)
}

func runMRP(ctx context.Context, w io.Writer, runtime *Runtime, s *scenario.Scenario, cfg MRPConfig) error {
	log := runtime.Log

	engine, err := runtime.EngineConfig()
	if err != nil {
		return err
	}
	if cfg.Strict {
		engine.UnknownArticlePolicy = mrp.StrictArticles
	}
	if cfg.FailOnCycle {
		engine.CyclePolicy = mrp.FailOnCycle
	}

	reportBOMIssues(runtime, s)

	repos, err := s.Repositories()
	if err != nil {
		return err
	}
	demands, err := repos.Demands.GetDemands()
	if err != nil {
		return err
	}

	orchestrator, err := runtime.Orchestrator("")
	if err != nil {
		return err
	}

	topN := 0
	if cfg.CriticalPath {
		topN = cfg.TopPaths
		if topN <= 0 {
			topN = 3
		}
	}

	start := time.Now()
	result, err := orchestrator.RunMRP(ctx, orchestration.MRPRequest{
		Demands: demands,
		Catalog: mrp.Catalog{
			Articles:  repos.Articles,
			BOM:       repos.BOM,
			Stock:     repos.Stock,
			Suppliers: repos.Suppliers,
		},
		Policy:           engine,
		CriticalPathTopN: topN,
	})
	if err != nil {
		return fmt.Errorf("error running MRP: %w", err)
	}

	log.Debug().Str("scenario", s.Name).Str("run_id", result.RunID).Msg("MRP scenario processed")

	return output.GenerateMRP(w, result, output.Config{
		Format:    cfg.Format,
		OutputDir: cfg.OutputDir,
		Verbose:   cfg.Verbose,
		Elapsed:   time.Since(start),
	})
}

// reportBOMIssues logs structural BOM problems before the run. The engine decides
// how cycles and unknown codes are handled.
func reportBOMIssues(runtime *Runtime, s *scenario.Scenario) {
	lines := make([]entities.BOMLine, len(s.BOM))
	for i, line := range s.BOM {
		lines[i] = *line
	}
	articles := make([]entities.Article, len(s.Articles))
	for i, article := range s.Articles {
		articles[i] = *article
	}
	roots := make([]entities.ArticleCode, len(s.Demands))
	for i, demand := range s.Demands {
		roots[i] = demand.ArticleCode
	}

	structure := bom_validator.ValidateBOM(lines)
	references := bom_validator.ValidateReferences(lines, articles, roots)

	for _, msg := range append(structure.Errors, references.Errors...) {
		runtime.Log.Warn().Str("scenario", s.Name).Msg(msg)
	}
	if len(references.OrphanedArticles) > 0 {
		codes := make([]string, len(references.OrphanedArticles))
		for i, code := range references.OrphanedArticles {
			codes[i] = string(code)
		}
		runtime.Log.Debug().Str("articles", strings.Join(codes, ",")).Msg("articles not reachable from any demand")
	}
}
