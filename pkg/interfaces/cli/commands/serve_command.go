package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vsinha/supplyplan/pkg/application/services/routing"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	apphttp "github.com/vsinha/supplyplan/pkg/interfaces/http"
)

const shutdownTimeout = 10 * time.Second

// ServeCommand exposes the planning engine over HTTP
type ServeCommand struct {
	runtime *Runtime
	monitor *events.RunMonitor
}

// NewServeCommand creates a new serve command
func NewServeCommand(runtime *Runtime) *ServeCommand {
	return &ServeCommand{runtime: runtime, monitor: events.NewRunMonitor(runtime.Log)}
}

// App builds the HTTP application from the runtime configuration and subscribes
// the run monitor to the journal
func (c *ServeCommand) App() (*fiber.App, error) {
	engine, err := c.runtime.EngineConfig()
	if err != nil {
		return nil, err
	}
	improve, err := routing.ParseImproveMode(c.runtime.Config.Routing.Improve)
	if err != nil {
		return nil, err
	}
	orchestrator, err := c.runtime.Orchestrator("")
	if err != nil {
		return nil, err
	}

	if err := c.runtime.Store.Subscribe(c.monitor.EventTypes(), c.monitor); err != nil {
		return nil, err
	}

	handler := apphttp.NewPlanningHandler(orchestrator, engine, improve, c.runtime.Log)
	return apphttp.NewApp(c.runtime.Config, handler), nil
}

// Execute serves until ctx is cancelled or the process receives SIGINT or SIGTERM
func (c *ServeCommand) Execute(ctx context.Context, w io.Writer) error {
	app, err := c.App()
	if err != nil {
		return err
	}
	defer c.closeJournal()
	log := c.runtime.Log
	addr := c.runtime.Config.HTTP.Addr()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	fmt.Fprintf(w, "Listening on %s (oracle %s)\n", addr, c.runtime.Config.Routing.Oracle)
	log.Info().Str("addr", addr).Msg("HTTP server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-listenErr:
		return fmt.Errorf("HTTP server stopped: %w", err)
	case <-quit:
		log.Info().Msg("shutdown signal received, closing server")
	case <-ctx.Done():
		log.Info().Msg("context cancelled, closing server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
		return err
	}
	log.Info().Int64("failed_runs", c.monitor.Failed()).Msg("server stopped")
	return nil
}

// closeJournal detaches the monitor and waits for pending notifications
func (c *ServeCommand) closeJournal() {
	if err := c.runtime.Store.Unsubscribe(c.monitor); err != nil {
		c.runtime.Log.Warn().Err(err).Msg("failed to unsubscribe run monitor")
	}
	c.runtime.Store.Wait()
}
