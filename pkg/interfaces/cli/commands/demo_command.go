package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/scenario"
)

// DemoCommand runs the built-in furniture scenario through MRP and routing
type DemoCommand struct {
	format  string
	runtime *Runtime
}

// NewDemoCommand creates a new demo command
func NewDemoCommand(format string, runtime *Runtime) *DemoCommand {
	return &DemoCommand{format: format, runtime: runtime}
}

// Execute runs the demo
func (c *DemoCommand) Execute(ctx context.Context, w io.Writer) error {
	if err := validFormat(c.format); err != nil {
		return err
	}

	s := scenario.Furniture()

	if err := runMRP(ctx, w, c.runtime, s, MRPConfig{Format: c.format, CriticalPath: true, TopPaths: 3}); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return runRoutes(ctx, w, c.runtime, s, RouteConfig{Format: c.format, Oracle: "haversine"})
}
