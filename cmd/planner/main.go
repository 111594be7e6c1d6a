package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vsinha/supplyplan/pkg/config"
	"github.com/vsinha/supplyplan/pkg/interfaces/cli/commands"
	"github.com/vsinha/supplyplan/pkg/logger"
)

type command interface {
	Execute(ctx context.Context, w io.Writer) error
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		usage(os.Stdout)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	name, args := os.Args[1], os.Args[2:]
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	verbose := flags.Bool("verbose", false, "Enable verbose output and debug logs")

	var build func(*commands.Runtime) command
	switch name {
	case "mrp":
		var c commands.MRPConfig
		flags.StringVar(&c.Scenario, "scenario", "", "Path to the scenario YAML file")
		flags.StringVar(&c.Format, "format", "text", "Output format: text, json, csv")
		flags.StringVar(&c.OutputDir, "output", "", "Output directory for results (optional)")
		flags.BoolVar(&c.Strict, "strict", false, "Fail on articles missing from the catalog")
		flags.BoolVar(&c.FailOnCycle, "fail-on-cycle", false, "Fail on BOM cycles instead of truncating them")
		flags.BoolVar(&c.CriticalPath, "critical-path", false, "Perform critical path analysis")
		flags.IntVar(&c.TopPaths, "top-paths", 3, "Number of top critical paths to analyze")
		build = func(rt *commands.Runtime) command {
			c.Verbose = *verbose
			return commands.NewMRPCommand(c, rt)
		}
	case "route":
		var c commands.RouteConfig
		flags.StringVar(&c.Scenario, "scenario", "", "Path to the scenario YAML file")
		flags.StringVar(&c.Format, "format", "text", "Output format: text, json, csv")
		flags.StringVar(&c.OutputDir, "output", "", "Output directory for results (optional)")
		flags.StringVar(&c.Oracle, "oracle", "", "Distance oracle: haversine, road (default from ROUTING_ORACLE)")
		flags.StringVar(&c.Improve, "improve", "", "Route improvement: none, 2opt, relocate, all")
		flags.IntVar(&c.Vehicles, "vehicles", 0, "Override the scenario vehicle count")
		flags.Float64Var(&c.Capacity, "capacity", 0, "Override the scenario vehicle capacity")
		build = func(rt *commands.Runtime) command {
			c.Verbose = *verbose
			return commands.NewRouteCommand(c, rt)
		}
	case "demo":
		format := flags.String("format", "text", "Output format: text, json, csv")
		build = func(rt *commands.Runtime) command {
			return commands.NewDemoCommand(*format, rt)
		}
	case "generate":
		var c commands.GenerateConfig
		flags.IntVar(&c.Items, "items", 100, "Total number of articles")
		flags.IntVar(&c.MaxDepth, "depth", 5, "Maximum BOM depth")
		flags.IntVar(&c.Demands, "demands", 10, "Number of demand lines")
		flags.Float64Var(&c.Inventory, "inventory", 1.0, "Stock multiplier")
		flags.IntVar(&c.Stops, "stops", 20, "Number of delivery stops")
		flags.IntVar(&c.Vehicles, "vehicles", 3, "Fleet size")
		flags.Int64Var(&c.Capacity, "capacity", 300, "Vehicle capacity")
		flags.StringVar(&c.Output, "output", "", "Output file (default stdout)")
		flags.Int64Var(&c.Seed, "seed", 0, "Random seed (0 uses the clock)")
		build = func(rt *commands.Runtime) command {
			return commands.NewGenerateCommand(c, rt)
		}
	case "serve":
		flags.IntVar(&cfg.HTTP.Port, "port", cfg.HTTP.Port, "HTTP port")
		build = func(rt *commands.Runtime) command {
			return commands.NewServeCommand(rt)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", name)
		usage(os.Stderr)
		os.Exit(2)
	}

	_ = flags.Parse(args)

	if *verbose {
		cfg.App.LogLevel = "debug"
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	runtime := commands.NewRuntime(cfg, log)

	if err := build(runtime).Execute(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `Usage: planner <command> [flags]

Commands:
  mrp       Explode and net the demands of a scenario into dated order lines
  route     Plan capacitated delivery routes for the stops of a scenario
  demo      Run the built-in furniture scenario through MRP and routing
  generate  Write a random scenario YAML file
  serve     Expose the planning engine over HTTP

Run "planner <command> -h" for the flags of a command.
Configuration is read from the environment, .env and config.env.`)
}
