package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/routing"
	"github.com/vsinha/supplyplan/pkg/config"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/scenario"
)

func newTestRuntime(t *testing.T, overrides map[string]interface{}) *Runtime {
	t.Helper()
	v := viper.New()
	for key, value := range overrides {
		v.Set(key, value)
	}
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return NewRuntime(cfg, nil)
}

func writeFurniture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "furniture.yaml")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, scenario.Write(file, scenario.Furniture()))
	return path
}

func TestMRPCommand_JSON(t *testing.T) {
	runtime := newTestRuntime(t, nil)
	cmd := NewMRPCommand(MRPConfig{Scenario: writeFurniture(t), Format: "json", CriticalPath: true}, runtime)

	var out bytes.Buffer
	require.NoError(t, cmd.Execute(context.Background(), &out))

	var result dto.MRPResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.OrderLines)
	assert.Equal(t, len(result.OrderLines), result.Summary.OrderCount)
	assert.NotEmpty(t, result.CriticalPaths)

	journal, err := runtime.Store.ReadEvents(result.RunID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, journal)
	assert.Equal(t, events.RunStartedEvent, journal[0].Type())
	assert.Equal(t, events.RunCompletedEvent, journal[len(journal)-1].Type())
}

func TestMRPCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config MRPConfig
		field  string
	}{
		{name: "missing scenario", config: MRPConfig{}, field: "scenario"},
		{name: "bad format", config: MRPConfig{Scenario: "x.yaml", Format: "xml"}, field: "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMRPCommand(tt.config, newTestRuntime(t, nil)).Execute(context.Background(), &bytes.Buffer{})

			var cfgErr *entities.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestMRPCommand_MissingFile(t *testing.T) {
	cmd := NewMRPCommand(MRPConfig{Scenario: filepath.Join(t.TempDir(), "absent.yaml")}, newTestRuntime(t, nil))
	assert.Error(t, cmd.Execute(context.Background(), &bytes.Buffer{}))
}

func TestMRPCommand_InvalidPolicyInConfig(t *testing.T) {
	runtime := newTestRuntime(t, nil)
	runtime.Config.MRP.CyclePolicy = "ignore"
	cmd := NewMRPCommand(MRPConfig{Scenario: writeFurniture(t)}, runtime)

	var cfgErr *entities.ConfigurationError
	require.ErrorAs(t, cmd.Execute(context.Background(), &bytes.Buffer{}), &cfgErr)
	assert.Equal(t, "cycle_policy", cfgErr.Field)
}

func TestRouteCommand_JSON(t *testing.T) {
	runtime := newTestRuntime(t, nil)
	cmd := NewRouteCommand(RouteConfig{Scenario: writeFurniture(t), Format: "json", Improve: "all"}, runtime)

	var out bytes.Buffer
	require.NoError(t, cmd.Execute(context.Background(), &out))

	var result dto.RoutingResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "haversine", result.MatrixSource)
	assert.Equal(t, 5, result.Metrics.RoutedStops+result.Metrics.UnroutedStops)
	assert.LessOrEqual(t, len(result.Routes), 2)
	for _, route := range result.Routes {
		assert.Equal(t, "ENTREPOT", route.DepotID)
		assert.True(t, route.TotalLoad.LessThanOrEqual(scenario.Furniture().Fleet.VehicleCapacity))
	}
}

func TestRouteCommand_FleetOverride(t *testing.T) {
	cmd := NewRouteCommand(RouteConfig{
		Scenario: writeFurniture(t),
		Format:   "json",
		Vehicles: 5,
		Capacity: 1000,
	}, newTestRuntime(t, nil))

	var out bytes.Buffer
	require.NoError(t, cmd.Execute(context.Background(), &out))

	var result dto.RoutingResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Len(t, result.Routes, 1, "one vehicle carries every stop")
	assert.Empty(t, result.Unrouted)
}

func TestRouteCommand_Errors(t *testing.T) {
	path := writeFurniture(t)
	tests := []struct {
		name   string
		config RouteConfig
		field  string
	}{
		{name: "unknown oracle", config: RouteConfig{Scenario: path, Oracle: "teleport"}, field: "oracle"},
		{name: "unknown improver", config: RouteConfig{Scenario: path, Improve: "3opt"}, field: "improve"},
		{name: "missing scenario", config: RouteConfig{}, field: "scenario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRouteCommand(tt.config, newTestRuntime(t, nil)).Execute(context.Background(), &bytes.Buffer{})

			var cfgErr *entities.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestRouteCommand_NoStops(t *testing.T) {
	s := scenario.Furniture()
	s.Points = nil
	path := filepath.Join(t.TempDir(), "no-stops.yaml")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, scenario.Write(file, s))
	require.NoError(t, file.Close())

	err = NewRouteCommand(RouteConfig{Scenario: path}, newTestRuntime(t, nil)).Execute(context.Background(), &bytes.Buffer{})
	var cfgErr *entities.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "stops", cfgErr.Field)
}

func TestDemoCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewDemoCommand("text", newTestRuntime(t, nil)).Execute(context.Background(), &out))

	assert.Contains(t, out.String(), "A100")
	assert.Contains(t, out.String(), "ENTREPOT")
}

func TestRuntime_Oracle(t *testing.T) {
	t.Run("haversine by default", func(t *testing.T) {
		oracle, err := newTestRuntime(t, nil).Oracle("")
		require.NoError(t, err)
		assert.IsType(t, &routing.HaversineOracle{}, oracle)
	})

	t.Run("road without provider falls back", func(t *testing.T) {
		oracle, err := newTestRuntime(t, nil).Oracle("road")
		require.NoError(t, err)
		assert.IsType(t, &routing.HaversineOracle{}, oracle)
	})

	t.Run("road without provider and no fallback", func(t *testing.T) {
		runtime := newTestRuntime(t, map[string]interface{}{"ROUTING_FALLBACK": false})
		_, err := runtime.Oracle("road")
		var cfgErr *entities.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("road with provider wraps fallback", func(t *testing.T) {
		runtime := newTestRuntime(t, map[string]interface{}{"ROUTING_PROVIDER_URL": "http://localhost:5000"})
		oracle, err := runtime.Oracle("road")
		require.NoError(t, err)
		assert.IsType(t, &routing.FallbackOracle{}, oracle)
	})
}

func TestGenerateCommand_ParsesBack(t *testing.T) {
	cmd := NewGenerateCommand(GenerateConfig{
		Items:     60,
		MaxDepth:  4,
		Demands:   8,
		Inventory: 1.5,
		Stops:     12,
		Vehicles:  3,
		Capacity:  200,
		Seed:      42,
	}, newTestRuntime(t, nil))

	var out bytes.Buffer
	require.NoError(t, cmd.Execute(context.Background(), &out))

	s, err := scenario.Parse(&out)
	require.NoError(t, err)
	assert.Equal(t, "generated-42", s.Name)
	assert.Len(t, s.Articles, 60)
	assert.Len(t, s.Demands, 8)
	assert.Len(t, s.Points, 13)
	assert.Equal(t, 3, s.Fleet.VehicleCount)

	// the generated structure never contains a cycle
	repos, err := s.Repositories()
	require.NoError(t, err)
	assert.NotNil(t, repos)

	runtime := newTestRuntime(t, map[string]interface{}{"MRP_CYCLE_POLICY": "fail"})
	var report bytes.Buffer
	require.NoError(t, runMRP(context.Background(), &report, runtime, s, MRPConfig{Format: "json"}))
}

func TestGenerateCommand_SeedIsReproducible(t *testing.T) {
	config := GenerateConfig{Items: 30, MaxDepth: 3, Demands: 4, Inventory: 1, Stops: 4, Vehicles: 1, Capacity: 100, Seed: 7}

	var first, second bytes.Buffer
	require.NoError(t, NewGenerateCommand(config, newTestRuntime(t, nil)).Execute(context.Background(), &first))
	require.NoError(t, NewGenerateCommand(config, newTestRuntime(t, nil)).Execute(context.Background(), &second))
	assert.Equal(t, first.String(), second.String())
}

func TestGenerateCommand_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")
	cmd := NewGenerateCommand(GenerateConfig{Items: 10, MaxDepth: 2, Demands: 2, Output: path, Seed: 3}, newTestRuntime(t, nil))

	var out bytes.Buffer
	require.NoError(t, cmd.Execute(context.Background(), &out))
	assert.Contains(t, out.String(), path)

	s, err := scenario.Load(path)
	require.NoError(t, err)
	assert.False(t, s.HasRouting())
}

func TestGenerateCommand_InvalidConfig(t *testing.T) {
	err := NewGenerateCommand(GenerateConfig{Items: 0, MaxDepth: 2}, newTestRuntime(t, nil)).
		Execute(context.Background(), &bytes.Buffer{})

	var cfgErr *entities.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "items", cfgErr.Field)
}

func TestServeCommand_MonitorsFailedRuns(t *testing.T) {
	runtime := newTestRuntime(t, nil)
	cmd := NewServeCommand(runtime)
	app, err := cmd.App()
	require.NoError(t, err)

	body := `{
		"cycle_policy": "fail",
		"articles": [{"code": "A", "kind": "ASSEMBLED"}, {"code": "B", "kind": "ASSEMBLED"}],
		"bom": [{"parent_code": "A", "component_code": "B", "quantity_per_unit": "1"},
		        {"parent_code": "B", "component_code": "A", "quantity_per_unit": "1"}],
		"demands": [{"client": "C", "article_code": "A", "quantity": "1", "due_date": "2025-12-31"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/mrp/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	cmd.closeJournal()
	assert.Equal(t, int64(1), cmd.monitor.Failed())
}

func TestServeCommand_App(t *testing.T) {
	app, err := NewServeCommand(newTestRuntime(t, nil)).App()
	require.NoError(t, err)
	require.NotNil(t, app)

	runtime := newTestRuntime(t, nil)
	runtime.Config.Routing.Improve = "best"
	_, err = NewServeCommand(runtime).App()
	var cfgErr *entities.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "improve", cfgErr.Field)
}
