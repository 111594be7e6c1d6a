package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

const minimal = `
name: minimal
articles:
  - code: P1
    name: Panel
    kind: COMPOSE
    lead_time_days: 4
    unit_cost: "12.50"
  - code: R1
    kind: BRUT
    lead_time_days: 2
    unit_cost: 0.25
bom:
  - parent: P1
    component: R1
    quantity: 2.5
stock:
  - article: R1
    on_hand: 3
demands:
  - client: C1
    article: P1
    quantity: 2
    due_date: "2025-06-30"
  - client: C2
    article: P1
    quantity: 1
    due_date: 2025-07-15
depots:
  - id: D
    lat: 45.0
    lon: 5.0
stops:
  - id: S1
    lat: 45.1
    lon: 5.1
    demand: 10
fleet:
  vehicles: 1
  capacity: 50
`

func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(minimal))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Articles, 2)
	assert.Equal(t, entities.Assembled, s.Articles[0].Kind)
	assert.Equal(t, entities.Raw, s.Articles[1].Kind)
	assert.Equal(t, "12.5", s.Articles[0].UnitCost.String())
	assert.Equal(t, "0.25", s.Articles[1].UnitCost.String())

	require.Len(t, s.BOM, 1)
	assert.Equal(t, "2.5", s.BOM[0].QuantityPerUnit.String())

	require.Len(t, s.Stock, 1)
	assert.True(t, s.Stock[0].SafetyQty.IsZero())

	require.Len(t, s.Demands, 2)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), s.Demands[0].DueDate)
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), s.Demands[1].DueDate)

	require.Len(t, s.Points, 2)
	assert.True(t, s.Points[0].IsDepot())
	assert.False(t, s.Points[1].IsDepot())
	assert.True(t, decimal.NewFromInt(10).Equal(s.Points[1].DemandWeight))
	assert.True(t, s.HasRouting())

	assert.Equal(t, 1, s.Fleet.VehicleCount)
	assert.True(t, decimal.NewFromInt(50).Equal(s.Fleet.VehicleCapacity))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{"empty", "", "scenario is empty"},
		{"unknown key", "articles:\n  - code: A\n    colour: red\n", "colour"},
		{"bad kind", "articles:\n  - code: A\n    kind: LIQUID\n", "unknown article kind"},
		{"negative lead", "articles:\n  - code: A\n    lead_time_days: -1\n", "articles entry 0"},
		{"zero bom qty", "bom:\n  - parent: A\n    component: B\n    quantity: 0\n", "bom entry 0"},
		{"bad date", "demands:\n  - client: C\n    article: A\n    quantity: 1\n    due_date: 31/12/2025\n", "demands entry 0"},
		{"bad latitude", "stops:\n  - id: S\n    lat: 95\n    lon: 0\n", "stops entry 0"},
		{"negative fleet", "fleet:\n  vehicles: -2\n  capacity: 10\n", "fleet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParse_MalformedDocumentIsInvalidInput(t *testing.T) {
	for _, doc := range []string{"", "name: [unterminated\n", "fleet:\n  wheels: 4\n"} {
		_, err := Parse(strings.NewReader(doc))
		assert.ErrorIs(t, err, entities.ErrInvalidInput, "document %q", doc)
	}
}

func TestParse_ValidationErrorsAreConfigurationErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("stock:\n  - article: A\n    on_hand: -1\n"))

	var cfgErr *entities.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "on_hand_qty", cfgErr.Field)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScenario_Repositories(t *testing.T) {
	s, err := Parse(strings.NewReader(minimal))
	require.NoError(t, err)

	repos, err := s.Repositories()
	require.NoError(t, err)

	article, err := repos.Articles.GetArticle("P1")
	require.NoError(t, err)
	assert.Equal(t, "Panel", article.Name)

	lines, err := repos.BOM.GetBOMLines("P1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	stock, err := repos.Stock.GetStock("R1")
	require.NoError(t, err)
	assert.Equal(t, "3", stock.OnHandQty.String())

	demands, err := repos.Demands.GetDemands()
	require.NoError(t, err)
	assert.Len(t, demands, 2)
}

func TestFurniture(t *testing.T) {
	s := Furniture()

	assert.Equal(t, "furniture", s.Name)
	assert.Len(t, s.Articles, 3)
	assert.Len(t, s.BOM, 2)
	assert.Len(t, s.Suppliers, 2)
	assert.Len(t, s.Demands, 2)
	assert.Len(t, s.Machines, 2)
	assert.Len(t, s.Clients, 2)
	require.Len(t, s.Points, 6)
	assert.Equal(t, "ENTREPOT", s.Points[0].ID)
	assert.Equal(t, 2, s.Fleet.VehicleCount)
}

func TestWrite_RoundTrip(t *testing.T) {
	original := Furniture()

	var buf strings.Builder
	require.NoError(t, Write(&buf, original))

	decoded, err := Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, original.Name, decoded.Name)
	require.Len(t, decoded.Articles, len(original.Articles))
	assert.True(t, original.Articles[2].UnitCost.Equal(decoded.Articles[2].UnitCost))
	assert.Equal(t, original.Articles[0].Kind, decoded.Articles[0].Kind)
	require.Len(t, decoded.Demands, len(original.Demands))
	assert.True(t, original.Demands[0].DueDate.Equal(decoded.Demands[0].DueDate))
	assert.Equal(t, original.Points, decoded.Points)
	assert.Equal(t, original.Fleet.VehicleCount, decoded.Fleet.VehicleCount)
}
