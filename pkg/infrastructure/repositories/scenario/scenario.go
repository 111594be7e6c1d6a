// Package scenario reads planning scenarios (catalog, demands, delivery points and fleet) from YAML.
package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
)

// DateLayout is the layout of demand due dates
const DateLayout = "2006-01-02"

//go:embed furniture.yaml
var furnitureYAML []byte

// Scenario is a validated planning input
type Scenario struct {
	Name      string
	Articles  []*entities.Article
	Suppliers []*entities.Supplier
	BOM       []*entities.BOMLine
	Stock     []*entities.Stock
	Demands   []*entities.Demand
	Clients   []entities.Client
	Machines  []entities.Machine
	// Points lists the depots first, then the stops, in file order
	Points []entities.GeoPoint
	Fleet  Fleet
}

// Fleet describes the homogeneous vehicles available for routing
type Fleet struct {
	VehicleCount    int             `yaml:"vehicles" json:"vehicles"`
	VehicleCapacity decimal.Decimal `yaml:"capacity" json:"capacity"`
}

// Repositories holds in-memory repositories loaded from a scenario
type Repositories struct {
	Articles  *memory.ArticleRepository
	BOM       *memory.BOMRepository
	Stock     *memory.StockRepository
	Suppliers *memory.SupplierRepository
	Demands   *memory.DemandRepository
}

type document struct {
	Name      string            `yaml:"name"`
	Articles  []articleRecord   `yaml:"articles,omitempty"`
	Suppliers []supplierRecord  `yaml:"suppliers,omitempty"`
	BOM       []bomRecord       `yaml:"bom,omitempty"`
	Stock     []stockRecord     `yaml:"stock,omitempty"`
	Demands   []demandRecord    `yaml:"demands,omitempty"`
	Clients   []entities.Client `yaml:"clients,omitempty"`
	Machines  []machineRecord   `yaml:"machines,omitempty"`
	Depots    []pointRecord     `yaml:"depots,omitempty"`
	Stops     []pointRecord     `yaml:"stops,omitempty"`
	Fleet     *Fleet            `yaml:"fleet,omitempty"`
}

type articleRecord struct {
	Code         string               `yaml:"code"`
	Name         string               `yaml:"name"`
	Kind         entities.ArticleKind `yaml:"kind"`
	LeadTimeDays int                  `yaml:"lead_time_days"`
	UnitCost     decimal.Decimal      `yaml:"unit_cost"`
	Supplier     string               `yaml:"supplier,omitempty"`
}

type supplierRecord struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	LeadTimeDays int    `yaml:"lead_time_days"`
}

type bomRecord struct {
	Parent    string          `yaml:"parent"`
	Component string          `yaml:"component"`
	Quantity  decimal.Decimal `yaml:"quantity"`
}

type stockRecord struct {
	Article string          `yaml:"article"`
	OnHand  decimal.Decimal `yaml:"on_hand"`
	Safety  decimal.Decimal `yaml:"safety"`
}

type demandRecord struct {
	Client   string          `yaml:"client"`
	Article  string          `yaml:"article"`
	Quantity decimal.Decimal `yaml:"quantity"`
	DueDate  string          `yaml:"due_date"`
}

type machineRecord struct {
	ID                  string          `yaml:"id"`
	Name                string          `yaml:"name"`
	CapacityHoursPerDay decimal.Decimal `yaml:"capacity_hours_per_day"`
}

type pointRecord struct {
	ID     string          `yaml:"id"`
	Lat    float64         `yaml:"lat"`
	Lon    float64         `yaml:"lon"`
	Demand decimal.Decimal `yaml:"demand,omitempty"`
}

// Load reads a scenario file
func Load(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file %s: %w", path, err)
	}
	defer file.Close()

	s, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Furniture returns the built-in oak table scenario
func Furniture() *Scenario {
	s, err := Parse(bytes.NewReader(furnitureYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in scenario is invalid: %v", err))
	}
	return s
}

// Parse decodes and validates a scenario document. Unknown keys are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario is empty: %w", entities.ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to decode scenario: %w: %w", entities.ErrInvalidInput, err)
	}

	return doc.build()
}

func (doc *document) build() (*Scenario, error) {
	s := &Scenario{
		Name:      doc.Name,
		Articles:  make([]*entities.Article, 0, len(doc.Articles)),
		Suppliers: make([]*entities.Supplier, 0, len(doc.Suppliers)),
		BOM:       make([]*entities.BOMLine, 0, len(doc.BOM)),
		Stock:     make([]*entities.Stock, 0, len(doc.Stock)),
		Demands:   make([]*entities.Demand, 0, len(doc.Demands)),
		Clients:   doc.Clients,
		Machines:  make([]entities.Machine, 0, len(doc.Machines)),
		Points:    make([]entities.GeoPoint, 0, len(doc.Depots)+len(doc.Stops)),
	}

	for i, rec := range doc.Articles {
		article, err := entities.NewArticle(entities.ArticleCode(rec.Code), rec.Name, rec.Kind, rec.LeadTimeDays, rec.UnitCost, rec.Supplier)
		if err != nil {
			return nil, fmt.Errorf("articles entry %d: %w", i, err)
		}
		s.Articles = append(s.Articles, article)
	}

	for i, rec := range doc.Suppliers {
		supplier, err := entities.NewSupplier(rec.ID, rec.Name, rec.LeadTimeDays)
		if err != nil {
			return nil, fmt.Errorf("suppliers entry %d: %w", i, err)
		}
		s.Suppliers = append(s.Suppliers, supplier)
	}

	for i, rec := range doc.BOM {
		line, err := entities.NewBOMLine(entities.ArticleCode(rec.Parent), entities.ArticleCode(rec.Component), rec.Quantity)
		if err != nil {
			return nil, fmt.Errorf("bom entry %d: %w", i, err)
		}
		s.BOM = append(s.BOM, line)
	}

	for i, rec := range doc.Stock {
		stock, err := entities.NewStock(entities.ArticleCode(rec.Article), rec.OnHand, rec.Safety)
		if err != nil {
			return nil, fmt.Errorf("stock entry %d: %w", i, err)
		}
		s.Stock = append(s.Stock, stock)
	}

	for i, rec := range doc.Demands {
		due, err := time.Parse(DateLayout, rec.DueDate)
		if err != nil {
			return nil, fmt.Errorf("demands entry %d: %w",
				i, entities.NewConfigurationError("due_date", "expected YYYY-MM-DD, got %q", rec.DueDate))
		}
		demand, err := entities.NewDemand(rec.Client, entities.ArticleCode(rec.Article), rec.Quantity, due)
		if err != nil {
			return nil, fmt.Errorf("demands entry %d: %w", i, err)
		}
		s.Demands = append(s.Demands, demand)
	}

	for i, rec := range doc.Machines {
		if rec.ID == "" {
			return nil, fmt.Errorf("machines entry %d: %w", i, entities.NewConfigurationError("id", "machine id cannot be empty"))
		}
		s.Machines = append(s.Machines, entities.Machine{ID: rec.ID, Name: rec.Name, CapacityHoursPerDay: rec.CapacityHoursPerDay})
	}

	if err := s.addPoints("depots", doc.Depots, entities.Depot); err != nil {
		return nil, err
	}
	if err := s.addPoints("stops", doc.Stops, entities.Stop); err != nil {
		return nil, err
	}

	if doc.Fleet != nil {
		if doc.Fleet.VehicleCount < 0 || doc.Fleet.VehicleCapacity.IsNegative() {
			return nil, fmt.Errorf("fleet: %w", entities.NewConfigurationError("fleet", "vehicle count and capacity cannot be negative"))
		}
		s.Fleet = *doc.Fleet
	}

	return s, nil
}

func (s *Scenario) addPoints(section string, records []pointRecord, role entities.PointRole) error {
	for i, rec := range records {
		point, err := entities.NewGeoPoint(rec.ID, rec.Lat, rec.Lon, rec.Demand, role)
		if err != nil {
			return fmt.Errorf("%s entry %d: %w", section, i, err)
		}
		s.Points = append(s.Points, *point)
	}
	return nil
}

// HasRouting reports whether the scenario carries a routing problem
func (s *Scenario) HasRouting() bool {
	return len(s.Points) > 0
}

// Repositories loads the catalog and demands into fresh in-memory repositories
func (s *Scenario) Repositories() (*Repositories, error) {
	repos := &Repositories{
		Articles:  memory.NewArticleRepository(len(s.Articles)),
		BOM:       memory.NewBOMRepository(len(s.Articles), len(s.BOM)),
		Stock:     memory.NewStockRepository(),
		Suppliers: memory.NewSupplierRepository(),
		Demands:   memory.NewDemandRepository(),
	}

	if err := repos.Articles.LoadArticles(s.Articles); err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}
	if err := repos.BOM.LoadBOMLines(s.BOM); err != nil {
		return nil, fmt.Errorf("failed to load BOM: %w", err)
	}
	if err := repos.Stock.LoadStock(s.Stock); err != nil {
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}
	if err := repos.Suppliers.LoadSuppliers(s.Suppliers); err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	if err := repos.Demands.LoadDemands(s.Demands); err != nil {
		return nil, fmt.Errorf("failed to load demands: %w", err)
	}

	return repos, nil
}
