package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/repositories/memory"
)

// TestRepositories bundles the in-memory repositories of a scenario
type TestRepositories struct {
	Articles  *memory.ArticleRepository
	BOM       *memory.BOMRepository
	Stock     *memory.StockRepository
	Suppliers *memory.SupplierRepository
	Demands   *memory.DemandRepository
}

// NewTestRepositories creates empty repositories
func NewTestRepositories() *TestRepositories {
	return &TestRepositories{
		Articles:  memory.NewArticleRepository(8),
		BOM:       memory.NewBOMRepository(8, 16),
		Stock:     memory.NewStockRepository(),
		Suppliers: memory.NewSupplierRepository(),
		Demands:   memory.NewDemandRepository(),
	}
}

// AddArticle adds an article without a supplier
func (r *TestRepositories) AddArticle(code entities.ArticleCode, kind entities.ArticleKind, leadTimeDays int, unitCost string) {
	r.Articles.AddArticle(entities.Article{
		Code:         code,
		Name:         string(code),
		Kind:         kind,
		LeadTimeDays: leadTimeDays,
		UnitCost:     decimal.RequireFromString(unitCost),
	})
}

// AddBOMLine adds a parent -> component line
func (r *TestRepositories) AddBOMLine(parent, component entities.ArticleCode, qtyPer string) {
	r.BOM.AddBOMLine(entities.BOMLine{
		ParentCode:      parent,
		ComponentCode:   component,
		QuantityPerUnit: decimal.RequireFromString(qtyPer),
	})
}

// AddStock adds a stock record, panicking on invalid fixtures
func (r *TestRepositories) AddStock(code entities.ArticleCode, onHand, safety int64) {
	err := r.Stock.LoadStock([]*entities.Stock{{
		ArticleCode: code,
		OnHandQty:   decimal.NewFromInt(onHand),
		SafetyQty:   decimal.NewFromInt(safety),
	}})
	if err != nil {
		panic(err)
	}
}

// BuildFurnitureTestData builds the oak table catalog: A100 is assembled from
// 4 x B200 legs and 16 x C300 screws. Suppliers are linked when withSuppliers is true;
// SUP003 is deliberately absent so C300 falls back to its own lead time.
func BuildFurnitureTestData(withSuppliers bool) *TestRepositories {
	repos := NewTestRepositories()

	articles := []entities.Article{
		{Code: "A100", Name: "Table Chêne", Kind: entities.Assembled, LeadTimeDays: 10, UnitCost: decimal.NewFromInt(250), SupplierRef: "SUP001"},
		{Code: "B200", Name: "Pieds Métal", Kind: entities.Raw, LeadTimeDays: 7, UnitCost: decimal.NewFromInt(45), SupplierRef: "SUP002"},
		{Code: "C300", Name: "Vis M6x40", Kind: entities.Raw, LeadTimeDays: 3, UnitCost: decimal.RequireFromString("0.5"), SupplierRef: "SUP003"},
	}
	for _, article := range articles {
		if !withSuppliers {
			article.SupplierRef = ""
		}
		repos.Articles.AddArticle(article)
	}

	repos.AddBOMLine("A100", "B200", "4")
	repos.AddBOMLine("A100", "C300", "16")

	if withSuppliers {
		_ = repos.Suppliers.LoadSuppliers([]*entities.Supplier{
			{ID: "SUP001", Name: "Bois & Co", LeadTimeDays: 5},
			{ID: "SUP002", Name: "Métal Pro", LeadTimeDays: 7},
		})
	}

	return repos
}

// FurnitureDemand returns one demand of qty oak tables due on dueDate
func FurnitureDemand(qty int64, dueDate time.Time) *entities.Demand {
	return &entities.Demand{
		Client:      "CLI001",
		ArticleCode: "A100",
		Quantity:    decimal.NewFromInt(qty),
		DueDate:     dueDate,
	}
}

// BuildDiamondTestData builds A -> B, A -> C, B -> 2 x D, C -> 3 x D
func BuildDiamondTestData() *TestRepositories {
	repos := NewTestRepositories()
	for _, code := range []entities.ArticleCode{"A", "B", "C"} {
		repos.AddArticle(code, entities.Assembled, 2, "10")
	}
	repos.AddArticle("D", entities.Raw, 1, "1")

	repos.AddBOMLine("A", "B", "1")
	repos.AddBOMLine("A", "C", "1")
	repos.AddBOMLine("B", "D", "2")
	repos.AddBOMLine("C", "D", "3")

	return repos
}

// BuildCyclicTestData builds A -> B -> A
func BuildCyclicTestData() *TestRepositories {
	repos := NewTestRepositories()
	repos.AddArticle("A", entities.Assembled, 2, "10")
	repos.AddArticle("B", entities.Assembled, 1, "5")

	repos.AddBOMLine("A", "B", "2")
	repos.AddBOMLine("B", "A", "1")

	return repos
}

// RandomRoutingPoints returns one depot followed by n stops scattered around it.
// Weights are integers in [1, maxWeight].
func RandomRoutingPoints(rng *rand.Rand, n int, maxWeight int64) []entities.GeoPoint {
	points := make([]entities.GeoPoint, 0, n+1)
	points = append(points, entities.GeoPoint{ID: "DEPOT", Lat: 48.8566, Lon: 2.3522, Role: entities.Depot})

	for i := 0; i < n; i++ {
		points = append(points, entities.GeoPoint{
			ID:           fmt.Sprintf("S%03d", i+1),
			Lat:          48.8566 + (rng.Float64()-0.5)*0.4,
			Lon:          2.3522 + (rng.Float64()-0.5)*0.6,
			DemandWeight: decimal.NewFromInt(rng.Int63n(maxWeight) + 1),
			Role:         entities.Stop,
		})
	}

	return points
}

// RandomRoutingPointsSeeded is RandomRoutingPoints with its own seeded source
func RandomRoutingPointsSeeded(seed int64, n int, maxWeight int64) []entities.GeoPoint {
	return RandomRoutingPoints(rand.New(rand.NewSource(seed)), n, maxWeight)
}
