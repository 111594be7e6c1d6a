package memory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func TestStockRepository_DefaultsToEmpty(t *testing.T) {
	repo := NewStockRepository()

	stock, err := repo.GetStock("UNKNOWN")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !stock.OnHandQty.IsZero() || !stock.SafetyQty.IsZero() {
		t.Errorf("Expected zero stock, got on hand %s safety %s", stock.OnHandQty, stock.SafetyQty)
	}
	if stock.ArticleCode != "UNKNOWN" {
		t.Errorf("Expected article code UNKNOWN, got %s", stock.ArticleCode)
	}
}

func TestStockRepository_LoadStock(t *testing.T) {
	repo := NewStockRepository()

	err := repo.LoadStock([]*entities.Stock{
		{ArticleCode: "B200", OnHandQty: decimal.NewFromInt(4), SafetyQty: decimal.NewFromInt(2)},
	})
	if err != nil {
		t.Fatalf("Failed to load stock: %v", err)
	}

	stock, _ := repo.GetStock("B200")
	if !stock.OnHandQty.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected on hand 4, got %s", stock.OnHandQty)
	}

	err = repo.LoadStock([]*entities.Stock{
		{ArticleCode: "B200", OnHandQty: decimal.NewFromInt(1)},
	})
	if err == nil {
		t.Error("Expected error for a second stock record of the same article")
	}

	err = repo.LoadStock([]*entities.Stock{
		{ArticleCode: "C300", OnHandQty: decimal.NewFromInt(-1)},
	})
	if err == nil {
		t.Error("Expected error for negative on hand quantity")
	}
}
