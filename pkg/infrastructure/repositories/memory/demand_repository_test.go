package memory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func TestDemandRepository(t *testing.T) {
	repo := NewDemandRepository()
	due := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	err := repo.LoadDemands([]*entities.Demand{
		{Client: "CLI001", ArticleCode: "A100", Quantity: decimal.NewFromInt(1), DueDate: due},
	})
	if err != nil {
		t.Fatalf("Failed to load demands: %v", err)
	}

	demands, _ := repo.GetDemands()
	if len(demands) != 1 {
		t.Fatalf("Expected 1 demand, got %d", len(demands))
	}

	err = repo.LoadDemands([]*entities.Demand{
		{Client: "CLI001", ArticleCode: "A100", Quantity: decimal.Zero, DueDate: due},
	})
	if err == nil {
		t.Error("Expected error for zero quantity demand")
	}
	demands, _ = repo.GetDemands()
	if len(demands) != 1 {
		t.Errorf("Rejected batch should not be stored, got %d demands", len(demands))
	}
}
