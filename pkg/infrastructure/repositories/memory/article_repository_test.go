package memory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func TestArticleRepository_LoadAndGet(t *testing.T) {
	repo := NewArticleRepository(2)

	err := repo.LoadArticles([]*entities.Article{
		{Code: "A100", Name: "Table Chêne", Kind: entities.Assembled, LeadTimeDays: 10, UnitCost: decimal.NewFromInt(250)},
		{Code: "B200", Name: "Pieds Métal", Kind: entities.Raw, LeadTimeDays: 7, UnitCost: decimal.NewFromInt(45)},
	})
	if err != nil {
		t.Fatalf("Failed to load articles: %v", err)
	}

	retrieved, err := repo.GetArticle("B200")
	if err != nil {
		t.Fatalf("Failed to get article: %v", err)
	}
	if retrieved.Name != "Pieds Métal" {
		t.Errorf("Expected name Pieds Métal, got %s", retrieved.Name)
	}
	if retrieved.LeadTimeDays != 7 {
		t.Errorf("Expected lead time 7, got %d", retrieved.LeadTimeDays)
	}

	all, err := repo.GetAllArticles()
	if err != nil {
		t.Fatalf("Failed to get all articles: %v", err)
	}
	if len(all) != 2 || all[0].Code != "A100" {
		t.Errorf("Expected articles in load order, got %d entries", len(all))
	}
}

func TestArticleRepository_GetArticle_NotFound(t *testing.T) {
	repo := NewArticleRepository(0)

	_, err := repo.GetArticle("MISSING")
	if err == nil {
		t.Fatal("Expected error for missing article")
	}
	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestArticleRepository_LoadArticles_Rejects(t *testing.T) {
	testCases := []struct {
		name     string
		articles []*entities.Article
	}{
		{
			name: "duplicate code",
			articles: []*entities.Article{
				{Code: "A100", Kind: entities.Assembled},
				{Code: "A100", Kind: entities.Raw},
			},
		},
		{
			name:     "negative lead time",
			articles: []*entities.Article{{Code: "A100", LeadTimeDays: -1}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewArticleRepository(len(tc.articles))
			err := repo.LoadArticles(tc.articles)
			if err == nil {
				t.Fatal("Expected load to fail")
			}
			var cfgErr *entities.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Expected ConfigurationError, got %T", err)
			}
		})
	}
}

func TestArticleRepository_ReturnsCopies(t *testing.T) {
	repo := NewArticleRepository(1)
	repo.AddArticle(entities.Article{Code: "C300", Name: "Vis M6x40"})

	first, _ := repo.GetArticle("C300")
	first.Name = "changed"

	second, _ := repo.GetArticle("C300")
	if second.Name != "Vis M6x40" {
		t.Errorf("Repository state leaked through returned pointer: %s", second.Name)
	}
}
