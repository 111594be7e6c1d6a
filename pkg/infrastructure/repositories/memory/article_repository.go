package memory

import (
	"fmt"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/domain/repositories"
)

// ArticleRepository provides in-memory article storage
type ArticleRepository struct {
	articles    []entities.Article
	articlesMap map[entities.ArticleCode]int
}

// NewArticleRepository creates a new in-memory article repository
func NewArticleRepository(expectedArticles int) *ArticleRepository {
	return &ArticleRepository{
		articles:    make([]entities.Article, 0, expectedArticles),
		articlesMap: make(map[entities.ArticleCode]int, expectedArticles),
	}
}

// Verify interface compliance
var _ repositories.ArticleRepository = (*ArticleRepository)(nil)

// LoadArticles validates and loads articles. Codes must be unique.
func (r *ArticleRepository) LoadArticles(articles []*entities.Article) error {
	for i, article := range articles {
		if err := article.Validate(); err != nil {
			return fmt.Errorf("article %d: %w", i, err)
		}
		if _, exists := r.articlesMap[article.Code]; exists {
			return entities.NewConfigurationError("code", "duplicate article code %s", article.Code)
		}
		r.AddArticle(*article)
	}
	return nil
}

// AddArticle adds an article, replacing any article with the same code
func (r *ArticleRepository) AddArticle(article entities.Article) {
	if index, exists := r.articlesMap[article.Code]; exists {
		r.articles[index] = article
		return
	}
	r.articlesMap[article.Code] = len(r.articles)
	r.articles = append(r.articles, article)
}

// GetArticle returns the article for a code
func (r *ArticleRepository) GetArticle(code entities.ArticleCode) (*entities.Article, error) {
	index, exists := r.articlesMap[code]
	if !exists {
		return nil, fmt.Errorf("article %s: %w", code, entities.ErrNotFound)
	}
	article := r.articles[index]
	return &article, nil
}

// GetAllArticles returns all articles in load order
func (r *ArticleRepository) GetAllArticles() ([]*entities.Article, error) {
	articles := make([]*entities.Article, 0, len(r.articles))
	for i := range r.articles {
		article := r.articles[i]
		articles = append(articles, &article)
	}
	return articles, nil
}
