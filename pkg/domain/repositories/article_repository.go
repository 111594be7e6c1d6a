package repositories

import "github.com/vsinha/supplyplan/pkg/domain/entities"

// ArticleRepository provides access to the article catalog
type ArticleRepository interface {
	GetArticle(code entities.ArticleCode) (*entities.Article, error)
	GetAllArticles() ([]*entities.Article, error)
	LoadArticles(articles []*entities.Article) error
}
