// Package article implements the read-only list_articles/get_article
// surface over persisted scraped content. The engine never writes articles
// through this package — the Transactional Persister (internal/usecase/persist)
// is the only writer, inside a job's transaction.
package article

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
)

// Service provides read-only article queries.
type Service struct {
	Repo repository.ArticleRepository
}

// New constructs a Service.
func New(repo repository.ArticleRepository) *Service {
	return &Service{Repo: repo}
}

// List returns a page of articles matching params.
func (s *Service) List(ctx context.Context, params repository.ArticleListParams) ([]entity.ScrapedArticle, int, error) {
	articles, total, err := s.Repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return articles, total, nil
}

// Get retrieves a single article by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.ScrapedArticle, error) {
	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}
