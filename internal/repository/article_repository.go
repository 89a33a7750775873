package repository

import (
	"context"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// ArticleListParams filters and paginates list_articles.
type ArticleListParams struct {
	Page      int
	PageSize  int
	Search    string
	SourceID  *uuid.UUID
	Language  string
	Status    string
}

// SourceActualCount is the Verifier's per-source tally of rows actually
// present in scraped_content for a job, with a small sample of article IDs
// for diagnostic surfacing.
type SourceActualCount struct {
	SourceID  uuid.UUID
	Count     int
	SampleIDs []uuid.UUID
}

// ArticleRepository is the read/write port for ScrapedArticle rows. Writes
// outside of the Transactional Persister's own transaction are limited to
// existence checks used by the Per-Source Extractor's pre-filter.
type ArticleRepository interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.ScrapedArticle, error)
	List(ctx context.Context, params ArticleListParams) ([]entity.ScrapedArticle, int, error)
	CountByJobGroupedBySource(ctx context.Context, jobID uuid.UUID) (map[uuid.UUID]SourceActualCount, error)
}
