package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
)

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func scanArticle(scanner interface {
	Scan(dest ...any) error
}) (*entity.ScrapedArticle, error) {
	var a entity.ScrapedArticle
	var jobID uuid.NullUUID
	var author sql.NullString
	var pubDate sql.NullTime
	if err := scanner.Scan(
		&a.ID, &a.SourceID, &jobID, &a.Title, &a.Content, &author, &pubDate,
		&a.Language, &a.ContentHash, &a.SourceURL, &a.ProcessingStatus, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if jobID.Valid {
		a.JobID = &jobID.UUID
	}
	a.Author = author.String
	if pubDate.Valid {
		a.PublicationDate = &pubDate.Time
	}
	return &a, nil
}

const articleColumns = `id, source_id, job_id, title, content, author, publication_date, language, content_hash, source_url, processing_status, created_at`

func (repo *ArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM scraped_content WHERE source_url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

// ExistsByURLBatch checks many URLs in one round trip using pgx's native
// array parameter support, avoiding a driver-specific array wrapper.
func (repo *ArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return result, nil
	}

	const query = `SELECT source_url FROM scraped_content WHERE source_url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, urls)
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: scan: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	return result, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ScrapedArticle, error) {
	query := fmt.Sprintf(`SELECT %s FROM scraped_content WHERE id = $1 LIMIT 1`, articleColumns)
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) List(ctx context.Context, params repository.ArticleListParams) ([]entity.ScrapedArticle, int, error) {
	var whereClauses []string
	var args []any
	paramIndex := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("title ILIKE $%d", paramIndex))
		args = append(args, "%"+params.Search+"%")
		paramIndex++
	}
	if params.SourceID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("source_id = $%d", paramIndex))
		args = append(args, *params.SourceID)
		paramIndex++
	}
	if params.Language != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("language = $%d", paramIndex))
		args = append(args, params.Language)
		paramIndex++
	}
	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("processing_status = $%d", paramIndex))
		args = append(args, params.Status)
		paramIndex++
	}

	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM scraped_content " + where
	if err := repo.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	pageSize := params.PageSize
	page := params.Page
	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`
SELECT %s
FROM scraped_content
%s
ORDER BY publication_date DESC NULLS LAST, created_at DESC
LIMIT $%d OFFSET $%d`, articleColumns, where, paramIndex, paramIndex+1)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]entity.ScrapedArticle, 0, pageSize)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return articles, total, nil
}

// CountByJobGroupedBySource is the Verifier's "actual persisted" side of
// reconciliation: how many scraped_content rows exist for a job, grouped by
// source, with a small sample of IDs for diagnostics.
func (repo *ArticleRepo) CountByJobGroupedBySource(ctx context.Context, jobID uuid.UUID) (map[uuid.UUID]repository.SourceActualCount, error) {
	const query = `SELECT source_id, id FROM scraped_content WHERE job_id = $1 ORDER BY source_id`
	rows, err := repo.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("CountByJobGroupedBySource: %w", err)
	}
	defer func() { _ = rows.Close() }()

	const maxSample = 3
	result := make(map[uuid.UUID]repository.SourceActualCount)
	for rows.Next() {
		var sourceID, articleID uuid.UUID
		if err := rows.Scan(&sourceID, &articleID); err != nil {
			return nil, fmt.Errorf("CountByJobGroupedBySource: scan: %w", err)
		}
		entry := result[sourceID]
		entry.SourceID = sourceID
		entry.Count++
		if len(entry.SampleIDs) < maxSample {
			entry.SampleIDs = append(entry.SampleIDs, articleID)
		}
		result[sourceID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CountByJobGroupedBySource: %w", err)
	}
	return result, nil
}
