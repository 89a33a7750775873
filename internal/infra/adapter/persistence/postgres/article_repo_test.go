package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/infra/adapter/persistence/postgres"
	"scrapeengine/internal/repository"
)

var articleCols = []string{
	"id", "source_id", "job_id", "title", "content", "author", "publication_date",
	"language", "content_hash", "source_url", "processing_status", "created_at",
}

func articleRow(a *entity.ScrapedArticle) *sqlmock.Rows {
	return sqlmock.NewRows(articleCols).AddRow(
		a.ID, a.SourceID, a.JobID, a.Title, a.Content, a.Author, a.PublicationDate,
		a.Language, a.ContentHash, a.SourceURL, a.ProcessingStatus, a.CreatedAt,
	)
}

func TestArticleRepo_ExistsByURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM scraped_content WHERE source_url = $1)")).
		WithArgs("https://alpha.example.com/a").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := postgres.NewArticleRepo(db)
	ok, err := repo.ExistsByURL(context.Background(), "https://alpha.example.com/a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArticleRepo_ExistsByURLBatch_Empty(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := postgres.NewArticleRepo(db)
	result, err := repo.ExistsByURLBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestArticleRepo_ExistsByURLBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	urls := []string{"https://a.com/1", "https://a.com/2"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT source_url FROM scraped_content WHERE source_url = ANY($1)")).
		WithArgs(urls).
		WillReturnRows(sqlmock.NewRows([]string{"source_url"}).AddRow("https://a.com/1"))

	repo := postgres.NewArticleRepo(db)
	result, err := repo.ExistsByURLBatch(context.Background(), urls)
	require.NoError(t, err)
	assert.True(t, result["https://a.com/1"])
	assert.False(t, result["https://a.com/2"])
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM scraped_content WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(articleCols))

	repo := postgres.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), id)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestArticleRepo_Get_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	want := &entity.ScrapedArticle{
		ID: uuid.New(), SourceID: uuid.New(), Title: "Headline", Content: "body",
		Language: "en", ContentHash: "hash", SourceURL: "https://a.com/1",
		ProcessingStatus: "completed", CreatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM scraped_content WHERE id = $1")).
		WithArgs(want.ID).
		WillReturnRows(articleRow(want))

	repo := postgres.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
}

func TestArticleRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scraped_content")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM scraped_content")).
		WillReturnRows(sqlmock.NewRows(articleCols).AddRow(
			uuid.New(), uuid.New(), nil, "t", "c", "", nil, "en", "h", "https://x.com", "completed", now,
		))

	repo := postgres.NewArticleRepo(db)
	got, total, err := repo.List(context.Background(), repository.ArticleListParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, got, 1)
}

func TestArticleRepo_List_WithFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	sourceID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scraped_content WHERE title ILIKE $1 AND source_id = $2")).
		WithArgs("%go%", sourceID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(regexp.QuoteMeta("FROM scraped_content")).
		WithArgs("%go%", sourceID, 20, 0).
		WillReturnRows(sqlmock.NewRows(articleCols))

	repo := postgres.NewArticleRepo(db)
	got, total, err := repo.List(context.Background(), repository.ArticleListParams{
		Page: 1, PageSize: 20, Search: "go", SourceID: &sourceID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, got)
}

func TestArticleRepo_CountByJobGroupedBySource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	jobID := uuid.New()
	sourceID := uuid.New()

	rows := sqlmock.NewRows([]string{"source_id", "id"})
	for i := 0; i < 5; i++ {
		rows.AddRow(sourceID, uuid.New())
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT source_id, id FROM scraped_content WHERE job_id = $1")).
		WithArgs(jobID).
		WillReturnRows(rows)

	repo := postgres.NewArticleRepo(db)
	got, err := repo.CountByJobGroupedBySource(context.Background(), jobID)
	require.NoError(t, err)
	require.Contains(t, got, sourceID)
	assert.Equal(t, 5, got[sourceID].Count)
	assert.Len(t, got[sourceID].SampleIDs, 3, "samples are capped at 3 per source")
}

func TestArticleRepo_ExistsByURL_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("https://a.com").
		WillReturnError(errors.New("connection lost"))

	repo := postgres.NewArticleRepo(db)
	ok, err := repo.ExistsByURL(context.Background(), "https://a.com")
	assert.Error(t, err)
	assert.False(t, ok)
}
