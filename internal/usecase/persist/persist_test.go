package persist_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/usecase/eventlog"
	"scrapeengine/internal/usecase/persist"
	"scrapeengine/internal/usecase/scrape"
)

type noopLogRepo struct{}

func (noopLogRepo) Append(ctx context.Context, event entity.LogEvent) error { return nil }
func (noopLogRepo) ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]entity.LogEvent, int, error) {
	return nil, 0, nil
}
func (noopLogRepo) CountPersistedBySource(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	return nil, nil
}

func TestPersister_Persist_SavesAndFinalizes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	jobID := uuid.New()
	sourceID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scraped_content")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scraping_jobs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := persist.New(db, eventlog.NewLogger(noopLogRepo{}))
	results := []scrape.SourceResult{
		{
			SourceName: "Alpha Wire",
			SourceID:   sourceID,
			Extracted: []scrape.ExtractedArticle{
				{SourceID: sourceID, Title: "Headline", Content: "Body text long enough to pass the floor.", SourceURL: "https://example.com/a"},
			},
		},
	}

	out, err := p.Persist(context.Background(), jobID, 1, results, false)
	require.NoError(t, err)
	require.Equal(t, 1, out.TotalSaved)
	require.Equal(t, entity.JobStatusSuccessful, out.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersister_Persist_DuplicateSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	jobID := uuid.New()
	sourceID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scraped_content")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scraping_jobs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := persist.New(db, eventlog.NewLogger(noopLogRepo{}))
	results := []scrape.SourceResult{
		{
			SourceName: "Alpha Wire",
			SourceID:   sourceID,
			Extracted: []scrape.ExtractedArticle{
				{SourceID: sourceID, Title: "Headline", Content: "Already on file.", SourceURL: "https://example.com/a"},
			},
		},
	}

	out, err := p.Persist(context.Background(), jobID, 1, results, false)
	require.NoError(t, err)
	require.Equal(t, 0, out.TotalSaved)
	require.Equal(t, entity.JobStatusFailed, out.Status)
}

func TestPersister_Persist_ReportsPrefilterDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	jobID := uuid.New()
	sourceID := uuid.New()

	// Every feed item was filtered out before fetching, so no insert runs;
	// only the job row is finalized.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scraping_jobs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p := persist.New(db, eventlog.NewLogger(noopLogRepo{}))
	results := []scrape.SourceResult{
		{
			SourceName: "Alpha Wire",
			SourceID:   sourceID,
			Metrics:    scrape.SourceMetrics{RSSItemsFound: 10, PrefilterDuplicates: 10},
		},
	}

	out, err := p.Persist(context.Background(), jobID, 5, results, false)
	require.NoError(t, err)
	require.Equal(t, 0, out.TotalSaved)
	require.Equal(t, entity.JobStatusFailed, out.Status)
	require.Equal(t, 10, out.BySource["Alpha Wire"].Duplicates)
	require.NoError(t, mock.ExpectationsWereMet())
}
