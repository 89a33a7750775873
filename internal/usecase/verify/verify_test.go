package verify_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
	"scrapeengine/internal/usecase/eventlog"
	"scrapeengine/internal/usecase/verify"
)

type stubLogs struct{ counts map[string]int }

func (s stubLogs) Append(ctx context.Context, event entity.LogEvent) error { return nil }
func (s stubLogs) ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]entity.LogEvent, int, error) {
	return nil, 0, nil
}
func (s stubLogs) CountPersistedBySource(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	return s.counts, nil
}

type stubArticles struct {
	counts map[uuid.UUID]repository.SourceActualCount
}

func (s stubArticles) ExistsByURL(ctx context.Context, url string) (bool, error) { return false, nil }
func (s stubArticles) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	return nil, nil
}
func (s stubArticles) Get(ctx context.Context, id uuid.UUID) (*entity.ScrapedArticle, error) {
	return nil, entity.ErrNotFound
}
func (s stubArticles) List(ctx context.Context, params repository.ArticleListParams) ([]entity.ScrapedArticle, int, error) {
	return nil, 0, nil
}
func (s stubArticles) CountByJobGroupedBySource(ctx context.Context, jobID uuid.UUID) (map[uuid.UUID]repository.SourceActualCount, error) {
	return s.counts, nil
}

type noopLogRepo struct{}

func (noopLogRepo) Append(ctx context.Context, event entity.LogEvent) error { return nil }
func (noopLogRepo) ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]entity.LogEvent, int, error) {
	return nil, 0, nil
}
func (noopLogRepo) CountPersistedBySource(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	return nil, nil
}

func TestVerifier_FindsDiscrepancy(t *testing.T) {
	sourceID := uuid.New()
	jobID := uuid.New()

	logs := stubLogs{counts: map[string]int{"Alpha Wire": 5}}
	articles := stubArticles{counts: map[uuid.UUID]repository.SourceActualCount{
		sourceID: {SourceID: sourceID, Count: 4},
	}}

	v := verify.New(logs, articles, eventlog.NewLogger(noopLogRepo{}))
	discrepancies, err := v.Verify(context.Background(), jobID, map[uuid.UUID]string{sourceID: "Alpha Wire"})
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	require.Equal(t, 5, discrepancies[0].Claimed)
	require.Equal(t, 4, discrepancies[0].Actual)
}

func TestVerifier_NoDiscrepancy(t *testing.T) {
	sourceID := uuid.New()
	jobID := uuid.New()

	logs := stubLogs{counts: map[string]int{"Alpha Wire": 3}}
	articles := stubArticles{counts: map[uuid.UUID]repository.SourceActualCount{
		sourceID: {SourceID: sourceID, Count: 3},
	}}

	v := verify.New(logs, articles, eventlog.NewLogger(noopLogRepo{}))
	discrepancies, err := v.Verify(context.Background(), jobID, map[uuid.UUID]string{sourceID: "Alpha Wire"})
	require.NoError(t, err)
	require.Empty(t, discrepancies)
}
