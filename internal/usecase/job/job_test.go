package job_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DATA-DOG/go-sqlmock"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/infra/fetcher"
	"scrapeengine/internal/infra/scraper"
	"scrapeengine/internal/repository"
	"scrapeengine/internal/usecase/eventlog"
	jobUC "scrapeengine/internal/usecase/job"
	"scrapeengine/internal/usecase/persist"
	"scrapeengine/internal/usecase/scrape"
	"scrapeengine/internal/usecase/verify"
	"scrapeengine/tests/fixtures"
)

// fakeJobRepo is an in-memory JobRepository good enough to observe the
// status transitions Manager.run drives a job through.
type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.ScrapingJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*entity.ScrapingJob)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *entity.ScrapingJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	f.jobs[job.ID] = &cp
	return nil
}

func (f *fakeJobRepo) SetInProgress(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return entity.ErrNotFound
	}
	j.Status = entity.JobStatusInProgress
	return nil
}

func (f *fakeJobRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ScrapingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobRepo) List(ctx context.Context, page, pageSize int, status *entity.JobStatus) ([]entity.ScrapingJob, int, error) {
	return nil, 0, nil
}

func (f *fakeJobRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return entity.ErrNotFound
	}
	if j.Status.IsTerminal() {
		return entity.ErrJobNotCancellable
	}
	j.Status = entity.JobStatusCancelled
	now := time.Now().UTC()
	j.CompletedAt = &now
	return nil
}

func (f *fakeJobRepo) RecoverStuckJobs(ctx context.Context) (int, error) {
	return 0, nil
}

func (f *fakeJobRepo) status(t *testing.T, id uuid.UUID) entity.JobStatus {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	require.True(t, ok)
	return j.Status
}

// fakeSourceRepo resolves source names against a fixed in-memory set.
type fakeSourceRepo struct {
	byName map[string]*entity.Source
}

func (f *fakeSourceRepo) GetByName(ctx context.Context, name string) (*entity.Source, error) {
	src, ok := f.byName[name]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return src, nil
}

func (f *fakeSourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Source, error) {
	for _, s := range f.byName {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (f *fakeSourceRepo) List(ctx context.Context, page, pageSize int) ([]entity.Source, int, error) {
	return nil, 0, nil
}

func (f *fakeSourceRepo) Create(ctx context.Context, s *entity.Source) error { return nil }
func (f *fakeSourceRepo) Update(ctx context.Context, s *entity.Source) error { return nil }
func (f *fakeSourceRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }

// fakeArticleRepo backs both the Per-Source Extractor's pre-filter
// (always reports "not seen before") and the Verifier's actual-count side,
// which is configured directly rather than derived from a real table since
// the Transactional Persister in these tests writes through sqlmock, not
// through this repository.
type fakeArticleRepo struct {
	actual map[uuid.UUID]repository.SourceActualCount
}

func (f *fakeArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	return false, nil
}

func (f *fakeArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeArticleRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ScrapedArticle, error) {
	return nil, entity.ErrNotFound
}

func (f *fakeArticleRepo) List(ctx context.Context, params repository.ArticleListParams) ([]entity.ScrapedArticle, int, error) {
	return nil, 0, nil
}

func (f *fakeArticleRepo) CountByJobGroupedBySource(ctx context.Context, jobID uuid.UUID) (map[uuid.UUID]repository.SourceActualCount, error) {
	return f.actual, nil
}

// fakeLogRepo records nothing but satisfies LogRepository for every
// component sharing one eventlog.Logger, and answers the Verifier's
// "claimed persisted" query with a fixed map configured by the test.
type fakeLogRepo struct {
	mu     sync.Mutex
	events []entity.LogEvent
	claims map[string]int
}

func (f *fakeLogRepo) Append(ctx context.Context, event entity.LogEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLogRepo) ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]entity.LogEvent, int, error) {
	return nil, 0, nil
}

func (f *fakeLogRepo) CountPersistedBySource(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	return f.claims, nil
}

func (f *fakeLogRepo) eventNames(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.events))
	for _, e := range f.events {
		if n, ok := e.AdditionalData["event_name"].(string); ok {
			names = append(names, n)
		}
	}
	return names
}

func TestManager_Trigger_RejectsInvalidArgs(t *testing.T) {
	mgr := jobUC.New(newFakeJobRepo(), &fakeSourceRepo{}, nil, nil, nil, eventlog.NewLogger(&fakeLogRepo{}))

	_, err := mgr.Trigger(context.Background(), nil, 5, false)
	require.Error(t, err)
	var ve *entity.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = mgr.Trigger(context.Background(), []string{"Alpha"}, 0, false)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ve)

	_, err = mgr.Trigger(context.Background(), []string{"Alpha"}, 101, false)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ve)
}

func TestManager_Trigger_UnknownSourceIsRejectedBeforeJobCreation(t *testing.T) {
	jobs := newFakeJobRepo()
	mgr := jobUC.New(jobs, &fakeSourceRepo{byName: map[string]*entity.Source{}}, nil, nil, nil, eventlog.NewLogger(&fakeLogRepo{}))

	_, err := mgr.Trigger(context.Background(), []string{"Does Not Exist"}, 5, false)
	require.Error(t, err)
	assert.Empty(t, jobs.jobs)
}

func TestManager_Cancel_RejectsTerminalJob(t *testing.T) {
	jobs := newFakeJobRepo()
	id := uuid.New()
	_ = jobs.Create(context.Background(), &entity.ScrapingJob{ID: id, Status: entity.JobStatusSuccessful})

	mgr := jobUC.New(jobs, &fakeSourceRepo{}, nil, nil, nil, eventlog.NewLogger(&fakeLogRepo{}))
	err := mgr.Cancel(context.Background(), id)
	assert.Error(t, err)
}

// TestManager_Trigger_HappyPath_EndToEnd drives one full job through every
// stage: RSS fetch, candidate page fetch and extraction, transactional
// persistence, and verification, then asserts the job reaches
// "successful" with the expected counters and the required terminal log
// events (P4) each appear exactly once.
func TestManager_Trigger_HappyPath_EndToEnd(t *testing.T) {
	articleHTML := func(n int) string {
		return fmt.Sprintf(`<html><head><title>Article %d</title></head>
<body><article><p>%s</p></article></body></html>`, n, longParagraph(n))
	}

	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a1":
			_, _ = w.Write([]byte(articleHTML(1)))
		case "/a2":
			_, _ = w.Write([]byte(articleHTML(2)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer pages.Close()

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><title>Article 1</title><link>%s/a1</link></item>
<item><title>Article 2</title><link>%s/a2</link></item>
</channel></rss>`, pages.URL, pages.URL)
	}))
	defer feed.Close()

	src := fixtures.NewTestSource(fixtures.WithSourceName("Test Source"), fixtures.WithRSSURL(feed.URL))
	sources := &fakeSourceRepo{byName: map[string]*entity.Source{src.Name: src}}
	jobs := newFakeJobRepo()
	logs := &fakeLogRepo{claims: map[string]int{src.Name: 2}}
	articles := &fakeArticleRepo{actual: map[uuid.UUID]repository.SourceActualCount{
		src.ID: {SourceID: src.ID, Count: 2},
	}}
	evLogger := eventlog.NewLogger(logs)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scraped_content").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO scraped_content").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE scraping_jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	feedFetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 5 * time.Second})
	pageCfg := fetcher.DefaultConfig()
	pageCfg.DenyPrivateIPs = false
	pageFetcher := fetcher.NewPageFetcher(pageCfg, "")

	extractor := scrape.New(articles, feedFetcher, pageFetcher, evLogger)
	persister := persist.New(db, evLogger)
	verifier := verify.New(logs, articles, evLogger)
	mgr := jobUC.New(jobs, sources, extractor, persister, verifier, evLogger)

	j, err := mgr.Trigger(context.Background(), []string{src.Name}, 2, false)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return jobs.status(t, j.ID).IsTerminal()
	}, 10*time.Second, 20*time.Millisecond, "job never reached a terminal status")

	assert.Equal(t, entity.JobStatusSuccessful, jobs.status(t, j.ID))
	require.NoError(t, mock.ExpectationsWereMet())

	names := logs.eventNames(t)
	assertExactlyOnce := func(name string) {
		count := 0
		for _, n := range names {
			if n == name {
				count++
			}
		}
		assert.Equalf(t, 1, count, "expected exactly one %s event, saw %d", name, count)
	}
	assertExactlyOnce(entity.EventJobStarted)
	assertExactlyOnce(entity.EventExtractionPhaseCompleted)
	assertExactlyOnce(entity.EventDatabaseVerificationCompleted)
	assertExactlyOnce(entity.EventJobCompletedEnhanced)
}

// TestManager_Cancel_CommitsPartialWork exercises scenario 5 (§8): a job
// cancelled while one source is still extracting must still persist the
// source that already finished, end up in "cancelled" rather than whatever
// FinalStatus would otherwise compute, and emit every terminal event
// exactly once — cancellation must never cause Persist/Verify to be
// skipped.
func TestManager_Cancel_CommitsPartialWork(t *testing.T) {
	articleHTML := func(n int) string {
		return fmt.Sprintf(`<html><head><title>Article %d</title></head>
<body><article><p>%s</p></article></body></html>`, n, longParagraph(n))
	}

	fastPages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML(1)))
	}))
	defer fastPages.Close()

	fastFeed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Fast Feed</title>
<item><title>Article 1</title><link>%s/a1</link></item>
</channel></rss>`, fastPages.URL)
	}))
	defer fastFeed.Close()

	// slowFeed never answers on its own; it only unblocks once the request
	// context it was handed is cancelled, which is exactly what happens
	// when Manager.Cancel fires mid-extraction.
	slowFeed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	defer slowFeed.Close()

	fastSrc := fixtures.NewTestSource(fixtures.WithSourceName("Fast Source"), fixtures.WithDomain("fast.example.com"), fixtures.WithRSSURL(fastFeed.URL))
	slowSrc := fixtures.NewTestSource(fixtures.WithSourceName("Slow Source"), fixtures.WithDomain("slow.example.com"), fixtures.WithRSSURL(slowFeed.URL))
	sources := &fakeSourceRepo{byName: map[string]*entity.Source{
		fastSrc.Name: fastSrc,
		slowSrc.Name: slowSrc,
	}}
	jobs := newFakeJobRepo()
	logs := &fakeLogRepo{claims: map[string]int{fastSrc.Name: 1}}
	articles := &fakeArticleRepo{actual: map[uuid.UUID]repository.SourceActualCount{
		fastSrc.ID: {SourceID: fastSrc.ID, Count: 1},
	}}
	evLogger := eventlog.NewLogger(logs)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scraped_content").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE scraping_jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	feedFetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 5 * time.Second})
	pageCfg := fetcher.DefaultConfig()
	pageCfg.DenyPrivateIPs = false
	pageFetcher := fetcher.NewPageFetcher(pageCfg, "")

	extractor := scrape.New(articles, feedFetcher, pageFetcher, evLogger)
	persister := persist.New(db, evLogger)
	verifier := verify.New(logs, articles, evLogger)
	mgr := jobUC.New(jobs, sources, extractor, persister, verifier, evLogger)

	j, err := mgr.Trigger(context.Background(), []string{fastSrc.Name, slowSrc.Name}, 1, false)
	require.NoError(t, err)

	// Wait for the fast source to finish extracting before cancelling, so
	// the job is cancelled mid-run rather than before any work happened.
	require.Eventually(t, func() bool {
		for _, n := range logs.eventNames(t) {
			if n == entity.EventSourceExtractionCompleted {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond, "fast source never completed extraction")

	require.NoError(t, mgr.Cancel(context.Background(), j.ID))

	require.Eventually(t, func() bool {
		for _, n := range logs.eventNames(t) {
			if n == entity.EventJobCompletedEnhanced {
				return true
			}
		}
		return false
	}, 10*time.Second, 20*time.Millisecond, "job never ran persistence/verification after cancellation")

	assert.Equal(t, entity.JobStatusCancelled, jobs.status(t, j.ID))
	require.NoError(t, mock.ExpectationsWereMet())

	names := logs.eventNames(t)
	assertExactlyOnce := func(name string) {
		count := 0
		for _, n := range names {
			if n == name {
				count++
			}
		}
		assert.Equalf(t, 1, count, "expected exactly one %s event, saw %d", name, count)
	}
	assertExactlyOnce(entity.EventJobStarted)
	assertExactlyOnce(entity.EventJobCancelled)
	assertExactlyOnce(entity.EventExtractionPhaseCompleted)
	assertExactlyOnce(entity.EventDatabaseVerificationCompleted)
	assertExactlyOnce(entity.EventJobCompletedEnhanced)
}

// longParagraph returns article body text well over the extractor's
// 100-character content floor and 30-character paragraph floor.
func longParagraph(n int) string {
	return fmt.Sprintf(
		"This is the full body of test article number %d, long enough on its own to clear every length floor the content extraction cascade enforces before accepting a strategy's output as the final result.",
		n,
	)
}
