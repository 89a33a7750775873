// Package persist implements the Transactional Persister: the only code
// path that writes scraped articles and a job's final status to the
// database. Everything for one job happens inside a single transaction so
// that a job's article count and its terminal status never disagree.
package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/observability/metrics"
	"scrapeengine/internal/usecase/eventlog"
	"scrapeengine/internal/usecase/scrape"
)

// pgUniqueViolation is the PostgreSQL error code for a unique constraint
// violation. scraped_content has two independent UNIQUE constraints
// (source_url, content_hash); either one firing means the row is a
// duplicate, not a persistence failure.
const pgUniqueViolation = "23505"

// Persister writes a job's extracted articles and final status atomically.
type Persister struct {
	DB     *sql.DB
	Logger *eventlog.Logger
}

// New constructs a Persister.
func New(db *sql.DB, logger *eventlog.Logger) *Persister {
	return &Persister{DB: db, Logger: logger}
}

// SourcePersistenceResult breaks one source's persistence outcome down for
// the Job Manager's per-source job-completion metrics.
type SourcePersistenceResult struct {
	Saved      int
	Duplicates int
	Failures   int
}

// Outcome is what Persist reports back to the Job Manager once the
// transaction has committed.
type Outcome struct {
	TotalSaved  int
	TotalErrors int
	Status      entity.JobStatus
	BySource    map[string]SourcePersistenceResult
}

// Persist writes every extracted article across results, deduplicating by
// source_url and content_hash, computes the job's final status from the
// target article count, and commits the job's completion alongside the
// articles in one transaction. A single article's insert failing does not
// abort the source or the job: it is logged and counted toward
// TotalErrors, and the rest of the batch still runs. Only a failure to
// begin, finalize, or commit the transaction itself aborts the whole job.
//
// cancelled forces the job's final status to JobStatusCancelled regardless
// of how many articles were saved: whatever partial work results carries
// from a cancelled run still gets committed, but the job never ends up
// reporting successful/partial/failed once it has been cancelled.
func (p *Persister) Persist(ctx context.Context, jobID uuid.UUID, target int, results []scrape.SourceResult, cancelled bool) (Outcome, error) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		_ = p.Logger.PersistenceFailure(ctx, jobID, err.Error())
		return Outcome{}, fmt.Errorf("persist: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	totalSaved := 0
	totalErrors := 0
	bySource := make(map[string]SourcePersistenceResult, len(results))

	for _, res := range results {
		sourceOutcome := p.persistSource(ctx, tx, jobID, res)

		// total_errors is extracted-minus-saved: duplicates and insert
		// failures count against it, but a candidate that never made it
		// past the extraction cascade (res.Errors) does not — it is
		// visible only in the extraction-phase metrics.
		totalSaved += sourceOutcome.Saved
		totalErrors += len(res.Extracted) - sourceOutcome.Saved
		bySource[res.SourceName] = sourceOutcome

		_ = p.Logger.SourcePersistenceCompleted(ctx, jobID, res.SourceID, sourceOutcome.Saved, sourceOutcome.Duplicates, sourceOutcome.Failures)
	}

	status := entity.FinalStatus(totalSaved, target)
	if cancelled {
		status = entity.JobStatusCancelled
	}
	if err := finalizeJob(ctx, tx, jobID, status, totalSaved, totalErrors); err != nil {
		_ = p.Logger.PersistenceFailure(ctx, jobID, err.Error())
		return Outcome{}, fmt.Errorf("persist: finalize job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		_ = p.Logger.PersistenceFailure(ctx, jobID, err.Error())
		return Outcome{}, fmt.Errorf("persist: commit: %w", err)
	}

	for name, res := range bySource {
		metrics.RecordSourcePersisted(name, res.Saved, res.Duplicates)
	}

	return Outcome{TotalSaved: totalSaved, TotalErrors: totalErrors, Status: status, BySource: bySource}, nil
}

// persistSource inserts every extracted article for one source. A row that
// collides with an existing source_url or content_hash is a duplicate, not
// a failure. Any other insert error is logged and counted as a failure for
// that one row; the loop continues with the next article regardless.
//
// The source's reported duplicates start from the ones its pre-filter
// already skipped: a run whose every feed item was filtered out before
// fetching still reports how many duplicates it encountered, even though
// nothing reaches the insert loop below.
func (p *Persister) persistSource(ctx context.Context, tx *sql.Tx, jobID uuid.UUID, res scrape.SourceResult) SourcePersistenceResult {
	const query = `
INSERT INTO scraped_content
	(id, source_id, job_id, title, content, author, publication_date, language, content_hash, source_url, processing_status, created_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
ON CONFLICT (source_url) DO NOTHING`

	out := SourcePersistenceResult{Duplicates: res.Metrics.PrefilterDuplicates}

	for _, a := range res.Extracted {
		articleID := uuid.New()
		result, err := tx.ExecContext(ctx, query,
			articleID, a.SourceID, jobID, a.Title, a.Content, nullableString(a.Author), a.PublicationDate,
			a.Language, a.ContentHash, a.SourceURL, entity.ProcessingStatusCompleted,
		)
		if err != nil {
			if isUniqueViolation(err) {
				out.Duplicates++
				continue
			}
			out.Failures++
			_ = p.Logger.ArticleInsertFailure(ctx, jobID, res.SourceID, a.CorrelationID, res.SourceName, a.SourceURL, err.Error())
			continue
		}

		n, err := result.RowsAffected()
		if err != nil {
			out.Failures++
			_ = p.Logger.ArticleInsertFailure(ctx, jobID, res.SourceID, a.CorrelationID, res.SourceName, a.SourceURL, err.Error())
			continue
		}
		if n == 0 {
			out.Duplicates++
			continue
		}

		out.Saved++
		_ = p.Logger.ArticleInsertSuccess(ctx, jobID, res.SourceID, a.CorrelationID, res.SourceName, a.SourceURL, articleID)
	}
	return out
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, i.e. a duplicate row rather than a genuine insert failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func finalizeJob(ctx context.Context, tx *sql.Tx, jobID uuid.UUID, status entity.JobStatus, totalScraped, totalErrors int) error {
	const query = `
UPDATE scraping_jobs
SET status = $1, total_articles_scraped = $2, total_errors = $3, completed_at = now()
WHERE id = $4`
	_, err := tx.ExecContext(ctx, query, string(status), totalScraped, totalErrors, jobID)
	return err
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
