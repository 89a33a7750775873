package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
)

type JobRepo struct{ db *sql.DB }

func NewJobRepo(db *sql.DB) repository.JobRepository {
	return &JobRepo{db: db}
}

const jobColumns = `id, status, sources_requested, articles_per_source, total_articles_scraped, total_errors, triggered_at, completed_at`

func scanJob(scanner interface {
	Scan(dest ...any) error
}) (*entity.ScrapingJob, error) {
	var j entity.ScrapingJob
	var status string
	var sources []string
	var completedAt sql.NullTime
	if err := scanner.Scan(
		&j.ID, &status, &sources, &j.ArticlesPerSource,
		&j.TotalArticlesScraped, &j.TotalErrors, &j.TriggeredAt, &completedAt,
	); err != nil {
		return nil, err
	}
	j.Status = entity.JobStatus(status)
	j.SourcesRequested = sources
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}
	return &j, nil
}

func (repo *JobRepo) Create(ctx context.Context, job *entity.ScrapingJob) error {
	const query = `
INSERT INTO scraping_jobs (id, status, sources_requested, articles_per_source, total_articles_scraped, total_errors, triggered_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		job.ID, string(job.Status), job.SourcesRequested, job.ArticlesPerSource,
		job.TotalArticlesScraped, job.TotalErrors, job.TriggeredAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *JobRepo) SetInProgress(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE scraping_jobs SET status = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, string(entity.JobStatusInProgress), id)
	if err != nil {
		return fmt.Errorf("SetInProgress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *JobRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ScrapingJob, error) {
	query := fmt.Sprintf(`SELECT %s FROM scraping_jobs WHERE id = $1 LIMIT 1`, jobColumns)
	job, err := scanJob(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return job, nil
}

func (repo *JobRepo) List(ctx context.Context, page, pageSize int, status *entity.JobStatus) ([]entity.ScrapingJob, int, error) {
	where := ""
	args := []any{}
	if status != nil {
		where = "WHERE status = $1"
		args = append(args, string(*status))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM scraping_jobs " + where
	if err := repo.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	limitIdx := len(args) - 1
	offsetIdx := len(args)
	query := fmt.Sprintf(`
SELECT %s
FROM scraping_jobs
%s
ORDER BY triggered_at DESC
LIMIT $%d OFFSET $%d`, jobColumns, where, limitIdx, offsetIdx)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]entity.ScrapingJob, 0, pageSize)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: scan: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	return jobs, total, nil
}

// Cancel marks an in-progress job cancelled. It is a no-op error if the job
// is not currently in-progress, matching cancel_job's contract that only
// running jobs can be cancelled.
func (repo *JobRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	const query = `
UPDATE scraping_jobs SET status = $1, completed_at = now()
WHERE id = $2 AND status = $3`
	res, err := repo.db.ExecContext(ctx, query, string(entity.JobStatusCancelled), id, string(entity.JobStatusInProgress))
	if err != nil {
		return fmt.Errorf("Cancel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrJobNotCancellable
	}
	return nil
}

// RecoverStuckJobs fails every job left in new or in-progress past
// StuckJobCutoff, presumably abandoned by a process that died mid-run.
func (repo *JobRepo) RecoverStuckJobs(ctx context.Context) (int, error) {
	const query = `
UPDATE scraping_jobs SET status = $1, completed_at = now()
WHERE status IN ($2, $3) AND triggered_at < $4`
	cutoff := time.Now().UTC().Add(-entity.StuckJobCutoff)
	res, err := repo.db.ExecContext(ctx, query,
		string(entity.JobStatusFailed), string(entity.JobStatusNew), string(entity.JobStatusInProgress), cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("RecoverStuckJobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("RecoverStuckJobs: %w", err)
	}
	return int(n), nil
}
