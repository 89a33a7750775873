package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
	"scrapeengine/internal/resilience/circuitbreaker"
)

// MetricsRepo runs the dashboard's aggregate queries behind a DB circuit
// breaker: the dashboard is polled, its queries are the heaviest reads in
// the module, and a degraded database is better served by a fast
// ErrOpenState than by piling up 30s statement timeouts.
type MetricsRepo struct{ db *circuitbreaker.DBCircuitBreaker }

func NewMetricsRepo(db *sql.DB) repository.MetricsRepository {
	return &MetricsRepo{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

// JobStats aggregates the job rows triggered since the cutoff. The active
// count deliberately ignores the window: a job still in new/in-progress is
// active no matter when it was triggered (and anything older than the
// stuck-job threshold gets swept to failed regardless).
func (repo *MetricsRepo) JobStats(ctx context.Context, since time.Time) (repository.JobWindowStats, error) {
	var stats repository.JobWindowStats

	const windowQuery = `
SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE status = $2),
    COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - triggered_at)) * 1000) FILTER (WHERE completed_at IS NOT NULL), 0)
FROM scraping_jobs
WHERE triggered_at >= $1`
	err := repo.db.QueryRowContext(ctx, windowQuery, since, string(entity.JobStatusSuccessful)).
		Scan(&stats.Triggered, &stats.Succeeded, &stats.AvgDurationMs)
	if err != nil {
		return repository.JobWindowStats{}, fmt.Errorf("JobStats: window: %w", err)
	}

	const activeQuery = `SELECT COUNT(*) FROM scraping_jobs WHERE status IN ($1, $2)`
	err = repo.db.QueryRowContext(ctx, activeQuery, string(entity.JobStatusNew), string(entity.JobStatusInProgress)).
		Scan(&stats.ActiveJobs)
	if err != nil {
		return repository.JobWindowStats{}, fmt.Errorf("JobStats: active: %w", err)
	}

	return stats, nil
}

func (repo *MetricsRepo) ArticlesScrapedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scraped_content WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ArticlesScrapedSince: %w", err)
	}
	return count, nil
}

// RecentErrors returns the newest error-level log events since the cutoff,
// newest first.
func (repo *MetricsRepo) RecentErrors(ctx context.Context, since time.Time, limit int) ([]entity.LogEvent, error) {
	const query = `
SELECT id, job_id, source_id, correlation_id, timestamp, log_level, message, additional_data
FROM scraping_logs
WHERE log_level = $1 AND timestamp >= $2
ORDER BY timestamp DESC
LIMIT $3`
	rows, err := repo.db.QueryContext(ctx, query, string(entity.LogLevelError), since, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentErrors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]entity.LogEvent, 0, limit)
	for rows.Next() {
		var e entity.LogEvent
		var sourceID uuid.NullUUID
		var correlationID sql.NullString
		var level string
		var data []byte
		if err := rows.Scan(&e.ID, &e.JobID, &sourceID, &correlationID, &e.Timestamp, &level, &e.Message, &data); err != nil {
			return nil, fmt.Errorf("RecentErrors: scan: %w", err)
		}
		if sourceID.Valid {
			e.SourceID = &sourceID.UUID
		}
		e.CorrelationID = correlationID.String
		e.Level = entity.LogLevel(level)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.AdditionalData); err != nil {
				return nil, fmt.Errorf("RecentErrors: unmarshal additional_data: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RecentErrors: %w", err)
	}
	return events, nil
}
