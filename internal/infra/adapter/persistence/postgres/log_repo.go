package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
)

type LogRepo struct{ db *sql.DB }

func NewLogRepo(db *sql.DB) repository.LogRepository {
	return &LogRepo{db: db}
}

func (repo *LogRepo) Append(ctx context.Context, event entity.LogEvent) error {
	data, err := json.Marshal(event.AdditionalData)
	if err != nil {
		return fmt.Errorf("Append: marshal additional_data: %w", err)
	}

	const query = `
INSERT INTO scraping_logs (job_id, source_id, correlation_id, timestamp, log_level, message, additional_data)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = repo.db.ExecContext(ctx, query,
		event.JobID, event.SourceID, nullableString(event.CorrelationID),
		event.Timestamp, string(event.Level), event.Message, data,
	)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

func (repo *LogRepo) ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]entity.LogEvent, int, error) {
	var total int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scraping_logs WHERE job_id = $1`, jobID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListByJob: count: %w", err)
	}

	const query = `
SELECT id, job_id, source_id, correlation_id, timestamp, log_level, message, additional_data
FROM scraping_logs
WHERE job_id = $1
ORDER BY timestamp ASC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, jobID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByJob: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]entity.LogEvent, 0, pageSize)
	for rows.Next() {
		var e entity.LogEvent
		var sourceID uuid.NullUUID
		var correlationID sql.NullString
		var level string
		var data []byte
		if err := rows.Scan(&e.ID, &e.JobID, &sourceID, &correlationID, &e.Timestamp, &level, &e.Message, &data); err != nil {
			return nil, 0, fmt.Errorf("ListByJob: scan: %w", err)
		}
		if sourceID.Valid {
			e.SourceID = &sourceID.UUID
		}
		e.CorrelationID = correlationID.String
		e.Level = entity.LogLevel(level)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &e.AdditionalData); err != nil {
				return nil, 0, fmt.Errorf("ListByJob: unmarshal additional_data: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListByJob: %w", err)
	}
	return events, total, nil
}

// CountPersistedBySource tallies article_insert_success events for a job,
// grouped by source name. The name is nested under the event's
// source_attribution object, not at the top level of additional_data, so
// the path expression has to descend one object first. This is the
// Verifier's "claimed persisted" side of reconciliation.
func (repo *LogRepo) CountPersistedBySource(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	const query = `
SELECT additional_data -> 'source_attribution' ->> 'source_name' AS source_name, COUNT(*)
FROM scraping_logs
WHERE job_id = $1 AND additional_data ->> 'event_name' = $2
GROUP BY source_name`
	rows, err := repo.db.QueryContext(ctx, query, jobID, entity.EventArticleInsertSuccess)
	if err != nil {
		return nil, fmt.Errorf("CountPersistedBySource: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]int)
	for rows.Next() {
		var sourceName string
		var count int
		if err := rows.Scan(&sourceName, &count); err != nil {
			return nil, fmt.Errorf("CountPersistedBySource: scan: %w", err)
		}
		result[sourceName] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CountPersistedBySource: %w", err)
	}
	return result, nil
}
