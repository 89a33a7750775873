package repository

import (
	"context"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// LogRepository is the append-only port for the structured event log. Rows
// are never mutated or deleted by the engine.
type LogRepository interface {
	Append(ctx context.Context, event entity.LogEvent) error
	ListByJob(ctx context.Context, jobID uuid.UUID, page, pageSize int) ([]entity.LogEvent, int, error)

	// CountPersistedBySource returns, for a job, the number of
	// article_insert_success events grouped by the source_name carried in
	// each event's additional_data — the Verifier's "claimed persisted"
	// side of the reconciliation.
	CountPersistedBySource(ctx context.Context, jobID uuid.UUID) (map[string]int, error)
}
