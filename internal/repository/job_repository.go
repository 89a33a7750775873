package repository

import (
	"context"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// JobRepository is the read/write port for ScrapingJob rows, used by the
// Job Manager and the Startup Recoverer. The Transactional Persister writes
// a job's final status itself, in the same transaction as the article
// inserts it commits (see internal/usecase/persist), so it does not go
// through this interface.
type JobRepository interface {
	Create(ctx context.Context, job *entity.ScrapingJob) error
	SetInProgress(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ScrapingJob, error)
	List(ctx context.Context, page, pageSize int, status *entity.JobStatus) ([]entity.ScrapingJob, int, error)
	Cancel(ctx context.Context, id uuid.UUID) error

	// RecoverStuckJobs transitions every job in new or in-progress whose
	// triggered_at predates the cutoff to failed, and returns how many rows
	// were changed.
	RecoverStuckJobs(ctx context.Context) (int, error)
}
