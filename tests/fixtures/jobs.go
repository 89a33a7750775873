package fixtures

import (
	"time"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// JobOption is a functional option for customizing a test ScrapingJob.
type JobOption func(*entity.ScrapingJob)

// NewTestJob creates a valid ScrapingJob with sensible defaults: a single
// requested source, status "new", and no completion data yet.
//
// Example:
//
//	job := NewTestJob()
//	job := NewTestJob(WithJobStatus(entity.JobStatusPartial), WithArticlesScraped(3, 0))
func NewTestJob(opts ...JobOption) *entity.ScrapingJob {
	j := &entity.ScrapingJob{
		ID:                uuid.New(),
		Status:            entity.JobStatusNew,
		SourcesRequested:  []string{"Example News"},
		ArticlesPerSource: 5,
		TriggeredAt:       time.Now().UTC(),
	}

	for _, opt := range opts {
		opt(j)
	}

	return j
}

// WithJobID sets the ScrapingJob's ID.
func WithJobID(id uuid.UUID) JobOption {
	return func(j *entity.ScrapingJob) { j.ID = id }
}

// WithJobStatus sets the ScrapingJob's Status.
func WithJobStatus(status entity.JobStatus) JobOption {
	return func(j *entity.ScrapingJob) { j.Status = status }
}

// WithSourcesRequested sets the ScrapingJob's SourcesRequested list.
func WithSourcesRequested(sources ...string) JobOption {
	return func(j *entity.ScrapingJob) { j.SourcesRequested = sources }
}

// WithArticlesPerSource sets the ScrapingJob's ArticlesPerSource target.
func WithArticlesPerSource(n int) JobOption {
	return func(j *entity.ScrapingJob) { j.ArticlesPerSource = n }
}

// WithArticlesScraped sets the ScrapingJob's final counters.
func WithArticlesScraped(saved, errors int) JobOption {
	return func(j *entity.ScrapingJob) {
		j.TotalArticlesScraped = saved
		j.TotalErrors = errors
	}
}

// WithCompletedAt marks the ScrapingJob as completed at the given time.
func WithCompletedAt(t time.Time) JobOption {
	return func(j *entity.ScrapingJob) { j.CompletedAt = &t }
}

// WithTriggeredAt overrides the ScrapingJob's TriggeredAt timestamp.
func WithTriggeredAt(t time.Time) JobOption {
	return func(j *entity.ScrapingJob) { j.TriggeredAt = t }
}
