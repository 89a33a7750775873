package entity

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the status machine a ScrapingJob moves through.
type JobStatus string

// Job statuses. new -> in-progress -> (successful | partial | failed); any
// in-progress job may additionally be forced to cancelled.
const (
	JobStatusNew        JobStatus = "new"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusSuccessful JobStatus = "successful"
	JobStatusPartial    JobStatus = "partial"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether a job in this status has completed and will
// never transition again.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSuccessful, JobStatusPartial, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// MinArticlesPerSource and MaxArticlesPerSource bound the trigger API's
// maxArticles argument.
const (
	MinArticlesPerSource = 1
	MaxArticlesPerSource = 100
)

// ScrapingJob tracks one run of the engine: the sources it was asked to
// scrape, how far it has progressed, and its final counters.
type ScrapingJob struct {
	ID                   uuid.UUID
	Status               JobStatus
	SourcesRequested     []string
	ArticlesPerSource    int
	TotalArticlesScraped int
	TotalErrors          int
	TriggeredAt          time.Time
	CompletedAt          *time.Time
}

// Validate checks the arguments accepted at trigger time, matching the
// trigger_job contract: non-empty sources, maxArticles in [1,100].
func ValidateTriggerArgs(sources []string, articlesPerSource int) error {
	if len(sources) == 0 {
		return &ValidationError{Field: "sources", Message: "at least one source is required"}
	}
	for _, s := range sources {
		if s == "" {
			return &ValidationError{Field: "sources", Message: "source names must not be empty"}
		}
	}
	if articlesPerSource < MinArticlesPerSource || articlesPerSource > MaxArticlesPerSource {
		return &ValidationError{
			Field:   "maxArticles",
			Message: "maxArticles must be between 1 and 100",
		}
	}
	return nil
}

// NewScrapingJob constructs a job in its initial state. The caller is
// responsible for persisting it; this constructor only establishes the
// invariant that a new job has a nil CompletedAt and zero counters.
func NewScrapingJob(sources []string, articlesPerSource int) *ScrapingJob {
	return &ScrapingJob{
		ID:                uuid.New(),
		Status:            JobStatusNew,
		SourcesRequested:  sources,
		ArticlesPerSource: articlesPerSource,
		TriggeredAt:       time.Now().UTC(),
	}
}

// Finalize moves the job to a terminal status and stamps CompletedAt. It is
// the only path by which a ScrapingJob acquires a non-nil CompletedAt.
func (j *ScrapingJob) Finalize(status JobStatus, totalScraped, totalErrors int) {
	j.Status = status
	j.TotalArticlesScraped = totalScraped
	j.TotalErrors = totalErrors
	now := time.Now().UTC()
	j.CompletedAt = &now
}

// FinalStatus computes the terminal status per the Transactional
// Persister's rule: successful iff saved >= target, partial iff saved > 0,
// otherwise failed.
func FinalStatus(saved, target int) JobStatus {
	switch {
	case saved >= target:
		return JobStatusSuccessful
	case saved > 0:
		return JobStatusPartial
	default:
		return JobStatusFailed
	}
}

// StuckJobCutoff is the age beyond which a job in new or in-progress is
// considered abandoned by a dead process.
const StuckJobCutoff = time.Hour
