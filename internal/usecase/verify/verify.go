// Package verify implements the Verifier: a post-persistence reconciliation
// pass that compares what the event log claims was inserted against what
// actually landed in the articles table, and records any discrepancy. It
// runs strictly after the Transactional Persister commits and never changes
// a job's final status — a verification finding is a diagnostic, not a
// correction.
package verify

import (
	"context"

	"github.com/google/uuid"

	"scrapeengine/internal/repository"
	"scrapeengine/internal/usecase/eventlog"
)

// Verifier reconciles the event log against the articles table.
type Verifier struct {
	Logs     repository.LogRepository
	Articles repository.ArticleRepository
	Logger   *eventlog.Logger
}

// New constructs a Verifier.
func New(logs repository.LogRepository, articles repository.ArticleRepository, logger *eventlog.Logger) *Verifier {
	return &Verifier{Logs: logs, Articles: articles, Logger: logger}
}

// SourceDiscrepancy reports, for one source, the gap between the inserts
// the event log claims happened and the rows that actually exist.
type SourceDiscrepancy struct {
	SourceName string
	Claimed    int
	Actual     int
}

// Verify compares claimed-vs-actual counts for every source touched by
// jobID and emits a single database_verification_completed event summarizing
// the findings. sourceNames maps each source's ID to the name under which
// the event log recorded its article_insert_success events; the Job Manager
// already holds this mapping from the sources it fanned the job out over.
func (v *Verifier) Verify(ctx context.Context, jobID uuid.UUID, sourceNames map[uuid.UUID]string) ([]SourceDiscrepancy, error) {
	claimed, err := v.Logs.CountPersistedBySource(ctx, jobID)
	if err != nil {
		return nil, err
	}

	actual, err := v.Articles.CountByJobGroupedBySource(ctx, jobID)
	if err != nil {
		return nil, err
	}

	discrepancies := make([]SourceDiscrepancy, 0)
	details := make(map[string]any, len(sourceNames))
	found := false
	totalClaimed, totalActual := 0, 0

	for id, name := range sourceNames {
		claimedCount := claimed[name]
		actualCount := actual[id].Count
		totalClaimed += claimedCount
		totalActual += actualCount
		details[name] = map[string]any{
			"claimed":    claimedCount,
			"actual":     actualCount,
			"sample_ids": actual[id].SampleIDs,
		}
		if claimedCount != actualCount {
			found = true
			discrepancies = append(discrepancies, SourceDiscrepancy{
				SourceName: name,
				Claimed:    claimedCount,
				Actual:     actualCount,
			})
		}
	}

	if err := v.Logger.DatabaseVerificationCompleted(ctx, jobID, found, totalClaimed, totalActual, details); err != nil {
		return discrepancies, err
	}
	return discrepancies, nil
}
