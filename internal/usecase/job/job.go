// Package job implements the Job Manager: the orchestrator that turns one
// trigger_job request into a running ScrapingJob. It fans a Per-Source
// Extractor task out across every requested source with settled-join
// semantics (one source failing never aborts its siblings), hands the
// combined results to the Transactional Persister in a single commit, runs
// the Verifier as an advisory reconciliation pass, and emits the job
// lifecycle events the Structured Logger records.
package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/observability/metrics"
	"scrapeengine/internal/repository"
	"scrapeengine/internal/usecase/eventlog"
	"scrapeengine/internal/usecase/persist"
	"scrapeengine/internal/usecase/scrape"
	"scrapeengine/internal/usecase/verify"
)

// Manager owns the full lifecycle of every job it triggers. A single
// Manager is shared across all HTTP requests and is safe for concurrent use.
type Manager struct {
	Jobs      repository.JobRepository
	Sources   repository.SourceRepository
	Extractor *scrape.Extractor
	Persister *persist.Persister
	Verifier  *verify.Verifier
	Logger    *eventlog.Logger

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

// New constructs a Manager.
func New(jobs repository.JobRepository, sources repository.SourceRepository, extractor *scrape.Extractor, persister *persist.Persister, verifier *verify.Verifier, logger *eventlog.Logger) *Manager {
	return &Manager{
		Jobs:      jobs,
		Sources:   sources,
		Extractor: extractor,
		Persister: persister,
		Verifier:  verifier,
		Logger:    logger,
		cancels:   make(map[uuid.UUID]context.CancelFunc),
	}
}

// Trigger validates a trigger_job request, resolves the requested source
// names, creates the job row, and starts the run in the background. It
// returns as soon as the job row exists, matching trigger_job's contract
// that the caller gets a job_id back immediately rather than waiting for
// the run to finish. tracking turns on per-field extraction traces for
// every candidate the job processes; the traces surface on the job's
// extraction_completed events, never on the article rows themselves.
func (m *Manager) Trigger(ctx context.Context, sources []string, articlesPerSource int, tracking bool) (*entity.ScrapingJob, error) {
	if err := entity.ValidateTriggerArgs(sources, articlesPerSource); err != nil {
		return nil, err
	}

	resolved := make([]entity.Source, 0, len(sources))
	for _, name := range sources {
		src, err := m.Sources.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("job: resolve source %q: %w", name, err)
		}
		resolved = append(resolved, *src)
	}

	j := entity.NewScrapingJob(sources, articlesPerSource)
	if err := m.Jobs.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("job: create: %w", err)
	}
	_ = m.Logger.JobStarted(ctx, j.ID, sources, articlesPerSource)
	metrics.RecordJobTriggered()

	runCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancels[j.ID] = cancel
	m.mu.Unlock()

	go m.run(runCtx, j.ID, resolved, articlesPerSource, tracking)

	return j, nil
}

// Cancel marks jobID cancelled and stops extractAll from spawning any
// source it hasn't already started. Sources already in flight finish (or
// are cut short by the cancelled context) and whatever they extracted
// still goes through Persist and Verify — cancelling a job commits its
// partial progress, it does not discard it.
func (m *Manager) Cancel(ctx context.Context, jobID uuid.UUID) error {
	if err := m.Jobs.Cancel(ctx, jobID); err != nil {
		return err
	}

	m.mu.Lock()
	cancel, ok := m.cancels[jobID]
	m.mu.Unlock()
	if ok {
		cancel()
	}

	_ = m.Logger.JobCancelled(ctx, jobID)
	return nil
}

// run is the background goroutine started by Trigger. It never returns an
// error: every failure mode either lands the job in a terminal status via
// the Transactional Persister, or is left for the Startup Recoverer to
// catch if the process dies mid-run.
//
// A cancellation only stops extractAll from spawning additional sources; it
// never skips persistence, verification, or their completion events. Once
// extraction has settled, whatever was extracted — from a cancelled run or
// not — still goes through Persist and Verify so the job's final status
// reflects exactly what got committed, per the Job Manager's persist-phase
// contract.
func (m *Manager) run(ctx context.Context, jobID uuid.UUID, sources []entity.Source, articlesPerSource int, tracking bool) {
	defer m.clearCancel(jobID)
	start := time.Now()

	if err := m.Jobs.SetInProgress(ctx, jobID); err != nil {
		return
	}

	stopSnapshots := m.Logger.StartPerformanceSnapshots(ctx, jobID)
	defer stopSnapshots()

	results := m.extractAll(ctx, jobID, sources, articlesPerSource, tracking)
	cancelled := ctx.Err() != nil

	// A cancelled job still has to commit whatever was extracted and log
	// its terminal events — those database calls must not themselves be
	// cut short by the cancellation that ended extraction.
	runCtx := ctx
	if cancelled {
		runCtx = context.WithoutCancel(ctx)
	}

	successfulSources, failedSources, totalExtracted := 0, 0, 0
	extractionFailures := make(map[string]string)
	for _, r := range results {
		totalExtracted += len(r.Extracted)
		if r.FailureReason != "" {
			failedSources++
			extractionFailures[r.SourceName] = r.FailureReason
		} else {
			successfulSources++
		}
	}
	_ = m.Logger.ExtractionPhaseCompleted(runCtx, jobID, successfulSources, failedSources, totalExtracted, extractionFailures)

	target := articlesPerSource * len(sources)
	outcome, err := m.Persister.Persist(runCtx, jobID, target, results, cancelled)
	if err != nil {
		return
	}

	sourceNames := make(map[uuid.UUID]string, len(sources))
	for _, s := range sources {
		sourceNames[s.ID] = s.Name
	}
	_, _ = m.Verifier.Verify(runCtx, jobID, sourceNames)

	extractedBySource := make(map[string]int, len(results))
	candidatesProcessed := 0
	for _, r := range results {
		extractedBySource[r.SourceName] = len(r.Extracted)
		candidatesProcessed += r.Metrics.CandidatesProcessed
	}

	totalDuplicates := 0
	sourceMetrics := make(map[string]any, len(outcome.BySource))
	for name, res := range outcome.BySource {
		totalDuplicates += res.Duplicates
		sourceMetrics[name] = map[string]any{
			"extracted":  extractedBySource[name],
			"saved":      res.Saved,
			"duplicates": res.Duplicates,
			"failures":   res.Failures,
			"success":    res.Failures == 0,
		}
	}

	totals := map[string]any{
		"target_articles":      target,
		"candidates_processed": candidatesProcessed,
		"extracted":            totalExtracted,
		"saved":                outcome.TotalSaved,
		"duplicates":           totalDuplicates,
		"actual_success_rate":  successRate(outcome.TotalSaved, target),
	}
	_ = m.Logger.JobCompletedEnhanced(runCtx, jobID, outcome.Status, outcome.TotalSaved, outcome.TotalErrors, sourceMetrics, totals)
	metrics.RecordJobCompleted(string(outcome.Status), time.Since(start))
}

// successRate is saved/target, or 0 when there was no target to measure
// against (e.g. a job with zero resolved sources).
func successRate(saved, target int) float64 {
	if target == 0 {
		return 0
	}
	return float64(saved) / float64(target)
}

// extractAll runs one Per-Source Extractor task per source concurrently and
// joins on all of them settling, successful or not, before returning. It
// stops launching new sources once ctx is cancelled but still waits for
// sources already in flight, since ExtractSource itself honors ctx
// cancellation internally (feed retries, page fetches) and will return
// promptly.
func (m *Manager) extractAll(ctx context.Context, jobID uuid.UUID, sources []entity.Source, articlesPerSource int, tracking bool) []scrape.SourceResult {
	results := make([]scrape.SourceResult, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		i, src := i, src
		g.Go(func() error {
			results[i] = m.Extractor.ExtractSource(ctx, jobID, src, articlesPerSource, tracking)
			return nil
		})
	}
	_ = g.Wait() // every task reports its own outcome in results[i]; Wait just settles the join

	return results
}

func (m *Manager) clearCancel(jobID uuid.UUID) {
	m.mu.Lock()
	delete(m.cancels, jobID)
	m.mu.Unlock()
}
