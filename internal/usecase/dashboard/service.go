// Package dashboard computes the dashboard_metrics rollup: job and article
// aggregates over a 7-day look-back window, cached with a short TTL so the
// reader UI can poll it without hammering the aggregate queries.
package dashboard

import (
	"context"
	"sync"
	"time"

	"scrapeengine/internal/repository"
)

// Window is the look-back period dashboard_metrics aggregates over.
const Window = 7 * 24 * time.Hour

// DefaultCacheTTL is how long a computed rollup is served before the
// aggregates are re-queried.
const DefaultCacheTTL = 60 * time.Second

// recentErrorLimit caps how many error events the rollup carries.
const recentErrorLimit = 10

// RecentError is one error-level log event, trimmed to what the dashboard
// shows.
type RecentError struct {
	JobID     string
	Timestamp time.Time
	Message   string
	EventName string
}

// Metrics is the dashboard_metrics rollup.
type Metrics struct {
	JobsTriggered        int
	SuccessRate          float64
	ArticlesScraped      int
	AverageJobDurationMs float64
	ActiveJobs           int
	RecentErrors         []RecentError
}

// Service computes and caches the dashboard rollup. The cache lives on the
// Service itself rather than in package state; one Service is created at
// startup and shared by all requests.
type Service struct {
	repo repository.MetricsRepository
	ttl  time.Duration
	now  func() time.Time

	mu        sync.Mutex
	cached    Metrics
	fetchedAt time.Time
}

// New constructs a Service with DefaultCacheTTL.
func New(repo repository.MetricsRepository) *Service {
	return &Service{repo: repo, ttl: DefaultCacheTTL, now: time.Now}
}

// Metrics returns the current rollup, recomputing it only when the cached
// copy is older than the TTL. Concurrent callers during a recompute
// serialize on the cache lock; the window queries are cheap enough that a
// single-flight layer is not worth its complexity here.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.cached, nil
	}

	m, err := s.compute(ctx)
	if err != nil {
		return Metrics{}, err
	}
	s.cached = m
	s.fetchedAt = s.now()
	return m, nil
}

func (s *Service) compute(ctx context.Context) (Metrics, error) {
	since := s.now().Add(-Window)

	jobs, err := s.repo.JobStats(ctx, since)
	if err != nil {
		return Metrics{}, err
	}
	articles, err := s.repo.ArticlesScrapedSince(ctx, since)
	if err != nil {
		return Metrics{}, err
	}
	errorEvents, err := s.repo.RecentErrors(ctx, since, recentErrorLimit)
	if err != nil {
		return Metrics{}, err
	}

	recent := make([]RecentError, 0, len(errorEvents))
	for _, e := range errorEvents {
		name, _ := e.AdditionalData["event_name"].(string)
		recent = append(recent, RecentError{
			JobID:     e.JobID.String(),
			Timestamp: e.Timestamp,
			Message:   e.Message,
			EventName: name,
		})
	}

	successRate := 0.0
	if jobs.Triggered > 0 {
		successRate = float64(jobs.Succeeded) / float64(jobs.Triggered)
	}

	return Metrics{
		JobsTriggered:        jobs.Triggered,
		SuccessRate:          successRate,
		ArticlesScraped:      articles,
		AverageJobDurationMs: jobs.AvgDurationMs,
		ActiveJobs:           jobs.ActiveJobs,
		RecentErrors:         recent,
	}, nil
}
