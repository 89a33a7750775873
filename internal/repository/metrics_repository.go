package repository

import (
	"context"
	"time"

	"scrapeengine/internal/domain/entity"
)

// JobWindowStats aggregates scraping_jobs rows for the dashboard's
// look-back window. AvgDurationMs covers only jobs that reached a terminal
// status (completed_at set); ActiveJobs is a point-in-time count and
// ignores the window.
type JobWindowStats struct {
	Triggered     int
	Succeeded     int
	ActiveJobs    int
	AvgDurationMs float64
}

// MetricsRepository is the read-only port backing dashboard_metrics. It
// aggregates across the job, article, and log tables; nothing in the
// scraping engine itself depends on it.
type MetricsRepository interface {
	JobStats(ctx context.Context, since time.Time) (JobWindowStats, error)
	ArticlesScrapedSince(ctx context.Context, since time.Time) (int, error)
	RecentErrors(ctx context.Context, since time.Time, limit int) ([]entity.LogEvent, error)
}
