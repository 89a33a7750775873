// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the scraping engine's business metrics:
//   - Job metrics (triggered, completed by status, duration)
//   - Article metrics (persisted, duplicates, extraction failures)
//   - Content fetch metrics (attempts, duration, size)
//   - Database connection pool metrics
//
// HTTP request metrics are owned by the handler layer and are not
// duplicated here. All metrics are automatically registered with the
// Prometheus default registry and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "scrapeengine/internal/observability/metrics"
//
//	func finishJob(status string, start time.Time) {
//	    metrics.RecordJobCompleted(status, time.Since(start))
//	}
package metrics
