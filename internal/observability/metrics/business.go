package metrics

import (
	"time"
)

// RecordJobTriggered records one scraping job accepted by trigger_job.
func RecordJobTriggered() {
	JobsTriggeredTotal.Inc()
}

// RecordJobCompleted records a job reaching a terminal status, with its
// wall-clock duration from trigger to completion.
func RecordJobCompleted(status string, duration time.Duration) {
	JobsCompletedTotal.WithLabelValues(status).Inc()
	JobDuration.Observe(duration.Seconds())
}

// RecordSourcePersisted records one source's persistence outcome: how many
// articles were committed and how many were skipped as duplicates.
func RecordSourcePersisted(sourceName string, saved, duplicates int) {
	if saved > 0 {
		ArticlesScrapedTotal.WithLabelValues(sourceName).Add(float64(saved))
	}
	if duplicates > 0 {
		ArticlesDuplicateTotal.WithLabelValues(sourceName).Add(float64(duplicates))
	}
}

// RecordExtractionFailure records one candidate page that failed the
// extraction cascade.
func RecordExtractionFailure(sourceName string) {
	ExtractionFailuresTotal.WithLabelValues(sourceName).Inc()
}

// RecordContentFetchSuccess records a successful content fetch operation,
// tracking both the duration and size of fetched content.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
// This gauge pair should be updated periodically to reflect current state.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
