package eventlog

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// The helpers below wrap Log with the fixed (event_type, event_name, level)
// triples the job lifecycle emits at each step. Each accepts the
// AdditionalData fields §4.2's required-event table marks as mandatory for
// that event.

func (l *Logger) JobStarted(ctx context.Context, jobID uuid.UUID, sources []string, articlesPerSource int) error {
	return l.Log(ctx, jobID, nil, entity.LogLevelInfo, entity.EventTypeLifecycle, entity.EventJobStarted,
		"scraping job started", map[string]any{
			"sources":             sources,
			"articles_per_source": articlesPerSource,
			"total_expected":      articlesPerSource * len(sources),
			"trigger_method":      "http_api",
		})
}

// ExtractionPhaseCompleted marks the boundary between the extraction phase
// and the persistence phase. extractionFailures maps the name of every
// source that failed extraction entirely (as opposed to one that simply
// extracted fewer than its target) to the error that ended it.
func (l *Logger) ExtractionPhaseCompleted(ctx context.Context, jobID uuid.UUID, successfulSources, failedSources, totalExtracted int, extractionFailures map[string]string) error {
	return l.Log(ctx, jobID, nil, entity.LogLevelInfo, entity.EventTypeLifecycle, entity.EventExtractionPhaseCompleted,
		"extraction phase completed", map[string]any{
			"successful_sources":  successfulSources,
			"failed_sources":      failedSources,
			"total_extracted":     totalExtracted,
			"extraction_failures": extractionFailures,
		})
}

// JobCompletedEnhanced emits the full EnhancedJobMetrics (§4.5 step 8):
// sources carries each source's {extracted, saved, duplicates, failures,
// success}; totals carries the job-wide rollup.
func (l *Logger) JobCompletedEnhanced(ctx context.Context, jobID uuid.UUID, status entity.JobStatus, totalScraped, totalErrors int, sources map[string]any, totals map[string]any) error {
	return l.Log(ctx, jobID, nil, entity.LogLevelInfo, entity.EventTypeLifecycle, entity.EventJobCompletedEnhanced,
		"scraping job completed", map[string]any{
			"status":                 string(status),
			"total_articles_scraped": totalScraped,
			"total_errors":           totalErrors,
			"sources":                sources,
			"totals":                 totals,
		})
}

func (l *Logger) JobCancelled(ctx context.Context, jobID uuid.UUID) error {
	return l.Log(ctx, jobID, nil, entity.LogLevelInfo, entity.EventTypeLifecycle, entity.EventJobCancelled,
		"Job cancelled by user", nil)
}

func (l *Logger) SourceStarted(ctx context.Context, jobID, sourceID uuid.UUID, sourceName, rssURL string, targetArticles int) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelInfo, entity.EventTypeSource, entity.EventSourceStarted,
		"source scrape started", map[string]any{
			"source_name":     sourceName,
			"rss_url":         rssURL,
			"target_articles": targetArticles,
		})
}

func (l *Logger) RSSFetchRetry(ctx context.Context, jobID, sourceID uuid.UUID, attempt, maxAttempts int, retryDelayMs int64, cause string) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelWarning, entity.EventTypeSource, entity.EventRSSFetchRetry,
		"retrying rss fetch", map[string]any{
			"attempt":        attempt,
			"max_attempts":   maxAttempts,
			"retry_delay_ms": retryDelayMs,
			"error":          cause,
		})
}

func (l *Logger) RSSParsed(ctx context.Context, jobID, sourceID uuid.UUID, feedTitle string, totalItems, itemsToProcess int) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelInfo, entity.EventTypeSource, entity.EventRSSParsed,
		"rss feed parsed", map[string]any{
			"feed_title":       feedTitle,
			"total_items":      totalItems,
			"items_to_process": itemsToProcess,
		})
}

func (l *Logger) SourceExtractionCompleted(ctx context.Context, jobID, sourceID uuid.UUID, extracted, target int, durationMs int64) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelInfo, entity.EventTypeSource, entity.EventSourceExtractionCompleted,
		"source extraction completed", map[string]any{
			"articles_extracted": extracted,
			"target_articles":    target,
			"duration_ms":        durationMs,
		})
}

func (l *Logger) SourceExtractionFailed(ctx context.Context, jobID, sourceID uuid.UUID, cause string) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelError, entity.EventTypeSource, entity.EventSourceExtractionFailed,
		"source extraction failed", map[string]any{
			"error": map[string]any{"message": cause},
		})
}

// ExtractionCompleted records one candidate's successful extraction. traces
// is non-nil only when the job was triggered with tracking enabled; it
// carries the cascade's per-field probe records for diagnostic surfacing.
func (l *Logger) ExtractionCompleted(ctx context.Context, jobID, sourceID uuid.UUID, correlationID, method, url string, qualityScore float64, contentLength int, extractionMs int64, traces []map[string]any) error {
	fields := map[string]any{
		"correlation_id": correlationID,
		"url":            url,
		"method":         method,
		"quality_score":  qualityScore,
		"content_length": contentLength,
		"extraction_ms":  extractionMs,
	}
	if len(traces) > 0 {
		fields["traces"] = traces
	}
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelInfo, entity.EventTypeExtraction, entity.EventExtractionCompleted,
		"article extracted", fields)
}

func (l *Logger) ExtractionFailed(ctx context.Context, jobID, sourceID uuid.UUID, correlationID, url, method, errorMessage string) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelWarning, entity.EventTypeExtraction, entity.EventExtractionFailed,
		"article extraction failed", map[string]any{
			"correlation_id": correlationID,
			"url":            url,
			"method":         method,
			"error_message":  errorMessage,
		})
}

func (l *Logger) ArticleInsertSuccess(ctx context.Context, jobID, sourceID uuid.UUID, trackingID, sourceName, sourceURL string, articleID uuid.UUID) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelInfo, entity.EventTypePersistence, entity.EventArticleInsertSuccess,
		"article persisted", map[string]any{
			"article_tracking_id": trackingID,
			"source_attribution":  sourceAttribution(sourceName, sourceID, sourceURL),
			"database_article_id": articleID.String(),
		})
}

func (l *Logger) ArticleInsertFailure(ctx context.Context, jobID, sourceID uuid.UUID, trackingID, sourceName, sourceURL, cause string) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelError, entity.EventTypePersistence, entity.EventArticleInsertFailure,
		"article persistence failed", map[string]any{
			"article_tracking_id": trackingID,
			"source_attribution":  sourceAttribution(sourceName, sourceID, sourceURL),
			"error":               cause,
		})
}

// sourceAttribution builds the {source_name, source_id, source_url,
// source_url_domain} object §4.4's per-article procedure attaches to every
// article_insert_success/failure event.
func sourceAttribution(sourceName string, sourceID uuid.UUID, sourceURL string) map[string]any {
	return map[string]any{
		"source_name":       sourceName,
		"source_id":         sourceID.String(),
		"source_url":        sourceURL,
		"source_url_domain": urlDomain(sourceURL),
	}
}

// urlDomain extracts the host from a URL for the source_url_domain field;
// an unparseable URL degrades to the raw string rather than failing the
// whole log call.
func urlDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

func (l *Logger) SourcePersistenceCompleted(ctx context.Context, jobID, sourceID uuid.UUID, saved, duplicates, failures int) error {
	return l.Log(ctx, jobID, &sourceID, entity.LogLevelInfo, entity.EventTypePersistence, entity.EventSourcePersistenceCompleted,
		"source persistence completed", map[string]any{
			"saved":      saved,
			"duplicates": duplicates,
			"failures":   failures,
			"success":    failures == 0,
		})
}

func (l *Logger) PersistenceFailure(ctx context.Context, jobID uuid.UUID, cause string) error {
	return l.Log(ctx, jobID, nil, entity.LogLevelError, entity.EventTypePersistence, entity.EventPersistenceFailure,
		"persistence transaction failed", map[string]any{"cause": cause})
}

// DatabaseVerificationCompleted emits the Verifier's single summary event.
// results is keyed by source name and carries each source's claimed,
// actual, and sample_ids; totalClaimed/totalActual are the job-wide sums.
func (l *Logger) DatabaseVerificationCompleted(ctx context.Context, jobID uuid.UUID, hasDiscrepancies bool, totalClaimed, totalActual int, results map[string]any) error {
	level := entity.LogLevelInfo
	if hasDiscrepancies {
		level = entity.LogLevelWarning
	}
	return l.Log(ctx, jobID, nil, level, entity.EventTypeVerification, entity.EventDatabaseVerificationCompleted,
		"database verification completed", map[string]any{
			"verification_results": results,
			"total_claimed":        totalClaimed,
			"total_actual":         totalActual,
			"has_discrepancies":    hasDiscrepancies,
		})
}

func (l *Logger) TeardownFailure(ctx context.Context, jobID uuid.UUID, sourceID *uuid.UUID, cause string) error {
	return l.Log(ctx, jobID, sourceID, entity.LogLevelWarning, entity.EventTypeError, entity.EventTeardownFailure,
		"teardown failed", map[string]any{"cause": cause})
}

func (l *Logger) HTTPError(ctx context.Context, jobID uuid.UUID, sourceID *uuid.UUID, url string, statusCode int, cause string) error {
	return l.Log(ctx, jobID, sourceID, entity.LogLevelError, entity.EventTypeHTTP, entity.EventHTTPError,
		"http request failed", map[string]any{
			"url":         url,
			"status_code": statusCode,
			"cause":       cause,
		})
}
