package entity

import (
	"time"

	"github.com/google/uuid"
)

// LogLevel is the severity of a LogEvent.
type LogLevel string

// Log levels recognized by the structured logger.
const (
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// EventType groups LogEvents by subsystem. Every LogEvent's AdditionalData
// carries one of these under the "event_type" key.
type EventType string

// Event types from the structured log taxonomy.
const (
	EventTypeLifecycle       EventType = "lifecycle"
	EventTypeSource          EventType = "source"
	EventTypeHTTP            EventType = "http"
	EventTypeExtraction      EventType = "extraction"
	EventTypePersistence     EventType = "persistence"
	EventTypePerformance     EventType = "performance"
	EventTypeVerification    EventType = "verification"
	EventTypeArticleLifecycle EventType = "article_lifecycle"
	EventTypeError           EventType = "error"
)

// Event names emitted at fixed points in the job lifecycle. These are the
// stable, queryable tokens post-hoc tooling matches against.
const (
	EventJobStarted                     = "job_started"
	EventExtractionPhaseCompleted       = "extraction_phase_completed"
	EventJobCompletedEnhanced           = "job_completed_enhanced"
	EventJobCancelled                   = "job_cancelled"
	EventSourceStarted                  = "source_started"
	EventRSSFetchRetry                  = "rss_fetch_retry"
	EventRSSParsed                      = "rss_parsed"
	EventSourceExtractionCompleted      = "source_extraction_completed"
	EventSourceExtractionFailed         = "source_extraction_failed"
	EventExtractionCompleted            = "extraction_completed"
	EventExtractionFailed               = "extraction_failed"
	EventArticleInsertSuccess           = "article_insert_success"
	EventArticleInsertFailure           = "article_insert_failure"
	EventSourcePersistenceCompleted     = "source_persistence_completed"
	EventPersistenceFailure             = "persistence_failure"
	EventDatabaseVerificationCompleted  = "database_verification_completed"
	EventPerformanceSnapshot            = "performance_snapshot"
	EventTeardownFailure                = "teardown_failure"
	EventHTTPError                      = "http_error"
)

// LogEvent is one append-only row in the scraping_logs table. It is never
// mutated or deleted by the engine.
type LogEvent struct {
	ID             int64
	JobID          uuid.UUID
	SourceID       *uuid.UUID
	CorrelationID  string
	Timestamp      time.Time
	Level          LogLevel
	Message        string
	AdditionalData map[string]any
}

// NewLogEvent constructs a LogEvent with EventType and EventName already
// populated in AdditionalData, merging in any extra fields. Callers should
// prefer the typed helpers in the eventlog package over calling this
// directly, but it is the single place the {event_type, event_name}
// envelope is assembled so every event carries both keys.
func NewLogEvent(jobID uuid.UUID, level LogLevel, eventType EventType, eventName, message string, fields map[string]any) LogEvent {
	data := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		data[k] = v
	}
	data["event_type"] = string(eventType)
	data["event_name"] = eventName

	return LogEvent{
		JobID:          jobID,
		Timestamp:      time.Now().UTC(),
		Level:          level,
		Message:        message,
		AdditionalData: data,
	}
}

// NewCorrelationID returns a fresh opaque identifier for linking the HTTP
// and extraction events of a single candidate article.
func NewCorrelationID() string {
	return uuid.NewString()
}
