package fixtures

import (
	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
)

// LogEventOption is a functional option for customizing a test LogEvent.
type LogEventOption func(*entity.LogEvent)

// NewTestLogEvent creates a valid LogEvent with sensible defaults for the
// job_started/lifecycle event, ready to exercise the append-only log
// repository in isolation from the real eventlog emitters.
//
// Example:
//
//	ev := NewTestLogEvent(jobID)
//	ev := NewTestLogEvent(jobID, WithLevel(entity.LogLevelWarning), WithMessage("retrying rss fetch"))
func NewTestLogEvent(jobID uuid.UUID, opts ...LogEventOption) entity.LogEvent {
	ev := entity.NewLogEvent(jobID, entity.LogLevelInfo, entity.EventTypeLifecycle,
		entity.EventJobStarted, "scraping job started", nil)

	for _, opt := range opts {
		opt(&ev)
	}

	return ev
}

// WithLevel sets the LogEvent's Level.
func WithLevel(level entity.LogLevel) LogEventOption {
	return func(e *entity.LogEvent) { e.Level = level }
}

// WithSourceIDField sets the LogEvent's SourceID.
func WithSourceIDField(id uuid.UUID) LogEventOption {
	return func(e *entity.LogEvent) { e.SourceID = &id }
}

// WithCorrelationID sets the LogEvent's CorrelationID.
func WithCorrelationID(id string) LogEventOption {
	return func(e *entity.LogEvent) { e.CorrelationID = id }
}

// WithMessage overrides the LogEvent's Message.
func WithMessage(msg string) LogEventOption {
	return func(e *entity.LogEvent) { e.Message = msg }
}

// WithAdditionalField merges one key/value pair into AdditionalData,
// preserving the event_type/event_name envelope NewLogEvent already set.
func WithAdditionalField(key string, value any) LogEventOption {
	return func(e *entity.LogEvent) {
		if e.AdditionalData == nil {
			e.AdditionalData = make(map[string]any)
		}
		e.AdditionalData[key] = value
	}
}
