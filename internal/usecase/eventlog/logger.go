// Package eventlog implements the Structured Logger: the single channel by
// which the engine's job lifecycle, extraction, and persistence steps
// become queryable, append-only rows for post-hoc reconciliation. It is
// layered over, and independent from, the process-level slog logging in
// internal/observability/logging.
package eventlog

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/repository"
)

// SnapshotInterval is how often a running job's performance snapshot is
// appended to the log.
const SnapshotInterval = 30 * time.Second

// Logger appends structured events to the log repository and manages the
// per-job performance snapshot timers. A Logger is safe for concurrent use
// across jobs.
type Logger struct {
	repo repository.LogRepository

	mu        sync.Mutex
	snapshots map[uuid.UUID]*performanceTracker
}

// NewLogger constructs a Logger backed by repo.
func NewLogger(repo repository.LogRepository) *Logger {
	return &Logger{
		repo:      repo,
		snapshots: make(map[uuid.UUID]*performanceTracker),
	}
}

// Log appends one event. sourceID is optional (nil when the event is not
// scoped to a single source).
func (l *Logger) Log(ctx context.Context, jobID uuid.UUID, sourceID *uuid.UUID, level entity.LogLevel, eventType entity.EventType, eventName, message string, fields map[string]any) error {
	evt := entity.NewLogEvent(jobID, level, eventType, eventName, message, fields)
	evt.SourceID = sourceID
	return l.repo.Append(ctx, evt)
}

// NewCorrelationID returns a fresh opaque identifier for linking the events
// of one candidate article's fetch-through-extraction lifecycle.
func (l *Logger) NewCorrelationID() string {
	return entity.NewCorrelationID()
}

// StartPerformanceSnapshots begins appending a performance_snapshot event
// every SnapshotInterval for jobID. The returned stop function must be
// called exactly once, when the job terminates, to release the timer.
func (l *Logger) StartPerformanceSnapshots(ctx context.Context, jobID uuid.UUID) (stop func()) {
	tracker := newPerformanceTracker()

	l.mu.Lock()
	l.snapshots[jobID] = tracker
	l.mu.Unlock()

	done := make(chan struct{})
	ticker := time.NewTicker(SnapshotInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				l.emitSnapshot(ctx, jobID, tracker)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			l.mu.Lock()
			delete(l.snapshots, jobID)
			l.mu.Unlock()
		})
	}
}

// Tracker returns the performance tracker registered for jobID, if any, so
// callers (e.g. the Per-Source Extractor) can record request durations that
// feed into the snapshot's avg_resp_ms.
func (l *Logger) Tracker(jobID uuid.UUID) *performanceTracker {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshots[jobID]
}

func (l *Logger) emitSnapshot(ctx context.Context, jobID uuid.UUID, tracker *performanceTracker) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	avg, active := tracker.snapshot()

	_ = l.Log(ctx, jobID, nil, entity.LogLevelInfo, entity.EventTypePerformance, entity.EventPerformanceSnapshot,
		"performance snapshot", map[string]any{
			"mem_mb":      float64(mem.Alloc) / (1024 * 1024),
			"cpu_pct":     0.0,
			"active_reqs": active,
			"queue_size":  0,
			"avg_resp_ms": avg,
		})
}

// performanceTracker accumulates in-flight request counts and response
// durations for one job's performance snapshots.
type performanceTracker struct {
	mu        sync.Mutex
	active    int
	totalMs   int64
	sampleCnt int64
}

func newPerformanceTracker() *performanceTracker {
	return &performanceTracker{}
}

// BeginRequest marks one request in-flight; the returned func must be
// called when it completes.
func (t *performanceTracker) BeginRequest() func() {
	t.mu.Lock()
	t.active++
	t.mu.Unlock()

	start := time.Now()
	return func() {
		elapsed := time.Since(start).Milliseconds()
		t.mu.Lock()
		t.active--
		t.totalMs += elapsed
		t.sampleCnt++
		t.mu.Unlock()
	}
}

func (t *performanceTracker) snapshot() (avgMs float64, active int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sampleCnt == 0 {
		return 0, t.active
	}
	return float64(t.totalMs) / float64(t.sampleCnt), t.active
}
