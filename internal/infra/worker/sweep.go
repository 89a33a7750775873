package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"scrapeengine/internal/repository"
	"scrapeengine/internal/resilience/retry"
)

// Sweeper runs the stuck-job recovery pass on the schedule given by
// WorkerConfig.CronSchedule, in addition to the one-shot sweep cmd/server
// performs at startup. It exists so jobs abandoned by a crashed process
// are reclaimed even when the server keeps running for a long time between
// restarts.
type Sweeper struct {
	jobs    repository.JobRepository
	cfg     WorkerConfig
	metrics *WorkerMetrics
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewSweeper builds a Sweeper ready to Start. The cron schedule and sweep
// timeout come from cfg; call cfg.Validate() beforehand if the config was
// not produced by LoadConfigFromEnv (which already validates with fallback).
func NewSweeper(jobs repository.JobRepository, cfg WorkerConfig, metrics *WorkerMetrics, logger *slog.Logger) *Sweeper {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid sweep timezone, falling back to UTC",
			slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	return &Sweeper{
		jobs:    jobs,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(loc)),
	}
}

// Start registers the sweep as a cron job and begins running it in the
// background. It does not block; call Stop to end the schedule.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSchedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("register sweep cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("periodic stuck-job sweep scheduled",
		slog.String("schedule", s.cfg.CronSchedule),
		slog.String("timezone", s.cfg.Timezone))
	return nil
}

// Stop halts the schedule, waiting for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) runSweep() {
	start := time.Now()
	s.metrics.RecordJobRun("started")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SweepTimeout)
	defer cancel()

	// Transient connection errors retry with backoff; anything else fails
	// this sweep and waits for the next scheduled run.
	var recovered int
	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		var sweepErr error
		recovered, sweepErr = s.jobs.RecoverStuckJobs(ctx)
		return sweepErr
	})
	if err != nil {
		s.logger.Error("periodic stuck-job sweep failed", slog.Any("error", err))
		s.metrics.RecordJobRun("failure")
		s.metrics.RecordJobDuration(time.Since(start).Seconds())
		return
	}

	s.metrics.RecordJobRun("success")
	s.metrics.RecordJobDuration(time.Since(start).Seconds())
	s.metrics.RecordJobsRecovered(recovered)
	s.metrics.RecordLastSuccess()

	if recovered > 0 {
		s.logger.Info("periodic stuck-job sweep recovered jobs", slog.Int("recovered", recovered))
	} else {
		s.logger.Debug("periodic stuck-job sweep found nothing to recover")
	}
}
