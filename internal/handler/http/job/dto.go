// Package job provides the thin trigger_job/list_jobs/get_job/get_job_logs/
// cancel_job HTTP surface over the Job Manager. It is deliberately shallow:
// every real decision (status machine, fan-out, persistence, verification)
// lives in internal/usecase/job and its collaborators. This package only
// translates HTTP requests into Manager calls and Manager results into JSON.
package job

import (
	"time"

	"scrapeengine/internal/domain/entity"
)

// DTO is the JSON representation of a ScrapingJob.
type DTO struct {
	ID                   string     `json:"id" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	Status               string     `json:"status" example:"in-progress"`
	SourcesRequested     []string   `json:"sources_requested"`
	ArticlesPerSource    int        `json:"articles_per_source" example:"5"`
	TotalArticlesScraped int        `json:"total_articles_scraped"`
	TotalErrors          int        `json:"total_errors"`
	TriggeredAt          time.Time  `json:"triggered_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

func toDTO(j entity.ScrapingJob) DTO {
	return DTO{
		ID:                   j.ID.String(),
		Status:               string(j.Status),
		SourcesRequested:     j.SourcesRequested,
		ArticlesPerSource:    j.ArticlesPerSource,
		TotalArticlesScraped: j.TotalArticlesScraped,
		TotalErrors:          j.TotalErrors,
		TriggeredAt:          j.TriggeredAt,
		CompletedAt:          j.CompletedAt,
	}
}

// LogDTO is the JSON representation of one structured log event.
type LogDTO struct {
	ID             int64          `json:"id"`
	JobID          string         `json:"job_id"`
	SourceID       *string        `json:"source_id,omitempty"`
	CorrelationID  string         `json:"correlation_id,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Level          string         `json:"log_level"`
	Message        string         `json:"message"`
	AdditionalData map[string]any `json:"additional_data"`
}

func toLogDTO(e entity.LogEvent) LogDTO {
	var sourceID *string
	if e.SourceID != nil {
		s := e.SourceID.String()
		sourceID = &s
	}
	return LogDTO{
		ID:             e.ID,
		JobID:          e.JobID.String(),
		SourceID:       sourceID,
		CorrelationID:  e.CorrelationID,
		Timestamp:      e.Timestamp,
		Level:          string(e.Level),
		Message:        e.Message,
		AdditionalData: e.AdditionalData,
	}
}

// TriggerRequest is the request body for trigger_job.
type TriggerRequest struct {
	Sources         []string `json:"sources"`
	MaxArticles     int      `json:"maxArticles"`
	EnableTracking  bool     `json:"enableTracking,omitempty"`
}

// TriggerResponse is the response body for trigger_job.
type TriggerResponse struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status" example:"started"`
	Message string `json:"message"`
}

// CancelResponse is the response body for cancel_job.
type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
