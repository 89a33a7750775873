// Package dashboard provides the dashboard_metrics HTTP surface: a single
// read-only rollup endpoint over internal/usecase/dashboard. Like the other
// handler packages it contains no business logic of its own.
package dashboard

import (
	"net/http"
	"time"

	"scrapeengine/internal/handler/http/respond"
	dashUC "scrapeengine/internal/usecase/dashboard"
)

// MetricsDTO is the JSON representation of the dashboard rollup.
type MetricsDTO struct {
	JobsTriggered      int              `json:"jobsTriggered"`
	SuccessRate        float64          `json:"successRate"`
	ArticlesScraped    int              `json:"articlesScraped"`
	AverageJobDuration float64          `json:"averageJobDuration"`
	ActiveJobs         int              `json:"activeJobs"`
	RecentErrors       []RecentErrorDTO `json:"recentErrors"`
}

// RecentErrorDTO is one recent error-level log event.
type RecentErrorDTO struct {
	JobID     string    `json:"job_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	EventName string    `json:"event_name,omitempty"`
}

// MetricsHandler implements dashboard_metrics.
type MetricsHandler struct{ Svc *dashUC.Service }

// ServeHTTP returns the cached 7-day dashboard rollup.
// @Summary      ダッシュボードメトリクス取得
// @Description  直近7日間のジョブ/記事の集計値を返します（60秒キャッシュ）
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} MetricsDTO
// @Failure      500 {string} string "Server error"
// @Router       /dashboard/metrics [get]
func (h MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m, err := h.Svc.Metrics(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(m))
}

// Register registers the dashboard_metrics route.
func Register(mux *http.ServeMux, svc *dashUC.Service) {
	mux.Handle("GET /dashboard/metrics", MetricsHandler{Svc: svc})
}

func toDTO(m dashUC.Metrics) MetricsDTO {
	recent := make([]RecentErrorDTO, 0, len(m.RecentErrors))
	for _, e := range m.RecentErrors {
		recent = append(recent, RecentErrorDTO{
			JobID:     e.JobID,
			Timestamp: e.Timestamp,
			Message:   e.Message,
			EventName: e.EventName,
		})
	}
	return MetricsDTO{
		JobsTriggered:      m.JobsTriggered,
		SuccessRate:        m.SuccessRate,
		ArticlesScraped:    m.ArticlesScraped,
		AverageJobDuration: m.AverageJobDurationMs,
		ActiveJobs:         m.ActiveJobs,
		RecentErrors:       recent,
	}
}
