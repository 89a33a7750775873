package job

import (
	"net/http"
	"strings"

	"scrapeengine/internal/common/pagination"
	"scrapeengine/internal/handler/http/pathutil"
	"scrapeengine/internal/handler/http/respond"
	"scrapeengine/internal/repository"
)

// LogsHandler implements get_job_logs.
type LogsHandler struct {
	Logs          repository.LogRepository
	PaginationCfg pagination.Config
}

// ServeHTTP returns a page of structured log events for one job, the sole
// queryable record of what the job claims to have done.
// @Summary      ジョブログ取得
// @Tags         jobs
// @Produce      json
// @Param        id    path  string true "ジョブID (UUID)"
// @Param        page  query int    false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit query int    false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[LogDTO]
// @Failure      400 {string} string "Bad request - invalid ID"
// @Router       /jobs/{id}/logs [get]
func (h LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/logs")
	id, err := pathutil.ExtractUUID(path, "/jobs/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	events, total, err := h.Logs.ListByJob(r.Context(), id, params.Page, params.Limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]LogDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toLogDTO(e))
	}

	metadata := pagination.Metadata{
		Total:      int64(total),
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.CalculateTotalPages(int64(total), params.Limit),
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(out, metadata))
}
