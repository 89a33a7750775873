package job

import (
	"net/http"

	"scrapeengine/internal/common/pagination"
	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/handler/http/respond"
	"scrapeengine/internal/repository"
)

// ListHandler implements list_jobs.
type ListHandler struct {
	Jobs          repository.JobRepository
	PaginationCfg pagination.Config
}

// ServeHTTP returns a page of jobs, optionally filtered by status.
// @Summary      ジョブ一覧取得
// @Tags         jobs
// @Produce      json
// @Param        page   query int    false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit  query int    false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Param        status query string false "ジョブステータスで絞り込み"
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "Invalid query parameters"
// @Router       /jobs [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var status *entity.JobStatus
	if s := r.URL.Query().Get("status"); s != "" {
		js := entity.JobStatus(s)
		status = &js
	}

	jobs, total, err := h.Jobs.List(r.Context(), params.Page, params.Limit, status)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toDTO(j))
	}

	metadata := pagination.Metadata{
		Total:      int64(total),
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.CalculateTotalPages(int64(total), params.Limit),
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(out, metadata))
}
