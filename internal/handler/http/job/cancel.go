package job

import (
	"errors"
	"net/http"
	"strings"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/handler/http/pathutil"
	"scrapeengine/internal/handler/http/respond"
	jobUC "scrapeengine/internal/usecase/job"
)

// CancelHandler implements cancel_job.
type CancelHandler struct{ Mgr *jobUC.Manager }

// ServeHTTP cancels an in-progress job. It rejects jobs that are not
// currently in-progress.
// @Summary      ジョブキャンセル
// @Tags         jobs
// @Produce      json
// @Param        id path string true "ジョブID (UUID)"
// @Success      200 {object} CancelResponse
// @Failure      400 {string} string "Bad request - invalid ID or job not cancellable"
// @Failure      404 {string} string "Not found"
// @Router       /jobs/{id}/cancel [post]
func (h CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/cancel")
	id, err := pathutil.ExtractUUID(path, "/jobs/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Mgr.Cancel(r.Context(), id); err != nil {
		code := http.StatusBadRequest
		switch {
		case errors.Is(err, entity.ErrNotFound):
			code = http.StatusNotFound
		case errors.Is(err, entity.ErrJobNotCancellable):
			code = http.StatusBadRequest
		default:
			code = http.StatusInternalServerError
		}
		respond.JSON(w, code, CancelResponse{Success: false, Message: err.Error()})
		return
	}

	respond.JSON(w, http.StatusOK, CancelResponse{Success: true, Message: "job cancelled"})
}
