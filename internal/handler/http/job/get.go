package job

import (
	"errors"
	"net/http"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/handler/http/pathutil"
	"scrapeengine/internal/handler/http/respond"
	"scrapeengine/internal/repository"
)

// GetHandler implements get_job.
type GetHandler struct{ Jobs repository.JobRepository }

// ServeHTTP returns a single job's current state.
// @Summary      ジョブ詳細取得
// @Tags         jobs
// @Produce      json
// @Param        id path string true "ジョブID (UUID)"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - invalid ID"
// @Failure      404 {string} string "Not found"
// @Router       /jobs/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractUUID(r.URL.Path, "/jobs/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	j, err := h.Jobs.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(*j))
}
