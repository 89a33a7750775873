package job

import (
	"encoding/json"
	"net/http"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/handler/http/respond"
	jobUC "scrapeengine/internal/usecase/job"
)

// TriggerHandler implements trigger_job.
type TriggerHandler struct{ Mgr *jobUC.Manager }

// ServeHTTP starts a new scraping job and returns its job_id immediately;
// the run itself continues in the background.
// @Summary      ジョブ起動
// @Description  指定したソース群に対するスクレイピングジョブを起動します
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        request body TriggerRequest true "起動パラメータ"
// @Success      202 {object} TriggerResponse
// @Failure      400 {string} string "Invalid request"
// @Router       /jobs [post]
func (h TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, &entity.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	j, err := h.Mgr.Trigger(r.Context(), req.Sources, req.MaxArticles, req.EnableTracking)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	respond.JSON(w, http.StatusAccepted, TriggerResponse{
		JobID:   j.ID.String(),
		Status:  "started",
		Message: "scraping job started",
	})
}
