package source

import (
	"encoding/json"
	"errors"
	"net/http"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/handler/http/pathutil"
	"scrapeengine/internal/handler/http/respond"
	srcUC "scrapeengine/internal/usecase/source"
)

type UpdateHandler struct{ Svc *srcUC.Service }

// ServeHTTP implements update_source. Zero-value string/int fields in the
// request body leave the corresponding column unchanged.
// @Summary      ソース更新
// @Description  既存のソースを更新します
// @Tags         sources
// @Accept       json
// @Produce      json
// @Param        id path string true "ソースID (UUID)"
// @Param        source body object true "更新するソース情報"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      404 {string} string "Not found - source not found"
// @Router       /sources/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractUUID(r.URL.Path, "/sources/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name                   string `json:"name"`
		Domain                 string `json:"domain"`
		RSSURL                 string `json:"rss_url"`
		IconURL                string `json:"icon_url"`
		UserAgent              string `json:"user_agent"`
		DelayBetweenRequestsMs int    `json:"delay_between_requests_ms"`
		TimeoutMs              int    `json:"timeout_ms"`
		RespectRobotsTxt       bool   `json:"respect_robots_txt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	src, err := h.Svc.Update(r.Context(), srcUC.UpdateInput{
		ID:                     id,
		Name:                   req.Name,
		Domain:                 req.Domain,
		RSSURL:                 req.RSSURL,
		IconURL:                req.IconURL,
		UserAgent:              req.UserAgent,
		DelayBetweenRequestsMs: req.DelayBetweenRequestsMs,
		TimeoutMs:              req.TimeoutMs,
		RespectRobotsTxt:       req.RespectRobotsTxt,
	})
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(*src))
}
