package source

import (
	"encoding/json"
	"net/http"

	"scrapeengine/internal/handler/http/respond"
	srcUC "scrapeengine/internal/usecase/source"
)

type CreateHandler struct{ Svc *srcUC.Service }

// ServeHTTP implements create_source.
// @Summary      ソース作成
// @Description  新しいソースを作成します。rss_urlの到達性はtest_sourceで別途検証してください。
// @Tags         sources
// @Accept       json
// @Produce      json
// @Param        source body object true "ソース情報"
// @Success      201 {object} DTO
// @Failure      400 {string} string "Bad request - invalid input"
// @Router       /sources [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	src, err := h.Svc.Create(r.Context(), srcUC.CreateInput{
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
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toDTO(*src))
}
