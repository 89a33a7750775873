package source

import (
	"encoding/json"
	"net/http"

	"scrapeengine/internal/handler/http/respond"
	srcUC "scrapeengine/internal/usecase/source"
)

type TestHandler struct{ Svc *srcUC.Service }

// TestResultDTO is the JSON response of test_source.
type TestResultDTO struct {
	Reachable   bool   `json:"reachable"`
	StatusCheck string `json:"status_check"`
}

// ServeHTTP implements test_source: fetches rss_url and reports whether the
// body looks like a real RSS/Atom feed, without requiring the source to be
// saved first.
// @Summary      ソースのフィード到達性テスト
// @Description  rss_urlを取得し、RSS/Atomフィードらしい内容かを確認します
// @Tags         sources
// @Accept       json
// @Produce      json
// @Param        body body object true "rss_url"
// @Success      200 {object} TestResultDTO
// @Failure      400 {string} string "Bad request - invalid rss_url"
// @Router       /sources/test [post]
func (h TestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RSSURL string `json:"rss_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.TestSource(r.Context(), req.RSSURL)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	respond.JSON(w, http.StatusOK, TestResultDTO{
		Reachable:   result.Reachable,
		StatusCheck: result.StatusCheck,
	})
}
