package source

import (
	"net/http"

	"scrapeengine/internal/handler/http/pathutil"
	"scrapeengine/internal/handler/http/respond"
	srcUC "scrapeengine/internal/usecase/source"
)

type DeleteHandler struct{ Svc *srcUC.Service }

// ServeHTTP implements delete_source.
// @Summary      ソース削除
// @Description  ソースを削除します
// @Tags         sources
// @Param        id path string true "ソースID (UUID)"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid ID"
// @Failure      500 {string} string "Server error"
// @Router       /sources/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractUUID(r.URL.Path, "/sources/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
