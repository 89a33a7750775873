package source

import (
	"errors"
	"net/http"

	"scrapeengine/internal/domain/entity"
	"scrapeengine/internal/handler/http/pathutil"
	"scrapeengine/internal/handler/http/respond"
	srcUC "scrapeengine/internal/usecase/source"
)

type GetHandler struct{ Svc *srcUC.Service }

// ServeHTTP returns a single configured source.
// @Summary      ソース詳細取得
// @Tags         sources
// @Produce      json
// @Param        id path string true "ソースID (UUID)"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - invalid ID"
// @Failure      404 {string} string "Not found"
// @Router       /sources/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractUUID(r.URL.Path, "/sources/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	src, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(*src))
}
