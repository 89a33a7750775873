package source

import (
	"net/http"

	"scrapeengine/internal/common/pagination"
	"scrapeengine/internal/handler/http/respond"
	srcUC "scrapeengine/internal/usecase/source"
)

type ListHandler struct {
	Svc           *srcUC.Service
	PaginationCfg pagination.Config
}

// ServeHTTP implements list_sources.
// @Summary      ソース一覧取得
// @Description  登録されているすべてのソースを取得します
// @Tags         sources
// @Produce      json
// @Param        page  query int false "ページ番号 (1-based)" default(1) minimum(1)
// @Param        limit query int false "1ページあたりの件数" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "Invalid query parameters"
// @Failure      500 {string} string "Server error"
// @Router       /sources [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	sources, total, err := h.Svc.List(r.Context(), params.Page, params.Limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(sources))
	for _, s := range sources {
		out = append(out, toDTO(s))
	}

	metadata := pagination.Metadata{
		Total:      int64(total),
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.CalculateTotalPages(int64(total), params.Limit),
	}
	respond.JSON(w, http.StatusOK, pagination.NewResponse(out, metadata))
}
