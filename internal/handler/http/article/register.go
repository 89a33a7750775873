package article

import (
	"log/slog"
	"net/http"

	"scrapeengine/internal/common/pagination"
	artUC "scrapeengine/internal/usecase/article"
)

// Register registers the read-only list_articles/get_article routes. The
// engine never writes articles through HTTP — the Transactional Persister
// is the only writer, inside a job's own transaction.
func Register(mux *http.ServeMux, svc *artUC.Service, paginationCfg pagination.Config, logger *slog.Logger) {
	mux.Handle("GET /articles", ListHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
	})
	mux.Handle("GET /articles/", GetHandler{svc})
}
