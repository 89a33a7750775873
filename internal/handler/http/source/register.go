package source

import (
	"net/http"

	"scrapeengine/internal/common/pagination"
	"scrapeengine/internal/handler/http/middleware"
	srcUC "scrapeengine/internal/usecase/source"
)

// Register registers the source management routes: create_source,
// update_source, delete_source, list_sources, get_source, test_source.
// test_source is rate limited since each call performs an outbound HTTP
// fetch against the candidate rss_url.
func Register(mux *http.ServeMux, svc *srcUC.Service, paginationCfg pagination.Config, testRateLimiter *middleware.RateLimiter) {
	mux.Handle("GET /sources", ListHandler{Svc: svc, PaginationCfg: paginationCfg})
	mux.Handle("GET /sources/", GetHandler{svc})

	mux.Handle("POST /sources", CreateHandler{svc})
	mux.Handle("PUT /sources/", UpdateHandler{svc})
	mux.Handle("DELETE /sources/", DeleteHandler{svc})

	mux.Handle("POST /sources/test", testRateLimiter.Middleware(TestHandler{svc}))
}
