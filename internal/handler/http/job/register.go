package job

import (
	"net/http"

	"scrapeengine/internal/common/pagination"
	"scrapeengine/internal/repository"
	jobUC "scrapeengine/internal/usecase/job"
)

// Register registers the trigger_job/list_jobs/get_job/get_job_logs/
// cancel_job routes. This layer is a thin collaborator of the Job Manager;
// it contains no business logic of its own.
func Register(mux *http.ServeMux, mgr *jobUC.Manager, jobs repository.JobRepository, logs repository.LogRepository, paginationCfg pagination.Config) {
	mux.Handle("POST /jobs", TriggerHandler{Mgr: mgr})
	mux.Handle("GET /jobs", ListHandler{Jobs: jobs, PaginationCfg: paginationCfg})
	mux.Handle("GET /jobs/", GetHandler{Jobs: jobs})
	mux.Handle("GET /jobs/{id}/logs", LogsHandler{Logs: logs, PaginationCfg: paginationCfg})
	mux.Handle("POST /jobs/{id}/cancel", CancelHandler{Mgr: mgr})
}
