// Command server is the scraping engine's single long-running process. It
// owns the HTTP trigger API (trigger_job/list_jobs/get_job/get_job_logs/
// cancel_job, plus the read-only article and source surfaces) and the
// in-process Job Manager that runs the two-phase scrape pipeline in the
// background — there is no separate worker binary. On startup it opens the
// database, applies migrations, sweeps any jobs left stuck by a previous
// crash, then starts serving. A second, periodic sweep keeps running on a
// cron schedule for the lifetime of the process, in case a job gets stuck
// while the server itself stays up.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"scrapeengine/internal/common/pagination"
	pgRepo "scrapeengine/internal/infra/adapter/persistence/postgres"
	"scrapeengine/internal/infra/db"
	"scrapeengine/internal/infra/fetcher"
	"scrapeengine/internal/infra/scraper"
	"scrapeengine/internal/infra/worker"
	"scrapeengine/internal/observability/metrics"
	"scrapeengine/internal/observability/tracing"
	"scrapeengine/internal/resilience/retry"
	"scrapeengine/pkg/config"
	"scrapeengine/pkg/ratelimit"
	"scrapeengine/pkg/security/csp"

	artUC "scrapeengine/internal/usecase/article"
	dashUC "scrapeengine/internal/usecase/dashboard"
	"scrapeengine/internal/usecase/eventlog"
	jobUC "scrapeengine/internal/usecase/job"
	"scrapeengine/internal/usecase/persist"
	"scrapeengine/internal/usecase/scrape"
	srcUC "scrapeengine/internal/usecase/source"
	"scrapeengine/internal/usecase/verify"

	hhttp "scrapeengine/internal/handler/http"
	harticle "scrapeengine/internal/handler/http/article"
	hdash "scrapeengine/internal/handler/http/dashboard"
	hjob "scrapeengine/internal/handler/http/job"
	"scrapeengine/internal/handler/http/middleware"
	"scrapeengine/internal/handler/http/requestid"
	hsrc "scrapeengine/internal/handler/http/source"

	_ "scrapeengine/docs" // swagger docs
)

// @title           Scrape Engine API
// @version         1.0
// @description     News-aggregation scraping engine: job lifecycle, source
// @description     management, and read access to scraped articles.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	logger := initLogger()

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	recoverStuckJobs(context.Background(), logger, database)

	version := getVersion()
	components := setupServer(logger, database, version)
	runServer(logger, components, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations. It exits
// the process on any startup DB failure.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// recoverStuckJobs runs the Startup Recoverer once at boot, transitioning
// any job left in new/in-progress by a crashed previous process to failed.
func recoverStuckJobs(ctx context.Context, logger *slog.Logger, database *sql.DB) {
	jobs := pgRepo.NewJobRepo(database)
	var n int
	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
		var sweepErr error
		n, sweepErr = jobs.RecoverStuckJobs(ctx)
		return sweepErr
	})
	if err != nil {
		logger.Error("startup job recovery failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		logger.Warn("recovered stuck jobs from previous run", slog.Int("count", n))
	}
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds the built HTTP handler plus anything that needs
// cleanup or a background goroutine once the server is running.
type ServerComponents struct {
	Handler      http.Handler
	DB           *sql.DB
	IPStore      *ratelimit.InMemoryRateLimitStore
	IPWindow     time.Duration
	CleanupCfg   hhttp.CleanupConfig
	Sweeper      *worker.Sweeper
	WorkerHealth *worker.HealthServer
	HealthAddr   string
}

// setupServer wires the repositories, use cases, and HTTP handlers into a
// single mux, then wraps it in the middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	sourceRepo := pgRepo.NewSourceRepo(database)
	articleRepo := pgRepo.NewArticleRepo(database)
	jobRepo := pgRepo.NewJobRepo(database)
	logRepo := pgRepo.NewLogRepo(database)

	srcSvc := srcUC.New(sourceRepo, newPageFetcher())
	artSvc := artUC.New(articleRepo)
	dashSvc := dashUC.New(pgRepo.NewMetricsRepo(database))

	evLogger := eventlog.NewLogger(logRepo)
	feedFetcher := scraper.NewRSSFetcher(&http.Client{Timeout: 30 * time.Second})
	pageFetcher := newPageFetcher()
	extractor := scrape.New(articleRepo, feedFetcher, pageFetcher, evLogger)
	persister := persist.New(database, evLogger)
	verifier := verify.New(logRepo, articleRepo, evLogger)
	jobMgr := jobUC.New(jobRepo, sourceRepo, extractor, persister, verifier, evLogger)

	rateLimitConfig, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("failed to load rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ipExtractor := &middleware.RemoteAddrExtractor{}

	var ipRateLimiter *middleware.IPRateLimiter
	var ipStore *ratelimit.InMemoryRateLimitStore
	if rateLimitConfig.Enabled {
		ipStore = ratelimit.NewInMemoryRateLimitStore(ratelimit.InMemoryStoreConfig{
			MaxKeys: rateLimitConfig.MaxActiveKeys,
		})
		algorithm := ratelimit.NewSlidingWindowAlgorithm(&ratelimit.SystemClock{})
		metrics := ratelimit.NewPrometheusMetrics()
		ipCircuitBreaker := ratelimit.NewCircuitBreaker(ratelimit.CircuitBreakerConfig{
			FailureThreshold: rateLimitConfig.CircuitBreakerFailureThreshold,
			RecoveryTimeout:  rateLimitConfig.CircuitBreakerResetTimeout,
		})
		ipRateLimiter = middleware.NewIPRateLimiter(
			middleware.IPRateLimiterConfig{
				Limit:   rateLimitConfig.DefaultIPLimit,
				Window:  rateLimitConfig.DefaultIPWindow,
				Enabled: true,
			},
			ipExtractor,
			ipStore,
			algorithm,
			metrics,
			ipCircuitBreaker,
		)
		logger.Info("rate limiting initialized",
			slog.Int("ip_limit", rateLimitConfig.DefaultIPLimit),
			slog.Duration("ip_window", rateLimitConfig.DefaultIPWindow))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	testSourceLimiter := middleware.NewRateLimiter(100, 1*time.Minute, ipExtractor)

	paginationCfg := pagination.LoadFromEnv()

	mux := http.NewServeMux()
	mux.Handle("/health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	hsrc.Register(mux, srcSvc, paginationCfg, testSourceLimiter)
	harticle.Register(mux, artSvc, paginationCfg, logger)
	hjob.Register(mux, jobMgr, jobRepo, logRepo, paginationCfg)
	hdash.Register(mux, dashSvc)

	handler := applyMiddleware(logger, mux, ipRateLimiter)

	sweepMetrics := worker.NewWorkerMetrics()
	sweepCfg, _ := worker.LoadConfigFromEnv(logger, sweepMetrics)
	sweeper := worker.NewSweeper(jobRepo, *sweepCfg, sweepMetrics, logger)
	healthAddr := ":" + strconv.Itoa(sweepCfg.HealthPort)

	return &ServerComponents{
		Handler:      handler,
		DB:           database,
		IPStore:      ipStore,
		IPWindow:     rateLimitConfig.DefaultIPWindow,
		CleanupCfg:   hhttp.LoadCleanupConfigFromEnv(),
		Sweeper:      sweeper,
		WorkerHealth: worker.NewHealthServer(healthAddr, logger),
		HealthAddr:   healthAddr,
	}
}

// newPageFetcher constructs the shared SSRF-hardened page fetcher used by
// both the candidate-article extractor and the source test_source endpoint.
func newPageFetcher() *fetcher.PageFetcher {
	return fetcher.NewPageFetcher(fetcher.DefaultConfig(), "")
}

// applyMiddleware wraps the handler with the request-processing chain:
// CORS -> Request ID -> IP Rate Limit -> Tracing -> Recovery -> Logging ->
// Body Limit -> CSP -> Metrics. There is no authentication layer; the
// trigger API is assumed to sit behind a trusted network boundary.
func applyMiddleware(logger *slog.Logger, handler http.Handler, ipRateLimiter *middleware.IPRateLimiter) http.Handler {
	corsConfig, err := middleware.LoadCORSConfig()
	if err != nil {
		logger.Error("failed to load CORS configuration", slog.Any("error", err))
		os.Exit(1)
	}
	corsConfig.Logger = &middleware.SlogAdapter{Logger: logger}

	cspConfig, err := config.LoadCSPConfig()
	if err != nil {
		logger.Error("failed to load CSP configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var cspMiddleware func(http.Handler) http.Handler
	if cspConfig.Enabled {
		cspMW := middleware.NewCSPMiddleware(middleware.CSPMiddlewareConfig{
			Enabled:       true,
			DefaultPolicy: csp.StrictPolicy(),
			PathPolicies: map[string]*csp.CSPBuilder{
				"/swagger/": csp.SwaggerUIPolicy(),
			},
			ReportOnly: cspConfig.ReportOnly,
		})
		cspMiddleware = cspMW.Middleware()
		logger.Info("CSP enabled", slog.Bool("report_only", cspConfig.ReportOnly))
	} else {
		cspMiddleware = func(next http.Handler) http.Handler { return next }
		logger.Warn("CSP is disabled")
	}

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = cspMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	if ipRateLimiter != nil {
		chain = ipRateLimiter.Middleware()(chain)
	}
	chain = requestid.Middleware(chain)
	chain = middleware.CORS(*corsConfig)(chain)

	return chain
}

// runServer starts the HTTP server on PORT (default 8080) and blocks until
// SIGINT/SIGTERM, then drains in-flight requests before exiting.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.IPStore != nil {
		go hhttp.StartRateLimitCleanup(ctx, components.IPStore, components.CleanupCfg.Interval, components.IPWindow, "ip")
	}

	go updateDBConnectionStats(ctx, components.DB)

	if err := components.Sweeper.Start(); err != nil {
		logger.Error("failed to start periodic stuck-job sweep", slog.Any("error", err))
		os.Exit(1)
	}
	defer components.Sweeper.Stop()

	go func() {
		if err := components.WorkerHealth.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker health server failed", slog.Any("error", err))
		}
	}()
	components.WorkerHealth.SetReady(true)
	logger.Info("periodic sweep health endpoint started", slog.String("addr", components.HealthAddr))

	addr := ":" + getPort()
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// updateDBConnectionStats refreshes the connection pool gauges periodically
// until ctx is cancelled.
func updateDBConnectionStats(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := database.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}

// getPort returns the PORT environment variable, defaulting to 8080.
func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
