package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	auditrepo "github.com/mrlokans/catalog/internal/database/audit"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/database/genres"
	http_controllers "github.com/mrlokans/catalog/internal/http"
	"github.com/mrlokans/catalog/internal/logging"
	"github.com/mrlokans/catalog/internal/metrics"
	"github.com/mrlokans/catalog/internal/scheduler"
	"github.com/mrlokans/catalog/internal/security"
	"github.com/mrlokans/catalog/internal/session"
	"github.com/mrlokans/catalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT. SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}

	// In-flight requests are done; release background work and its resources.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info().Msg("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logging.Init(cfg.Global.Env, cfg.Logging.Level)
	if cfg.Global.Env != logging.EnvDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info().Str("version", version).Msg("Starting catalog")

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get SQL DB for sessions")
	}
	sessionManager, err := session.NewManager(sqlDB, cfg.Security, cfg.Session)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session manager")
	}

	csrfSecret, err := resolveCSRFSecret(cfg.Security)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up CSRF protection")
	}
	if csrfSecret == nil {
		log.Warn().Msg("CSRF_ENABLED=false, form submissions are not CSRF protected")
	}

	var rateLimiter *security.RateLimiter
	if cfg.RateLimit.Requests > 0 {
		rateLimiter = security.NewRateLimiter(security.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
			Burst:    cfg.RateLimit.Burst,
		})
	}

	if cfg.Demo.Enabled {
		log.Info().Msg("Demo mode enabled, the catalog is read-only")
	}

	var httpMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		httpMetrics = metrics.New()
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))
		if httpMetrics != nil {
			taskClient.Register(tasks.NewRefreshCatalogStatsQueue(db, httpMetrics))
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	jobs := scheduler.New()
	if err := jobs.Add("audit-cleanup", cfg.AuditCleanup.Schedule,
		AuditCleanupJob(taskClient, auditService, cfg.Audit.RetentionDays)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule audit cleanup")
	}
	if httpMetrics != nil {
		if err := jobs.Add("catalog-stats", cfg.Metrics.RefreshSchedule,
			CatalogStatsJob(taskClient, db, httpMetrics)); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule catalog stats refresh")
		}
		// Seed the gauges so /metrics is meaningful before the first tick.
		if err := jobs.RunNow(context.Background(), "catalog-stats"); err != nil {
			log.Warn().Err(err).Msg("Initial catalog stats refresh failed")
		}
	}
	if err := jobs.Start(context.Background()); err != nil {
		log.Error().Err(err).Msg("Scheduler not started")
	}

	router, err := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Genres:         genres.NewRepository(db.DB),
		Authors:        authors.NewRepository(db.DB),
		Books:          books.NewRepository(db.DB),
		Auditor:        auditService,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Security.SecureCookies,
		RateLimiter:    rateLimiter,
		Metrics:        httpMetrics,
		DemoMode:       cfg.Demo.Enabled,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create router")
	}

	onShutdown := func(ctx context.Context) {
		jobs.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if rateLimiter != nil {
			rateLimiter.Stop()
		}
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

// AuditCleanupJob trims the change log on the task queue, or inline when the
// queue is disabled.
func AuditCleanupJob(client *tasks.Client, cleaner tasks.AuditEventCleaner, retentionDays int) scheduler.Job {
	return func(ctx context.Context) error {
		task := tasks.CleanupAuditEventsTask{RetentionDays: retentionDays}
		return tasks.Dispatch(ctx, client, task, tasks.CleanupAuditEventsProcessor(cleaner))
	}
}

// CatalogStatsJob recounts the catalog into the entity gauges.
func CatalogStatsJob(client *tasks.Client, counter tasks.CatalogCounter, gauge tasks.EntityGauge) scheduler.Job {
	return func(ctx context.Context) error {
		return tasks.Dispatch(ctx, client, tasks.RefreshCatalogStatsTask{}, tasks.RefreshCatalogStatsProcessor(counter, gauge))
	}
}

// resolveCSRFSecret returns the configured secret, or a fresh random one when
// CSRF_SECRET is unset. It returns nil only when CSRF is switched off.
func resolveCSRFSecret(sec config.Security) ([]byte, error) {
	if !sec.CSRFEnabled {
		return nil, nil
	}
	if secret := decodeSecret(sec.CSRFSecret); secret != nil {
		return secret, nil
	}

	secret, err := security.GenerateCSRFSecret()
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Generated CSRF secret (set CSRF_SECRET to keep open forms valid across restarts)")
	return secret, nil
}

// decodeSecret accepts a hex-encoded secret or raw bytes.
func decodeSecret(secret string) []byte {
	if secret == "" {
		return nil
	}
	if b, err := hex.DecodeString(secret); err == nil {
		return b
	}
	return []byte(secret)
}
