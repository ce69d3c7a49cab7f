package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"blog-platform/internal/config"
	pgRepo "blog-platform/internal/infra/adapter/persistence/postgres"
	"blog-platform/internal/infra/db"
	workerPkg "blog-platform/internal/infra/worker"
	"blog-platform/internal/observability/logging"
	"blog-platform/internal/resilience/circuitbreaker"
)

// statsSchedule refreshes the article gauges.
const statsSchedule = "*/5 * * * *"

// jobTimeout bounds a single run of any job.
const jobTimeout = 5 * time.Minute

func main() {
	cfg, warnings, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.SlogLevel())
	slog.SetDefault(logger)
	for _, w := range warnings {
		logger.Warn("configuration fallback", slog.String("detail", w))
	}

	database := initDatabase(logger, cfg.Database)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)

	healthAddr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, database.PingContext)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	c := setupCron(logger, cfg, database, workerMetrics)
	c.Start()
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("purge_schedule", cfg.Worker.PurgeSchedule),
		slog.String("stats_schedule", statsSchedule),
		slog.Duration("token_max_age", cfg.Worker.TokenMaxAge))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// 実行中のジョブの完了を待つ
	select {
	case <-c.Stop().Done():
	case <-time.After(30 * time.Second):
		logger.Warn("running jobs did not finish in time")
	}
	logger.Info("worker stopped")
}

// initDatabase opens the pool and waits until the API has migrated the schema.
func initDatabase(logger *slog.Logger, cfg config.DatabaseConfig) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM sessions LIMIT 1"
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_, err := database.ExecContext(ctx, probe)
		cancel()
		if err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

// setupCron registers the purge and stats jobs.
func setupCron(logger *slog.Logger, cfg *config.Config, database *sql.DB, metrics *workerPkg.WorkerMetrics) *cron.Cron {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)

	purger := &workerPkg.Purger{
		Sessions:    pgRepo.NewSessionRepo(breaker),
		Tokens:      pgRepo.NewTokenRepo(breaker),
		Users:       pgRepo.NewUserRepo(breaker),
		TokenMaxAge: cfg.Worker.TokenMaxAge,
	}
	stats := &workerPkg.ArticleStats{Articles: pgRepo.NewArticleRepo(breaker)}
	runner := &workerPkg.Runner{Metrics: metrics, Logger: logger, Timeout: jobTimeout}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(cfg.Worker.PurgeSchedule, func() {
		runner.Run(workerPkg.JobPurge, func(ctx context.Context) error {
			res, err := purger.Run(ctx)
			logger.Info("purge finished",
				slog.Int64("sessions", res.Sessions),
				slog.Int64("activation_tokens", res.Tokens),
				slog.Int64("inactive_users", res.Users),
				slog.Duration("duration", res.Duration))
			return err
		})
	}); err != nil {
		logger.Error("failed to add purge job", slog.Any("error", err))
		os.Exit(1)
	}

	if _, err := c.AddFunc(statsSchedule, func() {
		runner.Run(workerPkg.JobStats, stats.Run)
	}); err != nil {
		logger.Error("failed to add stats job", slog.Any("error", err))
		os.Exit(1)
	}

	return c
}
