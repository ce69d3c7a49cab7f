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
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/config"
	pgRepo "blog-platform/internal/infra/adapter/persistence/postgres"
	"blog-platform/internal/infra/db"
	"blog-platform/internal/infra/mailer"
	"blog-platform/internal/infra/security"
	"blog-platform/internal/observability/logging"
	"blog-platform/internal/observability/slo"
	"blog-platform/internal/observability/tracing"
	"blog-platform/internal/resilience/circuitbreaker"

	accountUC "blog-platform/internal/usecase/account"
	artUC "blog-platform/internal/usecase/article"
	catUC "blog-platform/internal/usecase/category"
	commentUC "blog-platform/internal/usecase/comment"
	mailUC "blog-platform/internal/usecase/mail"

	hhttp "blog-platform/internal/handler/http"
	haccount "blog-platform/internal/handler/http/account"
	harticle "blog-platform/internal/handler/http/article"
	hauth "blog-platform/internal/handler/http/auth"
	hcategory "blog-platform/internal/handler/http/category"
	hcomment "blog-platform/internal/handler/http/comment"
	"blog-platform/internal/handler/http/requestid"
	authservice "blog-platform/internal/service/auth"

	_ "blog-platform/docs" // swagger docs
)

// @title           Blog Platform API
// @version         1.0
// @description     記事・コメント・カテゴリ・アカウントを管理するブログの REST API
// @description     一覧はページ単位で返され、記事の全文検索を提供します。

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description ログイン時に発行されるセッショントークン。"Bearer {token}" 形式で指定してください。Cookie 認証も利用できます。

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

	shutdownTracer := tracing.Init(cfg.Version, cfg.TraceSampleRatio)

	database := initDatabase(logger, cfg.Database)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	components := setupServer(logger, cfg, database)
	runServer(logger, cfg, components, shutdownTracer)
}

// initDatabase opens the connection pool and applies pending migrations.
func initDatabase(logger *slog.Logger, cfg config.DatabaseConfig) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(cfg.URL); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// ServerComponents holds what the server needs to run and to shut down.
type ServerComponents struct {
	Handler http.Handler
	Mail    mailUC.Service
}

// setupServer wires repositories, usecases and handlers.
func setupServer(logger *slog.Logger, cfg *config.Config, database *sql.DB) *ServerComponents {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)

	users := pgRepo.NewUserRepo(breaker)
	sessionRepo := pgRepo.NewSessionRepo(breaker)
	tokens := pgRepo.NewTokenRepo(breaker)
	articles := pgRepo.NewArticleRepo(breaker)
	comments := pgRepo.NewCommentRepo(breaker)
	categories := pgRepo.NewCategoryRepo(breaker)
	tags := pgRepo.NewTagRepo(breaker)
	tx := pgRepo.NewTxManager(breaker)

	hasher := security.NewBcryptHasher()
	windows := pagination.LoadFromEnv()

	if !cfg.MailEnabled() {
		logger.Warn("SMTP_HOST not set, activation mail is only logged")
	}
	mailSvc := mailUC.NewService(mailer.Channels(mailer.NewSMTPChannel(cfg.Mail), logger), cfg.Mail.MaxConcurrent)

	authSvc := authservice.NewAuthService(authservice.NewDatabaseProvider(users, hasher))

	articleSvc := &artUC.Service{
		Articles:   articles,
		Tags:       tags,
		Categories: categories,
		Comments:   comments,
		Tx:         tx,
		Windows:    windows,
	}
	commentSvc := &commentUC.Service{
		Comments: comments,
		Articles: articles,
		Window:   windows.Comments,
	}
	categorySvc := &catUC.Service{
		Categories: categories,
		Window:     windows.Categories,
	}
	accountSvc := &accountUC.Service{
		Users:    users,
		Tokens:   tokens,
		Articles: articles,
		Tx:       tx,
		Hasher:   hasher,
		Auth:     authSvc,
		Mailer:   mailSvc,
		HostName: cfg.HostName,
	}

	sessions := hauth.NewSessions(sessionRepo, users, cfg.Session)
	loginLimiter := hhttp.NewRateLimiter(cfg.Login.RatePerMinute, cfg.Login.Burst)

	mux := http.NewServeMux()
	harticle.Register(mux, articleSvc, commentSvc, logger)
	hcomment.Register(mux, commentSvc, logger)
	hcategory.Register(mux, categorySvc, logger)
	haccount.Register(mux, accountSvc, sessions, loginLimiter.Limit)

	// ヘルスチェック（認証不要）
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: breaker, Mail: mailSvc, Version: cfg.Version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: breaker})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	logger.Info("routes registered",
		slog.Int("login_rate_per_minute", cfg.Login.RatePerMinute),
		slog.Int("login_burst", cfg.Login.Burst))

	return &ServerComponents{
		Handler: applyMiddleware(logger, cfg, mux, sessions),
		Mail:    mailSvc,
	}
}

// applyMiddleware wraps the mux with the middleware chain.
// Order: Request ID → Tracing → Logging → Metrics → Recovery → Timeout → Input limits → Session → CSRF
func applyMiddleware(logger *slog.Logger, cfg *config.Config, handler http.Handler, sessions *hauth.Sessions) http.Handler {
	chain := handler

	// innermost first
	chain = hauth.CSRF(cfg.Session.CookieSecure)(chain)
	chain = sessions.Middleware(chain)
	chain = hhttp.InputValidation(hhttp.DefaultMaxBodyBytes)(chain)
	chain = hhttp.Timeout(cfg.RequestTimeout)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *config.Config, components *ServerComponents, shutdownTracer func(context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go flushSLO(ctx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris 対策
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("version", cfg.Version))
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	if err := components.Mail.Shutdown(shutdownCtx); err != nil {
		logger.Error("mail shutdown failed", slog.Any("error", err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// flushSLO publishes the SLO window every interval until ctx is done.
func flushSLO(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			slo.Default.Flush()
		}
	}
}
