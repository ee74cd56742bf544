package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/leblango/leblango-backend/internal/adapter/postgres"
	dictionaryrepo "github.com/leblango/leblango-backend/internal/adapter/postgres/dictionary"
	eventrepo "github.com/leblango/leblango-backend/internal/adapter/postgres/event"
	importjobrepo "github.com/leblango/leblango-backend/internal/adapter/postgres/importjob"
	libraryrepo "github.com/leblango/leblango-backend/internal/adapter/postgres/library"
	querylogrepo "github.com/leblango/leblango-backend/internal/adapter/postgres/querylog"
	submissionrepo "github.com/leblango/leblango-backend/internal/adapter/postgres/submission"
	userrepo "github.com/leblango/leblango-backend/internal/adapter/postgres/user"
	"github.com/leblango/leblango-backend/internal/adapter/redis"
	"github.com/leblango/leblango-backend/internal/auth"
	"github.com/leblango/leblango-backend/internal/config"
	analyticssvc "github.com/leblango/leblango-backend/internal/service/analytics"
	authsvc "github.com/leblango/leblango-backend/internal/service/auth"
	dictionarysvc "github.com/leblango/leblango-backend/internal/service/dictionary"
	importersvc "github.com/leblango/leblango-backend/internal/service/importer"
	librarysvc "github.com/leblango/leblango-backend/internal/service/library"
	moderationsvc "github.com/leblango/leblango-backend/internal/service/moderation"
	"github.com/leblango/leblango-backend/internal/transport/middleware"
	"github.com/leblango/leblango-backend/internal/transport/rest"
	"github.com/leblango/leblango-backend/migrations"
)

// Run is the application entry point. It loads configuration, connects to
// PostgreSQL and Redis, wires repositories, services and HTTP handlers, and
// serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN, migrations.FS); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	cache, err := redis.NewCache(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer cache.Close()

	// Repositories
	users := userrepo.New(pool)
	entries := dictionaryrepo.New(pool)
	items := libraryrepo.New(pool)
	submissions := submissionrepo.New(pool)
	events := eventrepo.New(pool)
	queryLogs := querylogrepo.New(pool)
	importJobs := importjobrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	// Services
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	authService := authsvc.NewService(logger, users, jwtManager, cfg.Auth)
	dictionaryService := dictionarysvc.NewService(logger, entries, queryLogs, cfg.Search)
	libraryService := librarysvc.NewService(logger, items, submissions, events, queryLogs, cfg.Search)
	moderationService := moderationsvc.NewService(logger, submissions, items, txManager)
	importerService := importersvc.NewService(logger, entries, items, importJobs)
	analyticsService := analyticssvc.NewService(logger, queryLogs, events, cache, cfg.Analytics)

	// HTTP
	router := rest.NewRouter(rest.Handlers{
		Auth:       rest.NewAuthHandler(authService, logger),
		Dictionary: rest.NewDictionaryHandler(dictionaryService, logger),
		Library:    rest.NewLibraryHandler(libraryService, logger),
		Moderation: rest.NewModerationHandler(moderationService, logger),
		Import:     rest.NewImportHandler(importerService, logger),
		Analytics:  rest.NewAnalyticsHandler(analyticsService, logger),
		Health:     rest.NewHealthHandler(pool, cache, BuildVersion()),
	})

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		rateLimiter.Limit(cfg.Server.RateLimitPerMin),
		middleware.Auth(authService),
	)(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
