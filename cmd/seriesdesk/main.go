package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/seriesdesk/seriesdesk/internal/app"
	"github.com/seriesdesk/seriesdesk/internal/auth"
	"github.com/seriesdesk/seriesdesk/internal/console"
	"github.com/seriesdesk/seriesdesk/internal/favorites"
	"github.com/seriesdesk/seriesdesk/internal/observability"
	"github.com/seriesdesk/seriesdesk/internal/state"
	"github.com/seriesdesk/seriesdesk/internal/upstream"
	"github.com/seriesdesk/seriesdesk/jobs"
)

// refreshQueue adapts the Asynq job client to the console service.
type refreshQueue struct {
	client *jobs.Client
}

func (q refreshQueue) EnqueueSchemaRefresh(ctx context.Context, seriesID int64) error {
	_, err := q.client.EnqueueSchemaRefresh(ctx, jobs.SchemaRefreshPayload{SeriesID: seriesID})
	return err
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	// durable console state (favorites, chosen host) lives in Postgres,
	// the expiring bearer token in Redis
	durable := state.NewPostgres(dbpool)
	tokenState := state.NewRedis(redisClient, "seriesdesk", cfg.TokenTTL)

	tokenStore := auth.NewTokenStore(tokenState, nil)
	favoritesService := favorites.NewService(durable, nil)

	baseURL := cfg.UpstreamURL
	if override, ok, err := durable.Get(ctx, "settings:upstream_url"); err == nil && ok && override != "" {
		baseURL = override
	}
	client := upstream.NewClient(baseURL, tokenStore)

	consoleService := console.NewService(client, favoritesService, logger)
	consoleHandler := console.NewHandler(logger, consoleService, tokenStore, cfg.SuggestRateLimit)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	consoleService.SetRefreshQueue(refreshQueue{client: jobsClient})

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ConsoleHandler: consoleHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
