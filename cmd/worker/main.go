package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/seriesdesk/seriesdesk/internal/app"
	"github.com/seriesdesk/seriesdesk/internal/auth"
	"github.com/seriesdesk/seriesdesk/internal/favorites"
	jobmetrics "github.com/seriesdesk/seriesdesk/internal/jobs"
	"github.com/seriesdesk/seriesdesk/internal/state"
	"github.com/seriesdesk/seriesdesk/internal/upstream"
	"github.com/seriesdesk/seriesdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	durable := state.NewPostgres(dbpool)
	tokenState := state.NewRedis(redisClient, "seriesdesk", cfg.TokenTTL)

	tokenStore := auth.NewTokenStore(tokenState, nil)
	favoritesService := favorites.NewService(durable, nil)
	client := upstream.NewClient(cfg.UpstreamURL, tokenStore)

	refreshJob := jobs.NewSchemaRefreshJob(client, favoritesService, logger, jobmetrics.NewMetrics(nil))

	refreshTask, err := jobs.NewSchemaRefreshTask(jobs.SchemaRefreshPayload{})
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSchemaRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "@every " + cfg.SchemaRefresh.String(), Task: refreshTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
