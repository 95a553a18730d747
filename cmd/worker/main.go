package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odyssey-erp/partytb/internal/app"
	jobmetrics "github.com/odyssey-erp/partytb/internal/jobs"
	"github.com/odyssey-erp/partytb/internal/masterdata"
	"github.com/odyssey-erp/partytb/internal/partytb"
	"github.com/odyssey-erp/partytb/internal/platform/cache"
	"github.com/odyssey-erp/partytb/internal/platform/db"
	"github.com/odyssey-erp/partytb/internal/store/postgres"
	"github.com/odyssey-erp/partytb/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	store := postgres.New(pool)

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, master data cache disabled", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}
	lookup := masterdata.NewLookup(store, masterdata.NewCache(redisClient, cfg.MasterDataCacheTTL))

	service := partytb.NewService(partytb.ServiceConfig{
		Ledger:    store,
		Directory: store,
		Companies: lookup,
		Naming:    lookup,
		Logger:    logger,
	})
	exportJob := jobs.NewPartyTBExportJob(service, cfg.ExportDir, logger, jobmetrics.NewMetrics(nil))

	var cron []jobs.CronRegistration
	if cfg.ExportCron != "" {
		task, err := jobs.NewPartyTBExportTask(jobs.PartyTBExportPayload{
			Company:     cfg.ExportCompany,
			PartyType:   cfg.ExportPartyType,
			PeriodScope: jobs.PeriodPreviousMonth,
		})
		if err != nil {
			logger.Error("build export task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.ExportCron, Task: task, Options: jobs.ExportOptions()})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPartyTBExport, Handler: exportJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := app.Serve(ctx, metricsServer, logger, cfg.ShutdownTimeout); err != nil {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
