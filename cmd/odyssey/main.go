package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/partytb/internal/app"
	"github.com/odyssey-erp/partytb/internal/masterdata"
	"github.com/odyssey-erp/partytb/internal/observability"
	"github.com/odyssey-erp/partytb/internal/partytb"
	partytbhttp "github.com/odyssey-erp/partytb/internal/partytb/http"
	"github.com/odyssey-erp/partytb/internal/platform/cache"
	"github.com/odyssey-erp/partytb/internal/platform/db"
	"github.com/odyssey-erp/partytb/internal/store/postgres"
	"github.com/odyssey-erp/partytb/jobs"
	"github.com/odyssey-erp/partytb/report"
)

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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	store := postgres.New(dbpool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

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
	masterCache := masterdata.NewCache(redisClient, cfg.MasterDataCacheTTL)
	masterCache.ListenForInvalidation(ctx)
	lookup := masterdata.NewLookup(store, masterCache)

	metrics := observability.NewMetrics()
	service := partytb.NewService(partytb.ServiceConfig{
		Ledger:    store,
		Directory: store,
		Companies: lookup,
		Naming:    lookup,
		Logger:    logger,
		Metrics:   metrics,
	})

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)
	pdfRenderer, err := report.NewPartyTBRenderer(reportClient, cfg.Locale())
	if err != nil {
		logger.Error("init pdf renderer", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	partyTBHandler, err := partytbhttp.NewHandler(partytbhttp.Config{
		Logger:       logger,
		Reports:      service,
		PDF:          pdfRenderer,
		Exports:      jobClient,
		ExportsLimit: cfg.ExportRateLimitPerMin,
		BuildTimeout: cfg.AppRequestTimeout,
	})
	if err != nil {
		logger.Error("init party tb handler", slog.Any("error", err))
		os.Exit(1)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		PartyTBHandler: partyTBHandler,
		ReportHandler:  reportHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}
	if err := app.Serve(ctx, server, logger, cfg.ShutdownTimeout); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
