package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mizan-erp/mizan/internal/app"
	"github.com/mizan-erp/mizan/internal/export"
	"github.com/mizan-erp/mizan/internal/finance"
	"github.com/mizan-erp/mizan/internal/inventory"
	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/notify"
	"github.com/mizan-erp/mizan/internal/observability"
	"github.com/mizan-erp/mizan/internal/parties"
	"github.com/mizan-erp/mizan/internal/platform/cache"
	"github.com/mizan-erp/mizan/internal/platform/db"
	"github.com/mizan-erp/mizan/internal/platform/retry"
	"github.com/mizan-erp/mizan/internal/shared"
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

	var dbpool *pgxpool.Pool
	err = retry.Do(ctx, retry.DefaultPolicy(), func(ctx context.Context) error {
		var err error
		dbpool, err = db.New(ctx, db.Config{
			DSN:             cfg.PGDSN,
			MaxConns:        cfg.PGMaxConns,
			MinConns:        cfg.PGMinConns,
			MaxConnLifetime: cfg.PGMaxConnLifetime,
		})
		return err
	})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis only backs caching here, so the server still comes up without it.
	redisClient, err := cache.New(ctx, cache.Config{Addr: cfg.RedisAddr, DialTimeout: cfg.RedisDialTimeout})
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	activityLogger := shared.NewActivityLogger(dbpool)
	notifyStore := notify.NewStore(dbpool, logger)

	partiesRepo := parties.NewRepository(dbpool)
	partiesService := parties.NewService(partiesRepo)
	partiesHandler := parties.NewHandler(logger, partiesService)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	ledgerRepo := ledger.NewRepository(dbpool)
	ledgerService := ledger.NewService(ledgerRepo, partiesService, notifyStore, activityLogger, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	ratesStore := finance.NewRatesStore(dbpool, redisClient)
	financeService := finance.NewService(ledgerService, partiesService, ratesStore, redisClient, logger)
	// Ledger writes drop the cached budget so reports never serve a stale
	// summary for the remainder of its TTL.
	ledgerService.SetCacheInvalidator(financeService.InvalidateBudget)
	financeHandler := finance.NewHandler(logger, financeService)
	exportHandler := export.NewHandler(logger, financeService)

	notifyHandler := notify.NewHandler(logger, notifyStore, activityLogger)
	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		PartiesHandler:   partiesHandler,
		InventoryHandler: inventoryHandler,
		LedgerHandler:    ledgerHandler,
		FinanceHandler:   financeHandler,
		ExportHandler:    exportHandler,
		NotifyHandler:    notifyHandler,
		Metrics:          metrics,
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
