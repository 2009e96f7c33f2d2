package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-commerce/meridian/internal/app"
	"github.com/meridian-commerce/meridian/internal/catalog/combinations"
	"github.com/meridian-commerce/meridian/internal/catalog/products"
	"github.com/meridian-commerce/meridian/internal/catalog/warehouses"
	"github.com/meridian-commerce/meridian/internal/fulfillment"
	"github.com/meridian-commerce/meridian/internal/inventory"
	"github.com/meridian-commerce/meridian/internal/observability"
	"github.com/meridian-commerce/meridian/internal/platform/cache"
	"github.com/meridian-commerce/meridian/internal/platform/db"
	"github.com/meridian-commerce/meridian/internal/shared"
	"github.com/meridian-commerce/meridian/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	productRepo := products.NewRepository(pool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService)

	warehouseRepo := warehouses.NewRepository(pool)
	warehouseService := warehouses.NewService(warehouseRepo)
	warehouseHandler := warehouses.NewHandler(logger, warehouseService)

	comboRepo := combinations.NewRepository(pool)
	comboService := combinations.NewService(comboRepo)
	comboHandler := combinations.NewHandler(logger, comboService)

	fulfillmentRepo := fulfillment.NewRepository(pool)
	shipmentAdapter := fulfillment.NewInventoryAdapter(fulfillmentRepo)

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

	metrics := observability.NewMetrics()
	availabilityCache := inventory.NewAvailabilityCache(redisClient, 10*time.Minute)

	inventoryService := inventory.NewService(inventory.ServiceDeps{
		Repo:      inventory.NewRepository(pool),
		Catalog:   productService,
		Combos:    comboService,
		Shipments: shipmentAdapter,
		Notifier:  jobs.NewQueueNotifier(jobsClient),
		Cache:     availabilityCache,
		Audit:     auditLogger,
		Metrics:   inventory.NewMetrics(metrics.Registerer()),
		Logger:    logger,
		Settings: inventory.Settings{
			AllowRepublish: cfg.InventoryAllowRepublish,
			MaxBundleDepth: cfg.InventoryMaxBundleDepth,
		},
	})
	inventoryHandler := inventory.NewHandler(logger, inventoryService, idempotencyStore)

	fulfillmentService := fulfillment.NewService(fulfillmentRepo, inventoryService, logger)
	fulfillmentHandler := fulfillment.NewHandler(logger, fulfillmentService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	if err := availabilityCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		InventoryHandler:   inventoryHandler,
		ProductHandler:     productHandler,
		WarehouseHandler:   warehouseHandler,
		CombinationHandler: comboHandler,
		FulfillmentHandler: fulfillmentHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
