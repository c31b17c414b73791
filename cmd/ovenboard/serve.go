package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/creamcroissant/ovenboard/internal/api"
	"github.com/creamcroissant/ovenboard/internal/bootstrap"
	"github.com/creamcroissant/ovenboard/internal/cache"
	"github.com/creamcroissant/ovenboard/internal/config"
	"github.com/creamcroissant/ovenboard/internal/deal"
	"github.com/creamcroissant/ovenboard/internal/job"
	"github.com/creamcroissant/ovenboard/internal/migrations"
	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/obs"
	"github.com/creamcroissant/ovenboard/internal/order"
	"github.com/creamcroissant/ovenboard/internal/repository/sqlite"
	"github.com/creamcroissant/ovenboard/internal/service"
	"github.com/creamcroissant/ovenboard/internal/storefront"
	"github.com/creamcroissant/ovenboard/internal/support/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:     cfg.Log.SlogLevel(),
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})

	db, err := bootstrap.OpenSQLite(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(db); err != nil {
		return err
	}

	store := sqlite.NewStore(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dataQuality := obs.NewDataQuality(cfg.Metrics.Namespace, registry)

	cacheStore := cache.NewStore(cache.Options{
		DefaultTTL: cfg.Deals.SnapshotTTL,
		Prefix:     "ovenboard",
	})

	client := storefront.New(cfg.Storefront)

	bus := notification.NewBus()
	ledger := notification.NewLedger(
		ctx,
		service.NewLedgerStore(store.Settings()),
		bus,
		logger,
		dataQuality,
		notification.WithCapacity(cfg.Notifications.Capacity),
	)

	estimator := order.NewEstimator(logger, dataQuality)
	classifier := deal.NewClassifier(logger, dataQuality, cfg.Deals.LowPriceThreshold)

	dealService := service.NewDealService(client, cacheStore, logger, cfg.Deals.SnapshotTTL)
	orderService := service.NewOrderService(client, dealService, store.OrderStatusLogs(), ledger, estimator, classifier, logger)
	notificationService := service.NewNotificationService(ledger)
	stockService := service.NewStockService(client, store.Settings(), ledger, logger, cfg.Jobs.LowStockThreshold)

	scheduler := job.NewScheduler(logger)
	if _, err := scheduler.Register(cfg.Jobs.LedgerRefreshSpec, job.NewLedgerRefreshJob(ledger)); err != nil {
		return err
	}
	if _, err := scheduler.Register(cfg.Jobs.LowStockSpec, job.NewLowStockJob(stockService)); err != nil {
		return err
	}
	scheduler.Start()

	var metricsRegistry *prometheus.Registry
	if cfg.Metrics.Enabled {
		metricsRegistry = registry
	}

	router := api.NewRouter(api.Dependencies{
		Logger:        logger,
		Registry:      metricsRegistry,
		Orders:        orderService,
		Notifications: notificationService,
		Version:       Version,
	})

	server := bootstrap.NewHTTPServer(cfg.HTTP, router)

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr, "env", cfg.Log.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}
