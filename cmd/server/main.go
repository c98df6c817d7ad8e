package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sheikh-saqib/account-ledger-system/internal/api"
	"github.com/sheikh-saqib/account-ledger-system/internal/config"
	"github.com/sheikh-saqib/account-ledger-system/internal/events"
	"github.com/sheikh-saqib/account-ledger-system/internal/events/kafka"
	"github.com/sheikh-saqib/account-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/account-ledger-system/internal/metrics"
	"github.com/sheikh-saqib/account-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/account-ledger-system/internal/storage/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	store, err := setupStore(cfg, logger)
	if err != nil {
		logger.Error("store setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	publisher := setupPublisher(cfg, logger)
	txMetrics := metrics.NewTransactionMetrics(logger)

	ledgerService := ledger.NewLedger(store, publisher, txMetrics, logger, ledger.Config{
		LockTimeout:         cfg.LockTimeout,
		SupportedCurrencies: cfg.SupportedCurrencies,
	})

	handler := api.NewAPIHandler(ledgerService, store, logger)

	metricsServer := txMetrics.StartMetricsServer(cfg.MetricsAddr)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, httpServer, metricsServer)
	logger.Info("shutdown complete")
}

func setupStore(cfg config.Config, logger *slog.Logger) (interfaces.LedgerStore, error) {
	if cfg.PostgresDSN == "" {
		logger.Info("using in-memory store")
		return memory.NewMemoryLedgerStore(), nil
	}

	logger.Info("using postgres store")
	return postgres.Open(cfg.PostgresDSN)
}

func setupPublisher(cfg config.Config, logger *slog.Logger) interfaces.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NopPublisher{}
	}

	logger.Info("publishing events to kafka",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaTopic))
	return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func waitForShutdown(logger *slog.Logger, servers ...*http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, server := range servers {
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed",
				slog.String("addr", server.Addr),
				slog.String("error", err.Error()))
		}
	}
}
