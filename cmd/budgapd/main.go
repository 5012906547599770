package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgap/internal/amqp"
	"budgap/internal/backend"
	"budgap/internal/cache"
	"budgap/internal/config"
	"budgap/internal/log"
	"budgap/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		JSON:      cfg.LogJSON,
	})
	log.SetDefault(logger)

	logger.Info("Starting budgapd")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "type", backendCfg.Type)
		os.Exit(1)
	}
	store := result.Store

	// AMQP is optional: without a broker, alerts still land in the store and
	// only queue delivery is skipped.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without queue delivery", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - alert events stay local")
	}

	budgets := services.NewBudgetService(store)
	alerts := services.NewAlertService(store, budgets, amqpClient)
	transactions := services.NewTransactionService(store, alerts)
	categories := services.NewCategoryService(store)
	processor := services.NewRecurringProcessor(store, transactions)

	go cache.Janitor(ctx, 10*time.Minute, categories)

	logger.Info("Recurring processor configured",
		"interval", cfg.RecurringInterval,
		"backend", backendCfg.Type)

	processorDone := make(chan error, 1)
	go func() {
		processorDone <- processor.Run(ctx, cfg.RecurringInterval)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-processorDone:
		logger.Error("Recurring processor stopped", "error", err)
	}

	cancel()

	if result.Cleanup != nil {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}

	logger.Info("budgapd stopped")
}
