package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kharcha/internal/backend"
	"kharcha/internal/config"
	"kharcha/internal/events"
	"kharcha/internal/log"
	"kharcha/internal/services"
	"kharcha/internal/storage"
	"kharcha/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(slog.LevelInfo, "recurring-worker")
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	kv, err := backend.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	defer kv.Close()

	var notifier *events.AMQPNotifier
	if cfg.AMQPURL != "" {
		notifier, err = events.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, continuing without change events", "error", err)
			notifier = nil
		} else {
			defer notifier.Close()
		}
	}

	// No read cache here: the worker runs on an interval and another process
	// is the primary writer, so a cached record would only go stale.
	var eventSink events.Notifier = events.NewBus()
	if notifier != nil {
		eventSink = notifier
	}
	userStore := store.New(kv, nil, eventSink, logger.WithComponent("store"))
	recurring := services.NewRecurringService(userStore, logger.WithComponent("recurring"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring sweep configured",
		"interval", cfg.SweepInterval,
		"backend", cfg.Backend)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	// Run an initial sweep on startup, then on every tick.
	sweep(ctx, kv, recurring, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			sweep(ctx, kv, recurring, logger)
			logger.Debug("Sweep tick complete",
				"next_check", now.Add(cfg.SweepInterval).Format("15:04:05"))
		}
	}
}

// sweep materializes due templates for every registered user. One user's
// failure does not stop the others.
func sweep(ctx context.Context, kv storage.KV, recurring *services.RecurringService, logger *log.Logger) {
	keys, err := kv.Keys(ctx, store.AuthPrefix)
	if err != nil {
		logger.Error("Failed to enumerate users", "error", err)
		return
	}

	now := time.Now()
	total := 0
	for _, key := range keys {
		username := strings.TrimPrefix(key, store.AuthPrefix)
		if username == "" {
			continue
		}
		created, err := recurring.Run(ctx, username, now)
		if err != nil {
			logger.Error("Recurring run failed", "username", username, "error", err)
			continue
		}
		total += created
	}

	logger.Info("Sweep complete", "users", len(keys), "expenses_created", total)
}
