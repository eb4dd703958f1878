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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kharcha/internal/auth"
	"kharcha/internal/backend"
	"kharcha/internal/cache"
	"kharcha/internal/config"
	"kharcha/internal/events"
	apphttp "kharcha/internal/http"
	"kharcha/internal/log"
	"kharcha/internal/services"
	"kharcha/internal/sheets"
	"kharcha/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(slog.LevelInfo, "kharcha")
	log.SetDefault(logger)

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
	logger.Info("Storage backend initialized", "backend", cfg.Backend)

	// Change notification is optional; without AMQP the store still works,
	// other processes just don't hear about writes.
	var notifier *events.AMQPNotifier
	if cfg.AMQPURL != "" {
		notifier, err = events.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, continuing without change events", "error", err)
			notifier = nil
		} else {
			defer notifier.Close()
			logger.Info("AMQP notifier initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled, change events are local only")
	}

	readCache := cache.NewLRU[string](cfg.CacheSize, cfg.CacheTTL)

	// Without a broker, change events still reach in-process subscribers.
	var eventSink events.Notifier = events.NewBus()
	if notifier != nil {
		eventSink = notifier
	}
	userStore := store.New(kv, readCache, eventSink, logger.WithComponent("store"))
	authSvc := auth.New(kv, userStore, eventSink, logger.WithComponent("auth"))
	recurring := services.NewRecurringService(userStore, logger.WithComponent("recurring"))
	budgets := services.NewBudgetService(userStore, kv, logger.WithComponent("budgets"))

	// Sheets export sink is optional too.
	var exporter *sheets.Exporter
	if cfg.SheetsSpreadsheetID != "" {
		exporter, err = sheets.NewFromEnv(context.Background(), cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
		if err != nil {
			logger.Warn("Failed to initialize Sheets exporter, export endpoint disabled", "error", err)
			exporter = nil
		} else {
			logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.SheetsSpreadsheetID)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, authSvc, userStore, recurring, budgets, exporter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting kharcha server", "port", cfg.Port, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Other processes write through the same storage medium; drop our cached
	// copy of a user record when one of them announces a change.
	if notifier != nil {
		g.Go(func() error {
			err := notifier.Consume(ctx, func(e events.Event) {
				if e.Kind == events.KindUserDataChanged && e.Username != "" {
					userStore.Invalidate(e.Username)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
