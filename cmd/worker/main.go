// Package main is the entry point for the khata background worker.
// It relays queued sync outbox messages to the configured remote replica
// and purges published messages on a retention schedule.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"
	"time"

	"khata/internal/domain/sync"
	"khata/internal/infrastructure/storage/postgres"
	"khata/internal/infrastructure/storage/postgres/sync_repo"
	"khata/internal/infrastructure/syncclient"
	"khata/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting khata sync worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	outbox := postgres.NewSyncOutbox(txManager, pool)
	store := sync_repo.NewStore(txManager)

	relay := sync.NewRelay(outbox, store,
		func(baseURL string) sync.Client { return syncclient.New(baseURL) },
		sync.RelayConfig{
			RemoteURL:    mustEnv("SYNC_REMOTE_URL"),
			Owner:        mustEnv("SYNC_OWNER"),
			BatchSize:    getEnvInt("SYNC_BATCH_SIZE", 50),
			MaxRetries:   getEnvInt("SYNC_MAX_RETRIES", 5),
			PollInterval: getEnvDuration("SYNC_POLL_INTERVAL", 10*time.Second),
			RetryBackoff: getEnvDuration("SYNC_RETRY_BACKOFF", time.Minute),
		})

	var wg gosync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("sync relay stopped", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runOutboxCleanup(ctx, outbox, log)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// runOutboxCleanup purges published outbox rows older than the retention
// window once an hour.
func runOutboxCleanup(ctx context.Context, outbox *postgres.SyncOutbox, log *logger.Logger) {
	retention := getEnvDuration("SYNC_OUTBOX_RETENTION", 24*time.Hour)

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := outbox.PurgePublished(ctx, retention)
			if err != nil {
				log.Warnw("outbox purge failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Infow("purged published outbox messages", "count", removed)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
