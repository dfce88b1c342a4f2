package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"agendum/internal/config"
	"agendum/internal/dedup"
	"agendum/internal/janitor"
	"agendum/internal/schedule"
	"agendum/internal/server"
	"agendum/internal/store"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the schedule service",
	Long:  `Starts the HTTP service exposing schedule save and query endpoints, with a background janitor sweeping the dedup cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		lockTimeout, err := config.DurationOrDefault(cfg.Store.LockTimeout, config.DefaultStoreLockTimeout)
		if err != nil {
			return err
		}
		lockRetry, err := config.DurationOrDefault(cfg.Store.LockRetry, config.DefaultStoreLockRetry)
		if err != nil {
			return err
		}
		readTimeout, err := config.DurationOrDefault(cfg.Server.ReadTimeout, config.DefaultServerReadTimeout)
		if err != nil {
			return err
		}
		writeTimeout, err := config.DurationOrDefault(cfg.Server.WriteTimeout, config.DefaultServerWriteTimeout)
		if err != nil {
			return err
		}
		shutdownTimeout, err := config.DurationOrDefault(cfg.Server.ShutdownTimeout, config.DefaultServerShutdownTimeout)
		if err != nil {
			return err
		}
		ttl, err := config.DurationOrDefault(cfg.Dedup.TTL, config.DefaultDedupTTL)
		if err != nil {
			return err
		}

		lock, err := store.AcquireDataLock(filepath.Dir(cfg.Store.Path), store.DataLockConfig{
			Timeout:  lockTimeout,
			Retry:    lockRetry,
			MaxRetry: cfg.Store.LockMaxRetry,
		})
		if err != nil {
			return err
		}
		defer lock.Unlock()

		db, schedules, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		cache := dedup.NewCache(ttl)
		assembler := schedule.NewAssembler(schedules, cache, time.Now)
		queries := schedule.NewQueryService(schedules, time.Now)

		jan, err := janitor.New(cache, cfg.Janitor.Schedule)
		if err != nil {
			return err
		}

		httpServer := server.New(server.Options{
			Port:         cfg.Server.Port,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		}, assembler, queries, db)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		jan.Start(ctx)
		httpServer.Start()

		slog.Info("Agendum service started", "port", cfg.Server.Port, "dedup_ttl", ttl, "db", cfg.Store.Path)
		<-ctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		jan.Stop()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}

		slog.Info("Agendum service stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("server.port", config.DefaultServerPort, "listen port")
	serveCmd.Flags().String("dedup.ttl", config.DefaultDedupTTL, "dedup window, e.g. 90s")
	serveCmd.Flags().String("janitor.schedule", config.DefaultJanitorSchedule, "dedup sweep schedule (cron spec or @every descriptor)")
}
