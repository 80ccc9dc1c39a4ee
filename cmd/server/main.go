// Command server runs the filedepot core as a long-lived process: it opens
// the metadata database, wires the configured storage drivers and schedules
// the trash retention sweep. The HTTP request layer is hosted separately and
// talks to the same database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"filedepot/internal/auth"
	"filedepot/internal/config"
	"filedepot/internal/logger"
	"filedepot/internal/repositories"
	"filedepot/internal/storage"
	"filedepot/internal/vfs"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	db, err := repositories.Connect(cfg)
	if err != nil {
		logger.Error("startup: %v", err)
		os.Exit(1)
	}

	settings := repositories.NewSettings(db)
	registry := storage.NewRegistry(settings, cfg.ActiveBackend)

	if cfg.S3.Bucket != "" {
		registry.Register(storage.BackendS3, storage.NewS3Driver(cfg.S3))
	}
	if cfg.WebDAV.URL != "" {
		registry.Register(storage.BackendWebDAV, storage.NewWebDAVDriver(cfg.WebDAV))
	}
	if cfg.Telegram.BotToken != "" {
		telegram, err := storage.NewTelegramDriver(cfg.Telegram)
		if err != nil {
			logger.Error("startup: telegram driver: %v", err)
			os.Exit(1)
		}
		registry.Register(storage.BackendTelegram, telegram)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := registry.Reload(ctx); err != nil {
		logger.Error("startup: backend selection: %v", err)
		os.Exit(1)
	}

	service := vfs.New(db, registry,
		vfs.WithRetention(time.Duration(cfg.RetentionDays)*24*time.Hour))
	sessions := auth.NewManager(db, cfg.JWTSecret, cfg.SessionTTL)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.SweepSchedule, func() {
		stats, err := service.RetentionSweep(ctx)
		if err != nil {
			logger.Error("retention sweep aborted: %v", err)
			return
		}
		if stats.Owners > 0 {
			logger.Info("retention sweep done: %d files, %d folders across %d users",
				stats.Files, stats.Folders, stats.Owners)
		}
	})
	if err != nil {
		logger.Error("startup: invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
		os.Exit(1)
	}
	_, err = scheduler.AddFunc("@daily", func() {
		if n, err := sessions.PruneExpired(ctx); err != nil {
			logger.Error("session prune failed: %v", err)
		} else if n > 0 {
			logger.Info("pruned %d expired sessions", n)
		}
	})
	if err != nil {
		logger.Error("startup: session prune schedule: %v", err)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("filedepot started, sweep schedule %q, retention %d days",
		cfg.SweepSchedule, cfg.RetentionDays)

	<-ctx.Done()
	cronCtx := scheduler.Stop()
	<-cronCtx.Done()
	logger.Info("filedepot stopped")
}
