package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"ghpool-go/internal/config"
	"ghpool-go/internal/github"
	"ghpool-go/internal/logging"
	"ghpool-go/internal/monitoring/tracing"
	"ghpool-go/internal/server"
	"ghpool-go/internal/usage"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if *debug {
		cfg.Debug = true
	}

	if err := logging.Setup(logging.Options{Debug: cfg.Debug, LogFile: cfg.LogFile}); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	traceShutdown, err := tracing.Init(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	defer func() {
		if err := traceShutdown(context.Background()); err != nil {
			log.WithError(err).Warn("failed to shutdown tracing")
		}
	}()

	storage, err := buildUsageStorage(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize usage storage")
	}

	tracker := usage.NewTracker(storage, time.Duration(cfg.UsagePersistIntervalSec)*time.Second)
	if err := tracker.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start usage tracker")
	}

	client, err := github.FromConfig(cfg, tracker)
	if err != nil {
		log.WithError(err).Fatal("failed to build client")
	}

	watcher, err := config.NewWatcher(*configPath, func(next *config.Config) {
		client.SetRotationThreshold(next.RotationThreshold)
		if err := logging.Setup(logging.Options{Debug: next.Debug, LogFile: next.LogFile}); err != nil {
			log.WithError(err).Warn("failed to reapply logging configuration")
		}
	})
	if err != nil {
		log.WithError(err).Warn("config watcher unavailable, hot reload disabled")
	} else {
		defer func() { _ = watcher.Close() }()
	}

	log.WithFields(log.Fields{
		"pool_size":          client.Ring().Len(),
		"rotation_threshold": cfg.RotationThreshold,
		"max_retries":        cfg.MaxRetries,
	}).Info("starting ghpool server")

	srv := server.New(cfg, client, tracker)
	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Error("server exited with error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tracker.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("usage tracker shutdown failed")
	}
	_ = storage.Close()
}

func buildUsageStorage(ctx context.Context, cfg *config.Config) (usage.Storage, error) {
	switch cfg.UsageStorage {
	case "file":
		return usage.NewFileStorage(cfg.UsageFile), nil
	case "redis":
		return usage.NewRedisStorage(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	default:
		return usage.NopStorage{}, nil
	}
}
