// Package main starts the evidence scoring HTTP server. It needs
// PostgreSQL for score persistence; Redis is optional and only speeds up
// repeated evidence fetches.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/api"
	"github.com/itsatony/mediabase-sub001/internal/batch"
	"github.com/itsatony/mediabase-sub001/internal/config"
	"github.com/itsatony/mediabase-sub001/internal/database"
	"github.com/itsatony/mediabase-sub001/internal/repository"
	"github.com/itsatony/mediabase-sub001/internal/scoring"
	"github.com/itsatony/mediabase-sub001/pkg/evidence"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(cfg.Logging)

	engine, err := scoring.NewEngine(logger, scoring.Options{
		CapOverrides:           cfg.Scoring.MaxScores,
		MinConfidenceThreshold: cfg.Scoring.MinConfidenceThreshold,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize scoring engine")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repo := repository.NewScoreRepository(db.Pool, logger)

	client := evidence.NewClient(evidence.ClientConfig{
		BaseURL:      cfg.Evidence.BaseURL,
		APIKey:       cfg.Evidence.APIKey,
		Timeout:      cfg.Evidence.Timeout,
		RateLimit:    cfg.Evidence.RateLimit,
		RetryCount:   cfg.Evidence.RetryCount,
		HalfLifeDays: cfg.Scoring.EvidenceHalfLifeDays,
		CacheDir:     cfg.Scoring.CacheDir,
	}, logger)

	var provider batch.BundleProvider = client
	cached, err := evidence.NewCachedProvider(client, cfg.Cache, logger)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, evidence caching disabled")
	} else {
		defer cached.Close()
		provider = cached
	}

	runner, err := batch.NewRunner(engine, provider, cfg.Batch.Workers, cfg.Batch.CacheSize, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize batch runner")
	}

	server := api.NewServer(cfg, engine, runner, repo, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting evidence scoring server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
