// Package main provides the standalone scoring CLI. It reads evidence
// bundles from a JSON file (or stdin), scores them concurrently and
// writes the resulting records to stdout, optionally archiving them in a
// local SQLite database. No external services are required.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/itsatony/mediabase-sub001/internal/batch"
	"github.com/itsatony/mediabase-sub001/internal/config"
	"github.com/itsatony/mediabase-sub001/internal/domain"
	"github.com/itsatony/mediabase-sub001/internal/scoring"
	"github.com/itsatony/mediabase-sub001/internal/store"
)

func main() {
	input := flag.String("input", "-", "path to a JSON file with one bundle or an array of bundles, '-' for stdin")
	workers := flag.Int("workers", 0, "concurrent scoring workers (default from MEDIABASE_WORKERS)")
	archive := flag.Bool("archive", false, "save records to the local SQLite archive")
	export := flag.String("export", "", "export the full archive to this file and exit")
	pretty := flag.Bool("pretty", false, "indent JSON output")
	flag.Parse()

	cfg := config.LoadLiteConfig()
	if *workers > 0 {
		cfg.Workers = *workers
	}

	logger := config.NewLogger(domain.LoggingConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	logger.SetOutput(os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *export != "" {
		if err := exportArchive(ctx, cfg, *export); err != nil {
			logger.WithError(err).Fatal("Export failed")
		}
		return
	}

	bundles, err := readBundles(*input)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read evidence bundles")
	}
	if len(bundles) == 0 {
		logger.Fatal("No evidence bundles in input")
	}

	engine, err := scoring.NewEngine(logger, scoring.Options{
		MinConfidenceThreshold: cfg.MinConfidenceThreshold,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize scoring engine")
	}

	runner, err := batch.NewRunner(engine, nil, cfg.Workers, cfg.CacheMaxItems, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize batch runner")
	}

	result, err := runner.ScoreBundles(ctx, bundles)
	if err != nil {
		logger.WithError(err).Fatal("Batch scoring failed")
	}

	for subject, subjectErr := range result.Errors {
		logger.WithError(subjectErr).WithField("subject", subject).Warn("Subject failed to score")
	}

	if *archive {
		if err := archiveRecords(ctx, cfg, result.Records); err != nil {
			logger.WithError(err).Fatal("Failed to archive records")
		}
		logger.WithField("records", len(result.Records)).Info("Records archived")
	}

	sort.Slice(result.Records, func(i, j int) bool {
		return result.Records[i].Subject < result.Records[j].Subject
	})

	encoder := json.NewEncoder(os.Stdout)
	if *pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(result.Records); err != nil {
		logger.WithError(err).Fatal("Failed to write records")
	}

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

// readBundles parses the input as either a single bundle object or an
// array of bundles.
func readBundles(path string) ([]*domain.EvidenceBundle, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		defer file.Close()
		reader = file
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	var bundles []*domain.EvidenceBundle
	if err := json.Unmarshal(data, &bundles); err == nil {
		return bundles, nil
	}

	var single domain.EvidenceBundle
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	return []*domain.EvidenceBundle{&single}, nil
}

// archiveRecords saves records to the local SQLite archive.
func archiveRecords(ctx context.Context, cfg *config.LiteConfig, records []*domain.ScoreRecord) error {
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	archive, err := store.NewSQLiteArchive(cfg.ArchiveDBPath())
	if err != nil {
		return err
	}
	defer archive.Close()

	for _, record := range records {
		if err := archive.Save(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// exportArchive writes the full archive as JSON to a file.
func exportArchive(ctx context.Context, cfg *config.LiteConfig, path string) error {
	archive, err := store.NewSQLiteArchive(cfg.ArchiveDBPath())
	if err != nil {
		return err
	}
	defer archive.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer file.Close()

	return archive.ExportJSON(ctx, file)
}
