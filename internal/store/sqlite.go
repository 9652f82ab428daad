package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// SQLiteArchive implements the Archive interface using SQLite.
type SQLiteArchive struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteArchive creates a new SQLite score archive. It creates the
// database file and schema if they don't exist.
func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteArchive{db: db, dbPath: dbPath}, nil
}

// scanner is an interface covering sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row into a ScoreRecord, decoding the composites
// from their JSON column.
func scanRecord(s scanner) (*domain.ScoreRecord, error) {
	record := &domain.ScoreRecord{}
	var scores []byte

	err := s.Scan(
		&record.ID, &record.Subject, &scores, &record.ScoringVersion,
		&record.MeanConfidence, &record.LowConfidence, &record.ScoredAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(scores, &record.UseCaseScores); err != nil {
		return nil, fmt.Errorf("decoding use case scores: %w", err)
	}
	return record, nil
}

// createSchema creates the archive table and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS score_records (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		use_case_scores TEXT NOT NULL,
		scoring_version TEXT NOT NULL,
		mean_confidence REAL NOT NULL,
		low_confidence INTEGER NOT NULL DEFAULT 0,
		scored_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_score_records_subject ON score_records(subject);
	CREATE INDEX IF NOT EXISTS idx_score_records_scored_at ON score_records(scored_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores or updates a score record.
func (s *SQLiteArchive) Save(ctx context.Context, record *domain.ScoreRecord) error {
	scores, err := json.Marshal(record.UseCaseScores)
	if err != nil {
		return fmt.Errorf("encoding use case scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO score_records (
			id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			use_case_scores = excluded.use_case_scores,
			scoring_version = excluded.scoring_version,
			mean_confidence = excluded.mean_confidence,
			low_confidence = excluded.low_confidence,
			scored_at = excluded.scored_at
	`,
		record.ID,
		record.Subject,
		string(scores),
		record.ScoringVersion,
		record.MeanConfidence,
		record.LowConfidence,
		record.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *SQLiteArchive) Get(ctx context.Context, id string) (*domain.ScoreRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		FROM score_records
		WHERE id = ?
		LIMIT 1
	`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return record, nil
}

// GetLatest retrieves the newest record for a subject.
func (s *SQLiteArchive) GetLatest(ctx context.Context, subject string) (*domain.ScoreRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		FROM score_records
		WHERE subject = ?
		ORDER BY scored_at DESC
		LIMIT 1
	`, subject)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return record, nil
}

// List returns records with pagination, newest first.
func (s *SQLiteArchive) List(ctx context.Context, limit, offset int) ([]*domain.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		FROM score_records
		ORDER BY scored_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*domain.ScoreRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

// Count returns the total number of archived records.
func (s *SQLiteArchive) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM score_records").Scan(&count)
	return count, err
}

// Delete removes a record by ID.
func (s *SQLiteArchive) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM score_records WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of records to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all records to a JSON writer.
func (s *SQLiteArchive) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	export := &ArchiveExport{
		Version:    domain.ScoringVersion,
		ExportedAt: time.Now(),
		Count:      len(all),
		Records:    all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports records from a JSON reader.
func (s *SQLiteArchive) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export ArchiveExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, record := range export.Records {
		existing, err := s.Get(ctx, record.ID)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		if err := s.Save(ctx, record); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the archive and releases resources.
func (s *SQLiteArchive) Close() error {
	return s.db.Close()
}
