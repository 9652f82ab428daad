package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// PostgresArchive implements the Archive interface using PostgreSQL.
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgresArchive creates a new PostgreSQL score archive. It expects
// the schema to already exist (created via migrations).
func NewPostgresArchive(db *sql.DB) (*PostgresArchive, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresArchive{db: db}, nil
}

// NewPostgresArchiveFromURL creates a PostgreSQL score archive from a
// connection URL.
func NewPostgresArchiveFromURL(databaseURL string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	archive, err := NewPostgresArchive(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return archive, nil
}

// Save stores or updates a score record.
func (s *PostgresArchive) Save(ctx context.Context, record *domain.ScoreRecord) error {
	scores, err := json.Marshal(record.UseCaseScores)
	if err != nil {
		return fmt.Errorf("encoding use case scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO score_records (
			id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			subject = EXCLUDED.subject,
			use_case_scores = EXCLUDED.use_case_scores,
			scoring_version = EXCLUDED.scoring_version,
			mean_confidence = EXCLUDED.mean_confidence,
			low_confidence = EXCLUDED.low_confidence,
			scored_at = EXCLUDED.scored_at
	`,
		record.ID,
		record.Subject,
		scores,
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
func (s *PostgresArchive) Get(ctx context.Context, id string) (*domain.ScoreRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		FROM score_records
		WHERE id = $1
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
func (s *PostgresArchive) GetLatest(ctx context.Context, subject string) (*domain.ScoreRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		FROM score_records
		WHERE subject = $1
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
func (s *PostgresArchive) List(ctx context.Context, limit, offset int) ([]*domain.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		FROM score_records
		ORDER BY scored_at DESC
		LIMIT $1 OFFSET $2
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
func (s *PostgresArchive) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM score_records").Scan(&count)
	return count, err
}

// Delete removes a record by ID.
func (s *PostgresArchive) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM score_records WHERE id = $1", id)
	return err
}

// ExportJSON exports all records to a JSON writer.
func (s *PostgresArchive) ExportJSON(ctx context.Context, writer io.Writer) error {
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
func (s *PostgresArchive) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
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
func (s *PostgresArchive) Close() error {
	return s.db.Close()
}
