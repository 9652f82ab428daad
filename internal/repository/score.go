// Package repository persists score records to PostgreSQL. Per-use-case
// composites are stored as JSONB so the schema survives weight table
// revisions.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// ScoreRepository handles score record persistence.
type ScoreRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *pgxpool.Pool, logger *logrus.Logger) *ScoreRepository {
	return &ScoreRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a score record.
func (r *ScoreRepository) Create(ctx context.Context, record *domain.ScoreRecord) error {
	scores, err := json.Marshal(record.UseCaseScores)
	if err != nil {
		return fmt.Errorf("marshaling use case scores: %w", err)
	}

	query := `
		INSERT INTO score_records (
			id, subject, use_case_scores, scoring_version,
			mean_confidence, low_confidence, scored_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.Subject,
		scores,
		record.ScoringVersion,
		record.MeanConfidence,
		record.LowConfidence,
		record.ScoredAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"record_id": record.ID,
			"subject":   record.Subject,
			"error":     err,
		}).Error("Failed to create score record")
		return fmt.Errorf("creating score record: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"record_id": record.ID,
		"subject":   record.Subject,
	}).Info("Score record created successfully")

	return nil
}

// GetByID retrieves a score record by its ID.
func (r *ScoreRepository) GetByID(ctx context.Context, id string) (*domain.ScoreRecord, error) {
	query := `
		SELECT id, subject, use_case_scores, scoring_version,
			   mean_confidence, low_confidence, scored_at
		FROM score_records
		WHERE id = $1`

	return r.scanRecord(r.db.QueryRow(ctx, query, id))
}

// GetLatestBySubject retrieves the most recent score record for a subject.
func (r *ScoreRepository) GetLatestBySubject(ctx context.Context, subject string) (*domain.ScoreRecord, error) {
	query := `
		SELECT id, subject, use_case_scores, scoring_version,
			   mean_confidence, low_confidence, scored_at
		FROM score_records
		WHERE subject = $1
		ORDER BY scored_at DESC
		LIMIT 1`

	return r.scanRecord(r.db.QueryRow(ctx, query, subject))
}

// ListBySubject retrieves all score records for a subject, newest first.
func (r *ScoreRepository) ListBySubject(ctx context.Context, subject string, limit int) ([]*domain.ScoreRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, subject, use_case_scores, scoring_version,
			   mean_confidence, low_confidence, scored_at
		FROM score_records
		WHERE subject = $1
		ORDER BY scored_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("listing score records: %w", err)
	}
	defer rows.Close()

	var records []*domain.ScoreRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// TopSubjects returns the highest-scoring subjects for one use case,
// ranked by the JSONB overall score of the latest record per subject.
func (r *ScoreRepository) TopSubjects(ctx context.Context, uc domain.UseCase, limit int) ([]*domain.ScoreRecord, error) {
	if !uc.IsValid() {
		return nil, fmt.Errorf("ranking subjects: %w", domain.ErrInvalidUseCase)
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT DISTINCT ON (subject)
			   id, subject, use_case_scores, scoring_version,
			   mean_confidence, low_confidence, scored_at
		FROM score_records
		ORDER BY subject, scored_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ranking subjects: %w", err)
	}
	defer rows.Close()

	var records []*domain.ScoreRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortByUseCase(records, uc)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes a score record.
func (r *ScoreRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM score_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting score record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("score record %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Count returns the total number of stored records.
func (r *ScoreRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM score_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting score records: %w", err)
	}
	return count, nil
}

// scanRecord scans one row into a ScoreRecord.
func (r *ScoreRepository) scanRecord(row pgx.Row) (*domain.ScoreRecord, error) {
	var record domain.ScoreRecord
	var scores []byte

	err := row.Scan(
		&record.ID,
		&record.Subject,
		&scores,
		&record.ScoringVersion,
		&record.MeanConfidence,
		&record.LowConfidence,
		&record.ScoredAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("score record not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning score record: %w", err)
	}

	if err := json.Unmarshal(scores, &record.UseCaseScores); err != nil {
		return nil, fmt.Errorf("unmarshaling use case scores: %w", err)
	}
	return &record, nil
}

// sortByUseCase orders records by one use case's overall score, highest
// first. Records missing that use case sink to the end.
func sortByUseCase(records []*domain.ScoreRecord, uc domain.UseCase) {
	score := func(record *domain.ScoreRecord) float64 {
		if composite, ok := record.UseCaseScores[uc]; ok && composite != nil {
			return composite.OverallScore
		}
		return -1
	}
	sort.SliceStable(records, func(i, j int) bool {
		return score(records[i]) > score(records[j])
	})
}
