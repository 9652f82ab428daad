// Package store provides local archival of score records. The CLI writes
// to a SQLite archive; server deployments can point the same interface at
// PostgreSQL instead.
package store

import (
	"context"
	"io"
	"time"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// Archive defines the interface for score record archival.
type Archive interface {
	// Save stores a score record. Re-saving the same record ID updates
	// it in place.
	Save(ctx context.Context, record *domain.ScoreRecord) error

	// Get retrieves a record by ID. Returns (nil, nil) when absent.
	Get(ctx context.Context, id string) (*domain.ScoreRecord, error)

	// GetLatest retrieves the newest record for a subject. Returns
	// (nil, nil) when the subject has never been scored.
	GetLatest(ctx context.Context, subject string) (*domain.ScoreRecord, error)

	// List returns records with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.ScoreRecord, error)

	// Count returns the total number of archived records.
	Count(ctx context.Context) (int64, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error

	// ExportJSON exports all records to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports records from a JSON reader. Records whose ID is
	// already archived are skipped.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the archive and releases resources.
	Close() error
}

// ArchiveExport represents the JSON export format.
type ArchiveExport struct {
	Version    string                `json:"version"`
	ExportedAt time.Time             `json:"exported_at"`
	Count      int                   `json:"count"`
	Records    []*domain.ScoreRecord `json:"records"`
}
