package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/mediabase-sub001/internal/domain"
)

// getTestDB returns a database connection for testing.
// Skip test if TEST_DATABASE_URL is not set.
func getTestDB(t *testing.T) *sql.DB {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS score_records (
			id UUID PRIMARY KEY,
			subject TEXT NOT NULL,
			use_case_scores JSONB NOT NULL,
			scoring_version TEXT NOT NULL,
			mean_confidence DOUBLE PRECISION NOT NULL,
			low_confidence BOOLEAN NOT NULL DEFAULT FALSE,
			scored_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec("DELETE FROM score_records")
	require.NoError(t, err)

	return db
}

func TestPostgresArchive_SaveAndGet(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	archive, err := NewPostgresArchive(db)
	require.NoError(t, err)

	ctx := context.Background()
	record := archivedRecord("BRAF", 38.0, time.Now())
	require.NoError(t, archive.Save(ctx, record))

	retrieved, err := archive.Get(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "BRAF", retrieved.Subject)
	assert.Equal(t, 38.0, retrieved.UseCaseScores[domain.THERAPEUTIC_TARGETING].OverallScore)
}

func TestPostgresArchive_Upsert(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	archive, err := NewPostgresArchive(db)
	require.NoError(t, err)

	ctx := context.Background()
	record := archivedRecord("EGFR", 20.0, time.Now())
	require.NoError(t, archive.Save(ctx, record))

	record.MeanConfidence = 0.9
	require.NoError(t, archive.Save(ctx, record))

	count, err := archive.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	retrieved, err := archive.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.9, retrieved.MeanConfidence)
}

func TestPostgresArchive_GetLatestAndDelete(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	archive, err := NewPostgresArchive(db)
	require.NoError(t, err)

	ctx := context.Background()
	older := archivedRecord("KRAS", 10.0, time.Now().Add(-time.Hour))
	newer := archivedRecord("KRAS", 15.0, time.Now())
	require.NoError(t, archive.Save(ctx, older))
	require.NoError(t, archive.Save(ctx, newer))

	latest, err := archive.GetLatest(ctx, "KRAS")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)

	require.NoError(t, archive.Delete(ctx, newer.ID))
	latest, err = archive.GetLatest(ctx, "KRAS")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, older.ID, latest.ID)
}
