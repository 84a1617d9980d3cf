package feedback

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		CREATE TABLE IF NOT EXISTS note_feedback (
			id BIGSERIAL PRIMARY KEY,
			note_hash TEXT NOT NULL,
			section TEXT NOT NULL,
			suggested_text TEXT DEFAULT '',
			corrected_text TEXT DEFAULT '',
			user_agreed BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			CONSTRAINT note_feedback_note_hash_section_unique UNIQUE (note_hash, section)
		)
	`)
	require.NoError(t, err)

	// Clean up before test
	_, err = db.Exec("DELETE FROM note_feedback")
	require.NoError(t, err)

	return db
}

func TestPostgresStore_Save(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	record := sampleRecord()

	err = store.Save(ctx, record)
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.NotZero(t, record.CreatedAt)
	assert.NotZero(t, record.UpdatedAt)
}

func TestPostgresStore_SaveUpdate(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	record := sampleRecord()
	require.NoError(t, store.Save(ctx, record))
	firstID := record.ID

	record.CorrectedText = "Severe"
	require.NoError(t, store.Save(ctx, record))
	assert.Equal(t, firstID, record.ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgresStore_GetAndList(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	record := sampleRecord()
	require.NoError(t, store.Save(ctx, record))

	got, err := store.Get(ctx, record.NoteHash, record.Section)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.SuggestedText, got.SuggestedText)

	missing, err := store.Get(ctx, "missing", SectionPlan)
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPostgresStore_Delete(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	record := sampleRecord()
	require.NoError(t, store.Save(ctx, record))

	require.NoError(t, store.Delete(ctx, record.ID))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewPostgresStore_NilConnection(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}
