// Package repository persists processed transcripts in PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
)

// NoteRepository handles note archive persistence. The structured result is
// stored as JSONB so the archive survives additions to the result shape.
type NoteRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewNoteRepository creates a new note repository.
func NewNoteRepository(db *pgxpool.Pool, logger *logrus.Logger) *NoteRepository {
	return &NoteRepository{
		db:  db,
		log: logger,
	}
}

// Save inserts a processed note.
func (r *NoteRepository) Save(ctx context.Context, record *domain.NoteRecord) error {
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshaling note result: %w", err)
	}

	query := `
		INSERT INTO notes (id, transcript_hash, transcript, result, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.TranscriptHash,
		record.Transcript,
		result,
		record.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"note_id": record.ID,
			"error":   err,
		}).Error("Failed to save note")
		return fmt.Errorf("saving note: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"note_id":         record.ID,
		"transcript_hash": record.TranscriptHash[:12],
	}).Info("Note saved")

	return nil
}

// GetByID retrieves a note by its ID.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.NoteRecord, error) {
	query := `
		SELECT id, transcript_hash, transcript, result, created_at
		FROM notes
		WHERE id = $1`

	return r.scanNote(r.db.QueryRow(ctx, query, id))
}

// GetByHash retrieves a note by its transcript hash.
func (r *NoteRepository) GetByHash(ctx context.Context, transcriptHash string) (*domain.NoteRecord, error) {
	query := `
		SELECT id, transcript_hash, transcript, result, created_at
		FROM notes
		WHERE transcript_hash = $1`

	return r.scanNote(r.db.QueryRow(ctx, query, transcriptHash))
}

// List returns notes newest first with pagination.
func (r *NoteRepository) List(ctx context.Context, limit, offset int) ([]*domain.NoteRecord, error) {
	query := `
		SELECT id, transcript_hash, transcript, result, created_at
		FROM notes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var records []*domain.NoteRecord
	for rows.Next() {
		record, err := r.scanNote(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a note by ID.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM notes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("note not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *NoteRepository) scanNote(row pgx.Row) (*domain.NoteRecord, error) {
	var record domain.NoteRecord
	var result []byte

	err := row.Scan(
		&record.ID,
		&record.TranscriptHash,
		&record.Transcript,
		&result,
		&record.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("note not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}

	if err := json.Unmarshal(result, &record.Result); err != nil {
		return nil, fmt.Errorf("unmarshaling note result: %w", err)
	}
	return &record, nil
}
