// Package feedback provides clinician feedback storage for generated notes.
// It stores corrections and agreements per note section so systematic
// misfires in the heuristics can be reviewed later.
package feedback

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Section identifies the part of a generated note the feedback refers to.
type Section string

const (
	SectionMedicalSummary  Section = "medical_summary"
	SectionSentimentIntent Section = "sentiment_intent"
	SectionSubjective      Section = "soap_subjective"
	SectionObjective       Section = "soap_objective"
	SectionAssessment      Section = "soap_assessment"
	SectionPlan            Section = "soap_plan"
)

// IsValid reports whether the section is one of the known note parts.
func (s Section) IsValid() bool {
	switch s {
	case SectionMedicalSummary, SectionSentimentIntent,
		SectionSubjective, SectionObjective, SectionAssessment, SectionPlan:
		return true
	default:
		return false
	}
}

// Record represents a clinician's feedback on one section of a generated
// note. NoteHash is the transcript hash of the note the feedback targets.
type Record struct {
	ID            int64     `json:"id,omitempty"`
	NoteHash      string    `json:"note_hash"`
	Section       Section   `json:"section"`
	SuggestedText string    `json:"suggested_text"`            // System's output
	CorrectedText string    `json:"corrected_text,omitempty"`  // Clinician's rewrite
	UserAgreed    bool      `json:"user_agreed"`               // Did the clinician accept the suggestion?
	Notes         string    `json:"notes,omitempty"`           // Free-form remarks
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the fields required for storage.
func (r *Record) Validate() error {
	if r.NoteHash == "" {
		return fmt.Errorf("feedback validation: note_hash is required")
	}
	if !r.Section.IsValid() {
		return fmt.Errorf("feedback validation: unknown section %q", r.Section)
	}
	return nil
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates feedback. One entry is kept per
	// (note_hash, section) pair; saving again updates in place.
	Save(ctx context.Context, record *Record) error

	// Get retrieves the feedback for a note section, or nil when absent.
	Get(ctx context.Context, noteHash string, section Section) (*Record, error)

	// List returns feedback entries newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader, skipping entries
	// whose (note_hash, section) already exists.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Feedback   []*Record `json:"feedback"`
}
