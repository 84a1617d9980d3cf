// Package domain contains the core entities and types for transcript
// processing: utterances, recognized clinical entities, and the structured
// artifacts (medical summary, sentiment/intent, SOAP note) derived from them.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// EntityLabel represents the clinical category assigned to a recognized span.
type EntityLabel string

const (
	LabelSymptom   EntityLabel = "SYMPTOM"
	LabelTreatment EntityLabel = "TREATMENT"
	LabelDiagnosis EntityLabel = "DIAGNOSIS"
	LabelPrognosis EntityLabel = "PROGNOSIS"
)

// Sentiment represents the patient sentiment classification.
type Sentiment string

const (
	SentimentAnxious   Sentiment = "Anxious"
	SentimentReassured Sentiment = "Reassured"
	SentimentNeutral   Sentiment = "Neutral"
)

// Polarity labels expected from the external polarity classifier.
// Matching is exact and case-sensitive; any other value degrades to Neutral.
const (
	PolarityPositive = "POSITIVE"
	PolarityNegative = "NEGATIVE"
)

// Intent labels produced by the intent detector. IntentPriority in the nlp
// package defines their global ranking.
const (
	IntentSeekingReassurance  = "Seeking reassurance"
	IntentReportingSymptoms   = "Reporting symptoms"
	IntentExpressingConcern   = "Expressing concern"
	IntentFunctionalImpact    = "Functional impact"
	IntentTreatmentResponse   = "Treatment response"
	IntentDescribingEvent     = "Describing event"
	IntentClarifyingPrognosis = "Clarifying prognosis"
	IntentDenyingSymptoms     = "Denying symptoms"
	IntentGratitudeClosing    = "Gratitude / Closing"
)

// Sentinel errors. ErrCollaborator marks failures of the external model
// collaborators (entity recognizer, polarity classifier) so callers can map
// them separately from internal faults.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidLabel = errors.New("invalid entity label")
	ErrCollaborator = errors.New("collaborator failure")
)

// IsValid reports whether the label is one of the recognized clinical
// categories. Unknown labels are still carried through entity merging but
// are rejected at the API boundary.
func (l EntityLabel) IsValid() bool {
	switch l {
	case LabelSymptom, LabelTreatment, LabelDiagnosis, LabelPrognosis:
		return true
	default:
		return false
	}
}

// String returns the string representation of the label.
func (l EntityLabel) String() string {
	return string(l)
}

// IsValid reports whether the sentiment is a known classification.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentAnxious, SentimentReassured, SentimentNeutral:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sentiment.
func (s Sentiment) String() string {
	return string(s)
}

// Utterance is a single speaker turn from a transcript. Immutable once
// parsed; ID reflects transcript order starting at 1.
type Utterance struct {
	ID      int    `json:"id"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// IsPatient reports whether the utterance was spoken by the patient.
// Speaker values are free-form role strings; membership is substring-based.
func (u Utterance) IsPatient() bool {
	return strings.Contains(strings.ToLower(u.Speaker), "patient")
}

// IsDoctor reports whether the utterance was spoken by the doctor or
// physician. Any other role is treated as neither.
func (u Utterance) IsDoctor() bool {
	low := strings.ToLower(u.Speaker)
	return strings.Contains(low, "doctor") || strings.Contains(low, "physician")
}

// Entity is a recognized span of text tagged with a clinical category.
// Start and End are character offsets into the recognized text.
type Entity struct {
	Text  string      `json:"text"`
	Label EntityLabel `json:"label"`
	Start int         `json:"start"`
	End   int         `json:"end"`
}

// Validate ensures the entity carries the data the aggregation pipeline
// depends on.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.Text) == "" {
		return fmt.Errorf("entity validation: %w", errors.New("text is required"))
	}
	if !e.Label.IsValid() {
		return fmt.Errorf("entity validation: %w", ErrInvalidLabel)
	}
	if e.End < e.Start {
		return fmt.Errorf("entity validation: %w", errors.New("end offset precedes start"))
	}
	return nil
}

// EntityBucket maps each label to a deduplicated, case-insensitively sorted
// set of normalized entity strings. Built fresh per document and never
// mutated afterwards.
type EntityBucket map[EntityLabel][]string

// Symptoms returns the SYMPTOM values, or nil when none were recognized.
func (b EntityBucket) Symptoms() []string { return b[LabelSymptom] }

// LastSymptom returns the final element of the case-sorted symptom list.
// This is a deterministic tie-break inherited from the sort order, not a
// clinical salience judgment.
func (b EntityBucket) LastSymptom() (string, bool) {
	syms := b[LabelSymptom]
	if len(syms) == 0 {
		return "", false
	}
	return syms[len(syms)-1], true
}

// First returns the first value for the label, or false when the bucket has
// none.
func (b EntityBucket) First(label EntityLabel) (string, bool) {
	vals := b[label]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
