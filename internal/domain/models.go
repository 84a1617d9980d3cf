package domain

import (
	"time"
)

// MedicalSummary is the aggregated clinical fact summary for one transcript.
// Optional fields serialize as JSON null rather than being omitted so that
// downstream consumers can rely on a stable shape.
type MedicalSummary struct {
	PatientName   *string  `json:"Patient_Name"`
	Symptoms      []string `json:"Symptoms"`
	Diagnosis     *string  `json:"Diagnosis"`
	Treatment     []string `json:"Treatment"`
	CurrentStatus *string  `json:"Current_Status"`
	Prognosis     *string  `json:"Prognosis"`
}

// SentimentIntentResult is the sentiment/intent judgment for one transcript,
// derived from exactly one target patient utterance.
type SentimentIntentResult struct {
	Sentiment *string `json:"Sentiment"`
	Intent    *string `json:"Intent"`
}

// SoapSubjective holds the patient-reported portion of a SOAP note.
type SoapSubjective struct {
	ChiefComplaint          *string `json:"Chief_Complaint"`
	HistoryOfPresentIllness *string `json:"History_of_Present_Illness"`
}

// SoapObjective holds the clinician-observed portion of a SOAP note.
type SoapObjective struct {
	PhysicalExam *string `json:"Physical_Exam"`
	Observations *string `json:"Observations"`
}

// SoapAssessment holds the diagnostic portion of a SOAP note.
type SoapAssessment struct {
	Diagnosis *string `json:"Diagnosis"`
	Severity  *string `json:"Severity"`
}

// SoapPlan holds the treatment plan portion of a SOAP note.
type SoapPlan struct {
	Treatment *string `json:"Treatment"`
	FollowUp  *string `json:"Follow_Up"`
}

// SoapNote is the standard four-section clinical note, composed purely from
// the medical summary and the speaker-partitioned utterances.
type SoapNote struct {
	Subjective SoapSubjective `json:"Subjective"`
	Objective  SoapObjective  `json:"Objective"`
	Assessment SoapAssessment `json:"Assessment"`
	Plan       SoapPlan       `json:"Plan"`
}

// TranscriptResult is the combined output of the processing pipeline.
type TranscriptResult struct {
	MedicalSummary  MedicalSummary        `json:"medical_summary"`
	SentimentIntent SentimentIntentResult `json:"sentiment_intent"`
	SoapNote        SoapNote              `json:"soap_note"`
}

// NoteRecord is a persisted processing result. TranscriptHash is the SHA-256
// hex digest of the raw transcript and doubles as the cache key.
type NoteRecord struct {
	ID             string           `json:"id"`
	TranscriptHash string           `json:"transcript_hash"`
	Transcript     string           `json:"transcript"`
	Result         TranscriptResult `json:"result"`
	CreatedAt      time.Time        `json:"created_at"`
}

// StringPtr returns a pointer to s. Helper for the optional summary fields.
func StringPtr(s string) *string {
	return &s
}
