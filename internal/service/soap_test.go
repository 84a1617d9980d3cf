package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physician-notetaker/internal/domain"
)

func TestSoapComposer_GenerateSoap(t *testing.T) {
	composer := NewSoapComposer(testLogger())

	t.Run("Full_Note", func(t *testing.T) {
		utterances := ParseTranscript(
			"Doctor: What happened?\n" +
				"Patient: A car hit me from behind. My neck and back have been sore.\n" +
				"Doctor: Let me check your range of motion. No signs of tenderness in the spine.\n" +
				"Patient: That's good.")
		patient, doctor := PartitionBySpeaker(utterances)

		summary := domain.MedicalSummary{
			Symptoms:      []string{"Back pain", "Neck pain"},
			Diagnosis:     domain.StringPtr("Whiplash injury"),
			Treatment:     []string{"physiotherapy", "10 physiotherapy sessions"},
			CurrentStatus: domain.StringPtr("Occasional back pain (improving)"),
		}

		note := composer.GenerateSoap(patient, doctor, summary)

		require.NotNil(t, note.Subjective.ChiefComplaint)
		assert.Equal(t, "Neck and back pain", *note.Subjective.ChiefComplaint)

		require.NotNil(t, note.Subjective.HistoryOfPresentIllness)
		assert.Equal(t,
			"Patient had a car accident (rear-end collision). "+
				"Initial symptoms: Back pain, Neck pain. "+
				"Current: Occasional back pain (improving).",
			*note.Subjective.HistoryOfPresentIllness)

		require.NotNil(t, note.Objective.PhysicalExam)
		assert.Equal(t, "Let me check your range of motion. No signs of tenderness in the spine.", *note.Objective.PhysicalExam)
		require.NotNil(t, note.Objective.Observations)
		assert.Equal(t, "Patient appears well, no acute distress.", *note.Objective.Observations)

		require.NotNil(t, note.Assessment.Diagnosis)
		assert.Equal(t, "Whiplash injury", *note.Assessment.Diagnosis)
		require.NotNil(t, note.Assessment.Severity)
		assert.Equal(t, "Mild, improving", *note.Assessment.Severity)

		require.NotNil(t, note.Plan.Treatment)
		assert.Equal(t, "physiotherapy, 10 physiotherapy sessions", *note.Plan.Treatment)
		require.NotNil(t, note.Plan.FollowUp)
		assert.Equal(t, "Patient to return if pain worsens or persists beyond six months.", *note.Plan.FollowUp)
	})

	t.Run("Empty_Inputs", func(t *testing.T) {
		note := composer.GenerateSoap(nil, nil, domain.MedicalSummary{})

		assert.Nil(t, note.Subjective.ChiefComplaint)
		assert.Nil(t, note.Subjective.HistoryOfPresentIllness)
		assert.Nil(t, note.Objective.PhysicalExam)
		assert.NotNil(t, note.Objective.Observations)
		assert.Nil(t, note.Assessment.Diagnosis)
		assert.Nil(t, note.Assessment.Severity)
		assert.Nil(t, note.Plan.Treatment)
		assert.NotNil(t, note.Plan.FollowUp)
	})
}

func TestDeriveChiefComplaint(t *testing.T) {
	t.Run("Joint_Mention_Preferred", func(t *testing.T) {
		got := deriveChiefComplaint([]string{"Headache", "Neck and back pain"})
		require.NotNil(t, got)
		assert.Equal(t, "Neck and back pain", *got)
	})

	t.Run("Synthesized_From_Separate_Mentions", func(t *testing.T) {
		got := deriveChiefComplaint([]string{"Neck pain", "Back pain"})
		require.NotNil(t, got)
		assert.Equal(t, "Neck and back pain", *got)
	})

	t.Run("First_Symptom_Fallback", func(t *testing.T) {
		got := deriveChiefComplaint([]string{"Headache", "Dizziness"})
		require.NotNil(t, got)
		assert.Equal(t, "Headache", *got)
	})

	t.Run("No_Symptoms", func(t *testing.T) {
		assert.Nil(t, deriveChiefComplaint(nil))
	})
}

func TestSynthesizeHPI(t *testing.T) {
	t.Run("Symptoms_Capped_At_Three", func(t *testing.T) {
		summary := domain.MedicalSummary{
			Symptoms: []string{"A", "B", "C", "D"},
		}
		got := synthesizeHPI(nil, summary)
		require.NotNil(t, got)
		assert.Equal(t, "Initial symptoms: A, B, C.", *got)
	})

	t.Run("Raw_Patient_Text_Fallback", func(t *testing.T) {
		patient := ParseTranscript("Patient: Everything feels normal.")
		got := synthesizeHPI(patient, domain.MedicalSummary{})
		require.NotNil(t, got)
		assert.Equal(t, "Everything feels normal.", *got)
	})

	t.Run("Nil_When_Nothing_Available", func(t *testing.T) {
		assert.Nil(t, synthesizeHPI(nil, domain.MedicalSummary{}))
	})
}

func TestInferSeverity(t *testing.T) {
	tests := []struct {
		name   string
		status *string
		want   *string
	}{
		{"Occasional_Is_Mild", domain.StringPtr("Occasional back pain (improving)"), domain.StringPtr("Mild, improving")},
		{"Intermittent_Is_Mild", domain.StringPtr("Intermittent discomfort"), domain.StringPtr("Mild, improving")},
		{"Improving", domain.StringPtr("Improving; residual Neck pain"), domain.StringPtr("Improving")},
		{"Recovering", domain.StringPtr("Recovering; full recovery expected"), domain.StringPtr("Improving")},
		{"Undetermined", domain.StringPtr("Current issues: Neck pain"), domain.StringPtr("Undetermined")},
		{"Nil_Status", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inferSeverity(tt.status)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
