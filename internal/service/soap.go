package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
	"github.com/physician-notetaker/internal/nlp"
)

// Fixed note text. The observation line is boilerplate pending a vitals
// source; the follow-up line is the standard discharge instruction.
const (
	observationsText = "Patient appears well, no acute distress."
	followUpText     = "Patient to return if pain worsens or persists beyond six months."
)

// examKeywords selects doctor utterances describing the physical exam.
var examKeywords = []string{"range of", "tenderness", "no signs", "movement", "muscles", "spine"}

// SoapComposer builds the four-section SOAP note from the medical summary
// and the speaker-partitioned utterances. It adds no new facts; every field
// is derived from its inputs or fixed boilerplate.
type SoapComposer struct {
	logger *logrus.Logger
}

// NewSoapComposer creates a SOAP note composer.
func NewSoapComposer(logger *logrus.Logger) *SoapComposer {
	return &SoapComposer{logger: logger}
}

// GenerateSoap composes the note. patient and doctor are the respective
// speaker partitions in transcript order.
func (c *SoapComposer) GenerateSoap(patient, doctor []domain.Utterance, summary domain.MedicalSummary) domain.SoapNote {
	note := domain.SoapNote{
		Subjective: buildSubjective(patient, summary),
		Objective:  buildObjective(doctor),
		Assessment: buildAssessment(summary),
		Plan:       buildPlan(summary),
	}

	c.logger.WithFields(logrus.Fields{
		"has_chief_complaint": note.Subjective.ChiefComplaint != nil,
		"has_physical_exam":   note.Objective.PhysicalExam != nil,
	}).Debug("SOAP note composed")

	return note
}

func buildSubjective(patient []domain.Utterance, summary domain.MedicalSummary) domain.SoapSubjective {
	return domain.SoapSubjective{
		ChiefComplaint:          deriveChiefComplaint(summary.Symptoms),
		HistoryOfPresentIllness: synthesizeHPI(patient, summary),
	}
}

func buildObjective(doctor []domain.Utterance) domain.SoapObjective {
	var examLines []string
	for _, u := range doctor {
		if nlp.ContainsAny(strings.ToLower(u.Text), examKeywords) {
			examLines = append(examLines, u.Text)
		}
	}

	obj := domain.SoapObjective{
		Observations: domain.StringPtr(observationsText),
	}
	if len(examLines) > 0 {
		obj.PhysicalExam = domain.StringPtr(strings.Join(examLines, " "))
	}
	return obj
}

func buildAssessment(summary domain.MedicalSummary) domain.SoapAssessment {
	return domain.SoapAssessment{
		Diagnosis: summary.Diagnosis,
		Severity:  inferSeverity(summary.CurrentStatus),
	}
}

func buildPlan(summary domain.MedicalSummary) domain.SoapPlan {
	plan := domain.SoapPlan{
		FollowUp: domain.StringPtr(followUpText),
	}
	if len(summary.Treatment) > 0 {
		plan.Treatment = domain.StringPtr(strings.Join(summary.Treatment, ", "))
	}
	return plan
}

// deriveChiefComplaint prefers a symptom that already names both regions,
// then synthesizes the combined phrase when neck and back appear separately,
// then falls back to the first symptom.
func deriveChiefComplaint(symptoms []string) *string {
	if len(symptoms) == 0 {
		return nil
	}

	var neck, back bool
	for _, s := range symptoms {
		low := strings.ToLower(s)
		hasNeck := strings.Contains(low, "neck")
		hasBack := strings.Contains(low, "back")
		if hasNeck && hasBack {
			return domain.StringPtr(s)
		}
		neck = neck || hasNeck
		back = back || hasBack
	}
	if neck && back {
		return domain.StringPtr("Neck and back pain")
	}
	return domain.StringPtr(symptoms[0])
}

// synthesizeHPI assembles the history from the accident mechanism, the
// leading symptoms, and the current status. When nothing matches, the raw
// patient text stands in so the section is never silently empty.
func synthesizeHPI(patient []domain.Utterance, summary domain.MedicalSummary) *string {
	text := JoinText(patient)

	var parts []string
	if nlp.RearCollisionPattern.MatchString(text) {
		parts = append(parts, "Patient had a car accident (rear-end collision).")
	}
	if len(summary.Symptoms) > 0 {
		leading := summary.Symptoms
		if len(leading) > 3 {
			leading = leading[:3]
		}
		parts = append(parts, "Initial symptoms: "+strings.Join(leading, ", ")+".")
	}
	if summary.CurrentStatus != nil {
		parts = append(parts, "Current: "+strings.TrimRight(*summary.CurrentStatus, ".")+".")
	}

	if len(parts) == 0 {
		if text == "" {
			return nil
		}
		return domain.StringPtr(text)
	}
	return domain.StringPtr(strings.Join(parts, " "))
}

// inferSeverity maps the current status phrase onto a coarse severity scale.
func inferSeverity(currentStatus *string) *string {
	if currentStatus == nil {
		return nil
	}
	low := strings.ToLower(*currentStatus)
	switch {
	case strings.Contains(low, "occasional"), strings.Contains(low, "intermittent"), strings.Contains(low, "mild"):
		return domain.StringPtr("Mild, improving")
	case strings.Contains(low, "improving"), strings.Contains(low, "recovering"):
		return domain.StringPtr("Improving")
	default:
		return domain.StringPtr("Undetermined")
	}
}
