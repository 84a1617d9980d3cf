// Package service implements the transcript processing pipeline: utterance
// parsing, clinical fact aggregation, sentiment/intent classification, and
// SOAP note composition.
package service

import (
	"regexp"
	"strings"

	"github.com/physician-notetaker/internal/domain"
)

// speakerPattern matches the speaker tag at the start of a transcript line.
var speakerPattern = regexp.MustCompile(`(?i)^(Doctor|Physician|Patient|Dr\.?|Pt\.?):\s*`)

// speakerAliases normalizes abbreviated speaker tags to their full role.
var speakerAliases = map[string]string{
	"dr":  "doctor",
	"dr.": "doctor",
	"pt":  "patient",
	"pt.": "patient",
}

// ParseTranscript splits raw transcript text into speaker-tagged utterances
// in transcript order. Lines without a speaker tag continue the previous
// utterance; leading untagged lines are dropped. IDs are sequential from 1.
func ParseTranscript(raw string) []domain.Utterance {
	var utterances []domain.Utterance
	id := 0

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := speakerPattern.FindStringSubmatch(line)
		if m == nil {
			if len(utterances) > 0 {
				utterances[len(utterances)-1].Text += " " + line
			}
			continue
		}

		speaker := strings.ToLower(m[1])
		if alias, ok := speakerAliases[speaker]; ok {
			speaker = alias
		}

		id++
		utterances = append(utterances, domain.Utterance{
			ID:      id,
			Speaker: speaker,
			Text:    strings.TrimSpace(speakerPattern.ReplaceAllString(line, "")),
		})
	}

	return utterances
}

// PartitionBySpeaker splits utterances into patient and doctor/physician
// lines, preserving transcript order. Utterances with any other role are
// excluded from both.
func PartitionBySpeaker(utterances []domain.Utterance) (patient, doctor []domain.Utterance) {
	for _, u := range utterances {
		switch {
		case u.IsPatient():
			patient = append(patient, u)
		case u.IsDoctor():
			doctor = append(doctor, u)
		}
	}
	return patient, doctor
}

// JoinText concatenates utterance text in transcript order, separated by
// single spaces. This is the full text the extraction heuristics run over.
func JoinText(utterances []domain.Utterance) string {
	parts := make([]string, 0, len(utterances))
	for _, u := range utterances {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}
