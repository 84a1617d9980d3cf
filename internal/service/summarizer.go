package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
	"github.com/physician-notetaker/internal/nlp"
)

// statusTailTokens bounds current-status inference to the trailing portion
// of the transcript so that later statements override earlier ones.
const statusTailTokens = 150

// Summarizer aggregates recognized entities and raw transcript text into a
// medical fact summary. It holds no per-document state; every invocation
// derives fresh structures from its inputs.
type Summarizer struct {
	logger *logrus.Logger
}

// NewSummarizer creates a new fact aggregator.
func NewSummarizer(logger *logrus.Logger) *Summarizer {
	return &Summarizer{logger: logger}
}

// GenerateMedicalSummary merges entities into canonical clinical fields,
// extracts numeric and temporal qualifiers from the full text, and infers
// the patient's current status.
func (s *Summarizer) GenerateMedicalSummary(utterances []domain.Utterance, entities []domain.Entity, fullText string) domain.MedicalSummary {
	bucket := MergeEntities(entities)

	treatments := append([]string{}, bucket[domain.LabelTreatment]...)
	if count, ok := ExtractSessionCount(fullText); ok && hasPhysioTreatment(treatments) {
		phrase := fmt.Sprintf("%d physiotherapy sessions", count)
		if !containsString(treatments, phrase) {
			treatments = append(treatments, phrase)
		}
	}

	prognosis, _ := ExtractPrognosis(fullText, bucket)
	symptoms := DedupSymptoms(bucket[domain.LabelSymptom])
	if symptoms == nil {
		symptoms = []string{}
	}

	var diagnosis *string
	if first, ok := bucket.First(domain.LabelDiagnosis); ok {
		diagnosis = domain.StringPtr(capitalizeFirst(first))
	}

	summary := domain.MedicalSummary{
		PatientName:   extractPatientName(utterances),
		Symptoms:      symptoms,
		Diagnosis:     diagnosis,
		Treatment:     treatments,
		CurrentStatus: InferCurrentStatus(fullText, bucket),
		Prognosis:     prognosis,
	}

	s.logger.WithFields(logrus.Fields{
		"symptoms":   len(summary.Symptoms),
		"treatments": len(summary.Treatment),
		"entities":   len(entities),
	}).Debug("Medical summary generated")

	return summary
}

// MergeEntities groups entity text by label into a deduplicated set,
// applies SYMPTOM normalization via exact lowercase lookup, and returns
// each label's values sorted case-insensitively. Output is deterministic
// regardless of input order; unknown labels pass through unaffected.
func MergeEntities(entities []domain.Entity) domain.EntityBucket {
	raw := make(map[domain.EntityLabel]map[string]struct{})
	for _, e := range entities {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		if raw[e.Label] == nil {
			raw[e.Label] = make(map[string]struct{})
		}
		raw[e.Label][text] = struct{}{}
	}

	bucket := make(domain.EntityBucket, len(raw))
	for label, values := range raw {
		cleaned := make(map[string]struct{}, len(values))
		for v := range values {
			if label == domain.LabelSymptom {
				if norm, ok := nlp.SymptomNormalization[strings.ToLower(v)]; ok {
					v = norm
				}
			}
			cleaned[v] = struct{}{}
		}

		sorted := make([]string, 0, len(cleaned))
		for v := range cleaned {
			sorted = append(sorted, v)
		}
		sortCaseInsensitive(sorted)
		bucket[label] = sorted
	}

	return bucket
}

// ExtractSessionCount finds the first numeral or number word immediately
// preceding a physio-family token, optionally through "sessions of".
func ExtractSessionCount(text string) (int, bool) {
	m := nlp.SessionCountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseCount(m[1])
}

// ExtractPrognosis resolves the prognosis phrase from the PROGNOSIS bucket
// and the recovery window from the full text. When both are found and the
// base phrase lacks a window, the window is spliced in; when only a window
// is found, a full phrase is synthesized. The window value is returned for
// layered consumers and is zero when absent.
func ExtractPrognosis(text string, bucket domain.EntityBucket) (*string, int) {
	base := ""
	found := false
	for _, p := range bucket[domain.LabelPrognosis] {
		if strings.Contains(strings.ToLower(p), "full recovery") {
			base = p
			found = true
			break
		}
	}

	window := 0
	if m := nlp.PrognosisWindowPattern.FindStringSubmatch(text); m != nil {
		num := strings.ToLower(m[1])
		if n, ok := parseCount(num); ok {
			window = n
		}
		if found {
			if !strings.Contains(strings.ToLower(base), "within") {
				base = fmt.Sprintf("%s expected within %s months", capitalizeFirst(base), num)
			}
		} else {
			base = fmt.Sprintf("Full recovery expected within %s months", num)
			found = true
		}
	}

	if !found {
		return nil, window
	}
	return domain.StringPtr(capitalizeFirst(base)), window
}

// InferCurrentStatus derives a free-text status phrase from the trailing
// tokens of the full text, first match wins: residual-symptom pattern,
// improvement marker, full-recovery prognosis, then any symptom. The "last
// symptom" is the final element of the case-sorted bucket, a deterministic
// tie-break kept for output compatibility.
func InferCurrentStatus(fullText string, bucket domain.EntityBucket) *string {
	tokens := strings.Fields(strings.ToLower(fullText))
	if len(tokens) > statusTailTokens {
		tokens = tokens[len(tokens)-statusTailTokens:]
	}
	tail := strings.Join(tokens, " ")

	if m := nlp.ResidualStatusPattern.FindStringSubmatch(tail); m != nil {
		return domain.StringPtr(fmt.Sprintf("Occasional %s (improving)", m[2]))
	}

	if nlp.ContainsAny(tail, nlp.ImprovementMarkers) {
		if last, ok := bucket.LastSymptom(); ok {
			return domain.StringPtr("Improving; residual " + last)
		}
		return domain.StringPtr("Improving")
	}

	if first, ok := bucket.First(domain.LabelPrognosis); ok && strings.Contains(strings.ToLower(first), "full recovery") {
		return domain.StringPtr("Recovering; full recovery expected")
	}

	if last, ok := bucket.LastSymptom(); ok {
		return domain.StringPtr("Current issues: " + last)
	}

	return nil
}

// DedupSymptoms removes case-insensitive duplicates preserving the bucket's
// sort order, re-uppercasing the first character of each survivor.
func DedupSymptoms(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	var out []string
	for _, s := range symptoms {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, capitalizeFirst(s))
	}
	return out
}

// extractPatientName scans utterances for the "ms." + "jones" co-occurrence.
// This is a deliberately narrow heuristic kept from the source pipeline, not
// general name recognition.
func extractPatientName(utterances []domain.Utterance) *string {
	for _, u := range utterances {
		low := strings.ToLower(u.Text)
		if strings.Contains(low, "ms.") && strings.Contains(low, "jones") {
			return domain.StringPtr("Ms. Jones")
		}
	}
	return nil
}

func hasPhysioTreatment(treatments []string) bool {
	for _, t := range treatments {
		if strings.Contains(strings.ToLower(t), "physio") {
			return true
		}
	}
	return false
}

func parseCount(token string) (int, bool) {
	if n, err := strconv.Atoi(token); err == nil {
		return n, true
	}
	n, ok := nlp.NumberWords[strings.ToLower(token)]
	return n, ok
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortCaseInsensitive(list []string) {
	// Ties on the folded key fall back to the exact string so equal-fold
	// variants still order deterministically regardless of input order.
	sort.SliceStable(list, func(i, j int) bool {
		a, b := strings.ToLower(list[i]), strings.ToLower(list[j])
		if a != b {
			return a < b
		}
		return list[i] < list[j]
	})
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
