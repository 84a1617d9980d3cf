// Package nlp holds the static lexicon and pattern configuration the
// pipeline heuristics consume, plus the in-process rule-based entity
// recognizer. All tables are read-only package data initialized once, so
// the consuming services stay pure and safe for concurrent use.
package nlp

import (
	"regexp"
	"strings"

	"github.com/physician-notetaker/internal/domain"
)

// PhrasePattern binds a surface phrase to its clinical label. Matching is
// case-insensitive on word boundaries; longer phrases win over shorter
// overlapping ones.
type PhrasePattern struct {
	Label  domain.EntityLabel
	Phrase string
}

// EntityPatterns is the fixed phrase table the rule recognizer matches
// against.
var EntityPatterns = []PhrasePattern{
	// Core symptom phrases
	{domain.LabelSymptom, "neck pain"},
	{domain.LabelSymptom, "back pain"},
	{domain.LabelSymptom, "neck and back pain"},
	{domain.LabelSymptom, "backache"},
	{domain.LabelSymptom, "backaches"},
	{domain.LabelSymptom, "trouble sleeping"},
	{domain.LabelSymptom, "sleep difficulty"},
	{domain.LabelSymptom, "sleep trouble"},
	{domain.LabelSymptom, "hit my head"},
	{domain.LabelSymptom, "head injury"},
	// Treatments
	{domain.LabelTreatment, "physiotherapy"},
	{domain.LabelTreatment, "physio"},
	{domain.LabelTreatment, "painkillers"},
	{domain.LabelTreatment, "analgesics"},
	// Diagnoses
	{domain.LabelDiagnosis, "whiplash injury"},
	{domain.LabelDiagnosis, "lumbar strain"},
	{domain.LabelDiagnosis, "cervical strain"},
	// Prognosis phrases
	{domain.LabelPrognosis, "full recovery"},
}

// SymptomNormalization maps known raw symptom phrases (lowercased) to their
// canonical display phrases. Lookup is exact; absent keys pass through
// unchanged.
var SymptomNormalization = map[string]string{
	"backaches":          "Back pain (intermittent)",
	"backache":           "Back Pain",
	"neck and back pain": "Neck and back pain",
	"trouble sleeping":   "Sleeping disturbance",
	"sleep difficulty":   "Sleeping disturbance",
	"sleep trouble":      "Sleep disturbance",
	"hit my head":        "Head impact",
	"head injury":        "Head impact",
}

// Lexicons for sentiment and status inference. Matching is substring-based
// over lowercased text.
var (
	AnxiousTerms       = []string{"worried", "concerned", "nervous", "anxious", "uneasy", "worry", "still", "discomfort"}
	ReassuredTerms     = []string{"relief", "relieved", "better", "improving", "improved", "great", "on track", "good to hear"}
	ImprovementMarkers = []string{"better", "improving", "improved", "nothing like before"}
	ResidualMarkers    = []string{"occasional", "intermittent", "still", "only", "mild"}
	ContrastMarkers    = []string{"but", "however", "though"}
)

// NumberWords resolves spelled-out counts used in session and recovery
// window extraction.
var NumberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12,
}

// Extraction patterns shared by the fact aggregator.
var (
	// SessionCountPattern captures a numeral or number word immediately
	// preceding a physio-family token, optionally through "sessions of".
	SessionCountPattern = regexp.MustCompile(`(?i)\b(\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\b\s+(?:sessions?\s+of\s+)?physio\w*`)

	// PrognosisWindowPattern captures the recovery window in months.
	PrognosisWindowPattern = regexp.MustCompile(`(?i)full recovery (?:expected )?(?:within|in)\s+(\w+)\s+months?`)

	// ResidualStatusPattern captures a residual-symptom mention with up to
	// twelve characters of filler between qualifier and symptom phrase. The
	// filler is lazy so the captured phrase keeps its leading words, e.g.
	// "occasional back pain" captures "back pain" rather than "pain".
	ResidualStatusPattern = regexp.MustCompile(`(occasional|intermittent|only)\s+(?:[a-z\- ]{0,12}?)?(back (?:pain|ache|aches)|neck pain|pain|discomfort|backache)`)

	// RearCollisionPattern detects the accident mechanism in patient text.
	RearCollisionPattern = regexp.MustCompile(`(?i)(rear.*?collision|car (?:hit|accident))`)
)

// IntentProbe binds an intent label to the pattern that detects it. Each
// probe contributes at most one label; probes run in declaration order so
// discovery order is deterministic.
type IntentProbe struct {
	Label   string
	Pattern *regexp.Regexp
}

// IntentProbes is the fixed probe battery evaluated against the target
// utterance. Patterns run on lowercased text.
var IntentProbes = []IntentProbe{
	{domain.IntentSeekingReassurance, regexp.MustCompile(`(worried|concerned|should i|do i need to|affecting me)`)},
	{domain.IntentReportingSymptoms, regexp.MustCompile(`(hurt|hurts|aching|ache|pain|stiffness|occasional|intermittent|still .* pain)`)},
	{domain.IntentDescribingEvent, regexp.MustCompile(`(hit me|rear|collision|accident|pushed my car)`)},
	{domain.IntentFunctionalImpact, regexp.MustCompile(`(week off|work|routine|activities)`)},
	{domain.IntentTreatmentResponse, regexp.MustCompile(`(physio|therapy|sessions?|painkillers|medication|analgesic)`)},
	{domain.IntentClarifyingPrognosis, regexp.MustCompile(`(full recovery|long[- ]term|future)`)},
	{domain.IntentDenyingSymptoms, regexp.MustCompile(`\bno\b.*(anxiety|issues|emotional|nervous)`)},
	{domain.IntentGratitudeClosing, regexp.MustCompile(`\b(thanks|thank you|appreciate|relief)\b`)},
}

// IntentPriority is the fixed global ranking applied to detected intents.
// The ranking is a total order compared at merge time; it never depends on
// container iteration order.
var IntentPriority = []string{
	domain.IntentSeekingReassurance,
	domain.IntentReportingSymptoms,
	domain.IntentExpressingConcern,
	domain.IntentFunctionalImpact,
	domain.IntentTreatmentResponse,
	domain.IntentDescribingEvent,
	domain.IntentClarifyingPrognosis,
	domain.IntentDenyingSymptoms,
	domain.IntentGratitudeClosing,
}

// intentRank is derived from IntentPriority for O(1) lookups.
var intentRank = func() map[string]int {
	m := make(map[string]int, len(IntentPriority))
	for i, label := range IntentPriority {
		m[label] = i
	}
	return m
}()

// IntentRank returns the priority rank for a label and whether the label is
// ranked at all.
func IntentRank(label string) (int, bool) {
	rank, ok := intentRank[label]
	return rank, ok
}

// ContainsAny reports whether lowercased text contains any of the terms.
func ContainsAny(low string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(low, term) {
			return true
		}
	}
	return false
}
