package nlp

import (
	"context"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
)

// RuleRecognizer is the in-process entity recognizer. It matches the fixed
// phrase table case-insensitively on word boundaries and resolves
// overlapping candidates in favor of the longer, then earlier, span. It
// satisfies the same contract as the remote model client, which makes it
// the default for CLI use and deterministic tests.
type RuleRecognizer struct {
	logger   *logrus.Logger
	compiled []compiledPattern
}

type compiledPattern struct {
	label domain.EntityLabel
	re    *regexp.Regexp
}

// NewRuleRecognizer creates a recognizer over the package's EntityPatterns
// table.
func NewRuleRecognizer(logger *logrus.Logger) *RuleRecognizer {
	return NewRuleRecognizerWithPatterns(logger, EntityPatterns)
}

// NewRuleRecognizerWithPatterns creates a recognizer over a custom pattern
// table. Patterns compile once at construction.
func NewRuleRecognizerWithPatterns(logger *logrus.Logger, patterns []PhrasePattern) *RuleRecognizer {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, compiledPattern{
			label: p.Label,
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.Phrase) + `\b`),
		})
	}
	return &RuleRecognizer{
		logger:   logger,
		compiled: compiled,
	}
}

// Recognize returns the non-overlapping entity spans found in text.
func (r *RuleRecognizer) Recognize(ctx context.Context, text string) ([]domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []domain.Entity
	for _, cp := range r.compiled {
		for _, loc := range cp.re.FindAllStringIndex(text, -1) {
			candidates = append(candidates, domain.Entity{
				Text:  text[loc[0]:loc[1]],
				Label: cp.label,
				Start: loc[0],
				End:   loc[1],
			})
		}
	}

	entities := resolveOverlaps(candidates)

	r.logger.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"entities":   len(entities),
	}).Debug("Rule recognizer completed")

	return entities, nil
}

// resolveOverlaps keeps the longest span among overlapping candidates,
// breaking remaining ties by start offset.
func resolveOverlaps(candidates []domain.Entity) []domain.Entity {
	sort.Slice(candidates, func(i, j int) bool {
		li := candidates[i].End - candidates[i].Start
		lj := candidates[j].End - candidates[j].Start
		if li != lj {
			return li > lj
		}
		return candidates[i].Start < candidates[j].Start
	})

	var kept []domain.Entity
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if c.Start < k.End && k.Start < c.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}
