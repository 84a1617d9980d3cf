package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
	"github.com/physician-notetaker/internal/nlp"
)

// SentimentService classifies patient sentiment and intent. The lexicon
// decision table is authoritative; the polarity classifier is consulted only
// when no lexicon rule fires, and its failure propagates to the caller.
type SentimentService struct {
	logger   *logrus.Logger
	polarity domain.PolarityClassifier
}

// NewSentimentService creates a sentiment service. polarity may be nil, in
// which case the fallback layer always yields Neutral.
func NewSentimentService(logger *logrus.Logger, polarity domain.PolarityClassifier) *SentimentService {
	return &SentimentService{logger: logger, polarity: polarity}
}

// ClassifySentiment applies the lexicon decision table to text, falling back
// to the polarity model only when no rule matches.
func (s *SentimentService) ClassifySentiment(ctx context.Context, text string) (domain.Sentiment, error) {
	low := strings.ToLower(text)
	hasAnxious := nlp.ContainsAny(low, nlp.AnxiousTerms)
	hasReassured := nlp.ContainsAny(low, nlp.ReassuredTerms)
	hasResidual := nlp.ContainsAny(low, nlp.ResidualMarkers)
	hasImprove := nlp.ContainsAny(low, nlp.ImprovementMarkers)
	hasContrast := nlp.ContainsAny(low, nlp.ContrastMarkers)

	switch {
	case hasAnxious && !hasReassured:
		return domain.SentimentAnxious, nil
	case hasAnxious && hasReassured:
		return domain.SentimentNeutral, nil
	case hasReassured && hasResidual && hasContrast:
		return domain.SentimentNeutral, nil
	case hasReassured:
		return domain.SentimentReassured, nil
	case hasImprove && hasResidual:
		return domain.SentimentNeutral, nil
	}

	return s.classifyByPolarity(ctx, text)
}

func (s *SentimentService) classifyByPolarity(ctx context.Context, text string) (domain.Sentiment, error) {
	if s.polarity == nil {
		return domain.SentimentNeutral, nil
	}

	label, err := s.polarity.ClassifyPolarity(ctx, text)
	if err != nil {
		return "", fmt.Errorf("classifying polarity: %w", err)
	}

	switch label {
	case domain.PolarityNegative:
		return domain.SentimentAnxious, nil
	case domain.PolarityPositive:
		return domain.SentimentReassured, nil
	default:
		return domain.SentimentNeutral, nil
	}
}

// DetectIntent runs the probe battery against text and returns every
// detected intent label ordered by the global priority ranking.
func DetectIntent(text string) []string {
	low := strings.ToLower(text)

	detected := make(map[string]struct{})
	for _, probe := range nlp.IntentProbes {
		if probe.Pattern.MatchString(low) {
			detected[probe.Label] = struct{}{}
		}
	}
	if len(detected) == 0 {
		return nil
	}

	ordered := make([]string, 0, len(detected))
	for _, label := range nlp.IntentPriority {
		if _, ok := detected[label]; ok {
			ordered = append(ordered, label)
		}
	}
	return ordered
}

// SummarizeSentimentIntent selects the single target patient utterance and
// classifies it. Selection scores each patient utterance (+3 any anxious
// term, +1 a question mark, +5 an explicit worry word); the first highest
// scorer wins, and when every score is zero the chronologically last patient
// utterance is used instead.
func (s *SentimentService) SummarizeSentimentIntent(ctx context.Context, utterances []domain.Utterance) (domain.SentimentIntentResult, error) {
	patient, _ := PartitionBySpeaker(utterances)
	if len(patient) == 0 {
		return domain.SentimentIntentResult{}, nil
	}

	target := selectTargetUtterance(patient)

	sentiment, err := s.ClassifySentiment(ctx, target.Text)
	if err != nil {
		return domain.SentimentIntentResult{}, err
	}

	result := domain.SentimentIntentResult{Sentiment: domain.StringPtr(string(sentiment))}
	if intents := DetectIntent(target.Text); len(intents) > 0 {
		result.Intent = domain.StringPtr(intents[0])
	}

	s.logger.WithFields(logrus.Fields{
		"target_id": target.ID,
		"sentiment": sentiment,
	}).Debug("Sentiment/intent summarized")

	return result, nil
}

func selectTargetUtterance(patient []domain.Utterance) domain.Utterance {
	best := patient[len(patient)-1]
	bestScore := 0
	for _, u := range patient {
		score := scoreUtterance(u.Text)
		if score > bestScore {
			bestScore = score
			best = u
		}
	}
	return best
}

func scoreUtterance(text string) int {
	low := strings.ToLower(text)
	score := 0
	if nlp.ContainsAny(low, nlp.AnxiousTerms) {
		score += 3
	}
	if strings.Contains(low, "?") {
		score++
	}
	if strings.Contains(low, "worried") || strings.Contains(low, "concern") {
		score += 5
	}
	return score
}
