package service

import (
	"context"
	"strings"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/dto"
	"newspulse/internal/ingestion/repository"
	"newspulse/pkg/logger"
)

// Fixed lexicon for the offline fallback scorer. Must stay reproducible:
// no network, no model, same text always scores the same.
var (
	positiveWords = map[string]struct{}{
		"excellent": {}, "great": {}, "good": {}, "positive": {}, "gain": {},
		"surge": {}, "rocket": {}, "breakthrough": {}, "record": {}, "beat": {},
		"outperform": {}, "strong": {}, "impressive": {}, "bullish": {},
		"growth": {}, "rise": {},
	}

	negativeWords = map[string]struct{}{
		"poor": {}, "bad": {}, "negative": {}, "loss": {}, "decline": {},
		"crash": {}, "drop": {}, "fail": {}, "miss": {}, "underperform": {},
		"weak": {}, "bearish": {}, "down": {}, "slump": {}, "concern": {},
		"risk": {}, "warning": {}, "trouble": {},
	}
)

// Scorer produces a polarity, label and confidence for a unit of text. It
// delegates to the classifier collaborator when one is configured and uses
// the lexicon fallback otherwise. The classifier handle is passed in
// explicitly so it can be substituted in tests.
type Scorer struct {
	classifier repository.ClassifierRepository
	logger     *logger.Logger
}

// NewScorer creates a Scorer. A nil classifier selects the lexicon fallback.
func NewScorer(classifier repository.ClassifierRepository, log *logger.Logger) *Scorer {
	return &Scorer{
		classifier: classifier,
		logger:     log,
	}
}

// Score scores the given text. Empty text is an error: the article must be
// skipped rather than silently diluted into aggregates as neutral. A failing
// classifier call is likewise an error for that article.
func (s *Scorer) Score(ctx context.Context, text string) (dto.SentimentResult, error) {
	if strings.TrimSpace(text) == "" {
		return dto.SentimentResult{}, ErrEmptyText
	}

	if s.classifier != nil {
		resp, err := s.classifier.Classify(ctx, text)
		if err != nil {
			return dto.SentimentResult{}, err
		}
		return dto.SentimentResult{
			Polarity:   clamp(resp.Polarity, -1, 1),
			Label:      entity.LabelForPolarity(resp.Polarity),
			Confidence: clamp(resp.Confidence, 0, 1),
		}, nil
	}

	return scoreWithLexicon(text), nil
}

// scoreWithLexicon is the reproducible offline policy: polarity is the net
// sentiment word count over the total word count, confidence is the share
// of sentiment-bearing words.
func scoreWithLexicon(text string) dto.SentimentResult {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return dto.SentimentResult{Label: entity.SentimentNeutral}
	}

	var posCount, negCount int
	for _, word := range words {
		if _, ok := positiveWords[word]; ok {
			posCount++
			continue
		}
		if _, ok := negativeWords[word]; ok {
			negCount++
		}
	}

	total := float64(len(words))
	polarity := clamp(float64(posCount-negCount)/total, -1, 1)
	confidence := clamp(float64(posCount+negCount)/total, 0, 1)

	return dto.SentimentResult{
		Polarity:   polarity,
		Label:      entity.LabelForPolarity(polarity),
		Confidence: confidence,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
