package service

import (
	"context"
	"fmt"
	"time"

	"newspulse/internal/api/dto"
	"newspulse/internal/api/repository"
	"newspulse/pkg/logger"
)

// SentimentService serves article-sentiment history reads.
type SentimentService interface {
	GetHistory(ctx context.Context, ticker string, days int) ([]dto.SentimentHistoryItem, error)
}

type sentimentService struct {
	sentimentRepo repository.SentimentReadRepository
	logger        *logger.Logger
}

// NewSentimentService creates a new SentimentService.
func NewSentimentService(sentimentRepo repository.SentimentReadRepository, log *logger.Logger) SentimentService {
	return &sentimentService{
		sentimentRepo: sentimentRepo,
		logger:        log,
	}
}

func (s *sentimentService) GetHistory(ctx context.Context, ticker string, days int) ([]dto.SentimentHistoryItem, error) {
	if days <= 0 {
		days = 30
	}

	sentiments, err := s.sentimentRepo.FindHistory(ctx, ticker, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentiment history: %w", err)
	}

	items := make([]dto.SentimentHistoryItem, 0, len(sentiments))
	for _, sentiment := range sentiments {
		items = append(items, dto.SentimentHistoryItem{
			Ticker:      sentiment.Ticker,
			PublishedAt: sentiment.PublishedAt.Format(time.RFC3339),
			Polarity:    sentiment.Polarity,
			Label:       sentiment.Label,
			Confidence:  sentiment.Confidence,
		})
	}
	return items, nil
}
