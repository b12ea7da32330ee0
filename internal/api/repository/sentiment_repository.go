package repository

import (
	"context"
	"time"

	"newspulse/internal/entity"

	"gorm.io/gorm"
)

// SentimentReadRepository serves the read-only article-sentiment history
// queries for the per-ticker chart.
type SentimentReadRepository interface {
	FindHistory(ctx context.Context, ticker string, days int) ([]entity.ArticleSentiment, error)
}

type sentimentReadRepository struct {
	db *gorm.DB
}

// NewSentimentReadRepository creates a new instance of SentimentReadRepository.
func NewSentimentReadRepository(db *gorm.DB) SentimentReadRepository {
	return &sentimentReadRepository{db: db}
}

func (r *sentimentReadRepository) FindHistory(ctx context.Context, ticker string, days int) ([]entity.ArticleSentiment, error) {
	since := time.Now().AddDate(0, 0, -days)

	var sentiments []entity.ArticleSentiment
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND published_at >= ?", ticker, since).
		Order("published_at DESC").
		Find(&sentiments).Error
	if err != nil {
		return nil, err
	}
	return sentiments, nil
}
