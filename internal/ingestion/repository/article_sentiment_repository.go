package repository

import (
	"context"
	"time"

	"newspulse/internal/entity"
	"newspulse/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleSentimentRepository defines the interface for the append-only
// article sentiment ledger.
type ArticleSentimentRepository interface {
	// CreateIgnoreConflict inserts the record unless a row with the same
	// fingerprint already exists. Returns false when the row was a duplicate.
	CreateIgnoreConflict(ctx context.Context, sentiment *entity.ArticleSentiment) (bool, error)
	// Exists reports whether a row with the fingerprint is already present.
	// Advisory only: CreateIgnoreConflict remains the authoritative guard
	// under concurrency.
	Exists(ctx context.Context, fingerprint string) (bool, error)
	FindForTickerAndDate(ctx context.Context, ticker string, date time.Time) ([]entity.ArticleSentiment, error)
	TickersWithSentiments(ctx context.Context, date time.Time) ([]string, error)
}

type articleSentimentRepository struct {
	db *gorm.DB
}

// NewArticleSentimentRepository creates a new instance of ArticleSentimentRepository.
func NewArticleSentimentRepository(db *gorm.DB) ArticleSentimentRepository {
	return &articleSentimentRepository{db: db}
}

// CreateIgnoreConflict relies on the unique index on fingerprint as the
// authoritative dedup guard: concurrent attempts for the same fingerprint
// resolve to exactly one row.
func (r *articleSentimentRepository) CreateIgnoreConflict(ctx context.Context, sentiment *entity.ArticleSentiment) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		DoNothing: true,
	}).Create(sentiment)

	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *articleSentimentRepository) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ArticleSentiment{}).
		Where("fingerprint = ?", fingerprint).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindForTickerAndDate returns all sentiment rows for a ticker whose
// published timestamp falls on the given calendar date.
func (r *articleSentimentRepository) FindForTickerAndDate(ctx context.Context, ticker string, date time.Time) ([]entity.ArticleSentiment, error) {
	start, end := utils.DayBounds(date)

	var sentiments []entity.ArticleSentiment
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND published_at >= ? AND published_at < ?", ticker, start, end).
		Order("published_at ASC").
		Find(&sentiments).Error
	if err != nil {
		return nil, err
	}
	return sentiments, nil
}

// TickersWithSentiments returns the distinct tickers that have at least one
// sentiment row on the given calendar date.
func (r *articleSentimentRepository) TickersWithSentiments(ctx context.Context, date time.Time) ([]string, error) {
	start, end := utils.DayBounds(date)

	var tickers []string
	err := r.db.WithContext(ctx).
		Model(&entity.ArticleSentiment{}).
		Distinct("ticker").
		Where("published_at >= ? AND published_at < ?", start, end).
		Order("ticker ASC").
		Pluck("ticker", &tickers).Error
	if err != nil {
		return nil, err
	}
	return tickers, nil
}
