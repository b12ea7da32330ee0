package repository

import (
	"context"
	"strings"
	"time"

	"newspulse/internal/api/dto"
	"newspulse/internal/entity"
	"newspulse/pkg/utils"

	"gorm.io/gorm"
)

// ScoreReadRepository serves the read-only presentation queries over
// company scores. No core scoring logic lives here.
type ScoreReadRepository interface {
	FindRanking(ctx context.Context, query dto.RankingQuery) ([]dto.RankingItem, error)
	FindHistory(ctx context.Context, ticker string, days int) ([]entity.CompanyScore, error)
}

type scoreReadRepository struct {
	db *gorm.DB
}

// NewScoreReadRepository creates a new instance of ScoreReadRepository.
func NewScoreReadRepository(db *gorm.DB) ScoreReadRepository {
	return &scoreReadRepository{db: db}
}

func (r *scoreReadRepository) FindRanking(ctx context.Context, query dto.RankingQuery) ([]dto.RankingItem, error) {
	var qBuilder strings.Builder
	qParam := []interface{}{utils.TruncateToDate(query.Date)}

	qBuilder.WriteString(`
	SELECT
		cs.ticker,
		c.name,
		cs.score,
		cs.article_count,
		cs.mean_polarity,
		cs.rank
	FROM company_scores AS cs
	JOIN companies AS c ON c.ticker = cs.ticker
	WHERE cs.date = ?
`)

	switch query.Sentiment {
	case dto.SentimentFilterPositive:
		qBuilder.WriteString(" AND cs.score > 0")
	case dto.SentimentFilterNegative:
		qBuilder.WriteString(" AND cs.score < 0")
	}

	qBuilder.WriteString(" ORDER BY cs.rank ASC LIMIT ?")
	qParam = append(qParam, query.Limit)

	var items []dto.RankingItem
	if err := r.db.WithContext(ctx).Raw(qBuilder.String(), qParam...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *scoreReadRepository) FindHistory(ctx context.Context, ticker string, days int) ([]entity.CompanyScore, error) {
	since := utils.TruncateToDate(time.Now().AddDate(0, 0, -days))

	var scores []entity.CompanyScore
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND date >= ?", ticker, since).
		Order("date DESC").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
