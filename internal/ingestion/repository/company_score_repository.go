package repository

import (
	"context"
	"time"

	"newspulse/internal/entity"
	"newspulse/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyScoreRepository defines the interface for aggregated company scores.
type CompanyScoreRepository interface {
	// Upsert writes or overwrites the score row for (ticker, date).
	Upsert(ctx context.Context, score *entity.CompanyScore) error
	UpdateRank(ctx context.Context, ticker string, date time.Time, rank int) error
	FindByDate(ctx context.Context, date time.Time) ([]entity.CompanyScore, error)
}

type companyScoreRepository struct {
	db *gorm.DB
}

// NewCompanyScoreRepository creates a new instance of CompanyScoreRepository.
func NewCompanyScoreRepository(db *gorm.DB) CompanyScoreRepository {
	return &companyScoreRepository{db: db}
}

// Upsert makes re-running aggregation for a date idempotent: one row per
// (ticker, date), overwritten in place.
func (r *companyScoreRepository) Upsert(ctx context.Context, score *entity.CompanyScore) error {
	score.Date = utils.TruncateToDate(score.Date)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(score).Error
}

func (r *companyScoreRepository) UpdateRank(ctx context.Context, ticker string, date time.Time, rank int) error {
	return r.db.WithContext(ctx).
		Model(&entity.CompanyScore{}).
		Where("ticker = ? AND date = ?", ticker, utils.TruncateToDate(date)).
		Update("rank", rank).Error
}

func (r *companyScoreRepository) FindByDate(ctx context.Context, date time.Time) ([]entity.CompanyScore, error) {
	var scores []entity.CompanyScore
	err := r.db.WithContext(ctx).
		Where("date = ?", utils.TruncateToDate(date)).
		Order("score DESC, ticker ASC").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
