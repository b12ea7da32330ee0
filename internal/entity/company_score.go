package entity

import "time"

// CompanyScore is the aggregated per-company per-day sentiment score.
// One row per (ticker, date); recomputing a date overwrites in place.
type CompanyScore struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Ticker              string    `gorm:"not null;uniqueIndex:idx_company_scores_ticker_date" json:"ticker"`
	Date                time.Time `gorm:"type:date;not null;uniqueIndex:idx_company_scores_ticker_date" json:"date"`
	Score               float64   `gorm:"not null" json:"score"`
	ArticleCount        int       `gorm:"not null" json:"article_count"`
	MeanPolarity        float64   `gorm:"not null" json:"mean_polarity"`
	DecayedMeanPolarity float64   `gorm:"not null" json:"decayed_mean_polarity"`
	Rank                int       `gorm:"not null" json:"rank"`
	ComputedAt          time.Time `gorm:"not null" json:"computed_at"`
}

// TableName specifies the table name for the CompanyScore model.
func (CompanyScore) TableName() string {
	return "company_scores"
}
