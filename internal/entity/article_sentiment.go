package entity

import "time"

// Sentiment labels. The label is a deterministic function of polarity,
// see LabelForPolarity.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Polarity label thresholds. A polarity of exactly +0.05 classifies as
// positive, -0.05 as negative.
const (
	PolarityThresholdPositive = 0.05
	PolarityThresholdNegative = -0.05
)

// LabelForPolarity maps a polarity value to its sentiment label.
func LabelForPolarity(polarity float64) string {
	switch {
	case polarity >= PolarityThresholdPositive:
		return SentimentPositive
	case polarity <= PolarityThresholdNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ArticleSentiment is the append-only record of one scored article for one
// company. Only derived values are stored; article text is never persisted.
// Rows are created once per unique fingerprint and never mutated or deleted.
type ArticleSentiment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Fingerprint string    `gorm:"unique;not null" json:"fingerprint"`
	Ticker      string    `gorm:"not null;index:idx_article_sentiments_ticker_published" json:"ticker"`
	PublishedAt time.Time `gorm:"not null;index:idx_article_sentiments_ticker_published" json:"published_at"`
	Polarity    float64   `gorm:"not null" json:"polarity"`
	Label       string    `gorm:"type:varchar(10);not null" json:"label"`
	Confidence  *float64  `json:"confidence,omitempty"`
	IngestedAt  time.Time `gorm:"autoCreateTime" json:"ingested_at"`
}

// TableName specifies the table name for the ArticleSentiment model.
func (ArticleSentiment) TableName() string {
	return "article_sentiments"
}
