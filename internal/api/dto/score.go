package dto

import (
	"fmt"
	"time"
)

// Recognized sentiment filter values for the ranking endpoint.
const (
	SentimentFilterNone     = ""
	SentimentFilterPositive = "positive"
	SentimentFilterNegative = "negative"
)

// RankingQuery is the explicit value object for ranking filter parameters.
// Only enumerated fields are recognized; anything else is rejected.
type RankingQuery struct {
	Date      time.Time
	Limit     int
	Sentiment string
}

// Validate checks the query and applies defaults.
func (q *RankingQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	switch q.Sentiment {
	case SentimentFilterNone, SentimentFilterPositive, SentimentFilterNegative:
		return nil
	default:
		return fmt.Errorf("unrecognized sentiment filter: %q", q.Sentiment)
	}
}

// RankingItem is one row of the per-date company ranking.
type RankingItem struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	ArticleCount int     `json:"article_count"`
	MeanPolarity float64 `json:"mean_polarity"`
	Rank         int     `json:"rank"`
}

// ScoreHistoryItem is one row of a company's score history.
type ScoreHistoryItem struct {
	Date         string  `json:"date"`
	Score        float64 `json:"score"`
	ArticleCount int     `json:"article_count"`
	MeanPolarity float64 `json:"mean_polarity"`
	Rank         int     `json:"rank"`
}

// CalculateResponse reports the outcome of a re-aggregation request.
type CalculateResponse struct {
	Date            string `json:"date"`
	CompaniesScored int    `json:"companies_scored"`
}

// ErrorResponse is the error payload shape for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
