package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRankingQueryValidate(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("applies default limit", func(t *testing.T) {
		q := RankingQuery{Date: date}
		assert.NoError(t, q.Validate())
		assert.Equal(t, 100, q.Limit)
	})

	t.Run("accepts recognized sentiment filters", func(t *testing.T) {
		for _, sentiment := range []string{SentimentFilterNone, SentimentFilterPositive, SentimentFilterNegative} {
			q := RankingQuery{Date: date, Limit: 10, Sentiment: sentiment}
			assert.NoError(t, q.Validate())
		}
	})

	t.Run("rejects unrecognized sentiment filter", func(t *testing.T) {
		q := RankingQuery{Date: date, Limit: 10, Sentiment: "neutral"}
		assert.Error(t, q.Validate())
	})
}
