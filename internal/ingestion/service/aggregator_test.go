package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"newspulse/internal/entity"
	"newspulse/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentimentRow(ticker string, publishedAt time.Time, polarity float64) entity.ArticleSentiment {
	return entity.ArticleSentiment{
		Fingerprint: Fingerprint(ticker, fmt.Sprintf("https://example.com/%s/%s/%f", ticker, publishedAt.Format(time.RFC3339Nano), polarity)),
		Ticker:      ticker,
		PublishedAt: publishedAt,
		Polarity:    polarity,
		Label:       entity.LabelForPolarity(polarity),
	}
}

func TestAggregator_ScoreFormula(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := date.Add(12 * time.Hour)

	sentimentRepo := &fakeSentimentRepo{rows: []entity.ArticleSentiment{
		sentimentRow("ACME", asOf, 0.8),
		sentimentRow("ACME", asOf, -0.2),
		sentimentRow("ACME", asOf, 0.1),
	}}
	scoreRepo := newFakeScoreRepo()
	aggregator := NewAggregator(sentimentRepo, scoreRepo, newTestLogger(t))

	score, err := aggregator.Aggregate(context.Background(), "ACME", date, asOf)
	require.NoError(t, err)

	// 2 positive, 1 negative: ratio 1/3. All published at asOf, so the
	// decayed mean equals the plain mean 0.7/3.
	assert.Equal(t, 3, score.ArticleCount)
	assert.InDelta(t, 0.7/3.0, score.MeanPolarity, 1e-9)
	assert.InDelta(t, 0.7/3.0, score.DecayedMeanPolarity, 1e-9)
	assert.InDelta(t, (1.0/3.0)*100+(0.7/3.0)*50, score.Score, 1e-9)
	assert.Equal(t, utils.TruncateToDate(date), score.Date)
	assert.Equal(t, asOf, score.ComputedAt)

	persisted, ok := scoreRepo.upserts[scoreKey("ACME", utils.TruncateToDate(date))]
	require.True(t, ok)
	assert.Equal(t, *score, persisted)
}

func TestAggregator_DecayDiscountsOlderArticles(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	publishedAt := date.Add(10 * time.Hour)
	asOf := publishedAt.Add(1 * time.Hour)

	sentimentRepo := &fakeSentimentRepo{rows: []entity.ArticleSentiment{
		sentimentRow("ACME", publishedAt, 1.0),
	}}
	scoreRepo := newFakeScoreRepo()
	aggregator := NewAggregator(sentimentRepo, scoreRepo, newTestLogger(t))

	score, err := aggregator.Aggregate(context.Background(), "ACME", date, asOf)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, score.MeanPolarity, 1e-9)
	assert.InDelta(t, 0.9, score.DecayedMeanPolarity, 1e-9)
	assert.InDelta(t, 100+0.9*50, score.Score, 1e-9)
}

func TestAggregator_FutureArticleGetsFullWeight(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := date.Add(6 * time.Hour)
	publishedAt := asOf.Add(2 * time.Hour)

	sentimentRepo := &fakeSentimentRepo{rows: []entity.ArticleSentiment{
		sentimentRow("ACME", publishedAt, 0.5),
	}}
	scoreRepo := newFakeScoreRepo()
	aggregator := NewAggregator(sentimentRepo, scoreRepo, newTestLogger(t))

	score, err := aggregator.Aggregate(context.Background(), "ACME", date, asOf)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, score.DecayedMeanPolarity, 1e-9)
}

func TestAggregator_RecomputationIsIdempotent(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := date.Add(18 * time.Hour)

	sentimentRepo := &fakeSentimentRepo{rows: []entity.ArticleSentiment{
		sentimentRow("ACME", date.Add(2*time.Hour), 0.8),
		sentimentRow("ACME", date.Add(9*time.Hour), -0.3),
	}}
	scoreRepo := newFakeScoreRepo()
	aggregator := NewAggregator(sentimentRepo, scoreRepo, newTestLogger(t))

	first, err := aggregator.Aggregate(context.Background(), "ACME", date, asOf)
	require.NoError(t, err)
	second, err := aggregator.Aggregate(context.Background(), "ACME", date, asOf)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, scoreRepo.upserts, 1)
}

func TestAggregator_NoArticlesYieldsNoRow(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	sentimentRepo := &fakeSentimentRepo{}
	scoreRepo := newFakeScoreRepo()
	aggregator := NewAggregator(sentimentRepo, scoreRepo, newTestLogger(t))

	_, err := aggregator.Aggregate(context.Background(), "ACME", date, date)

	assert.ErrorIs(t, err, ErrNoArticles)
	assert.Empty(t, scoreRepo.upserts)
}

func TestAggregator_AggregateDateRanksWithTickerTiebreak(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	asOf := date.Add(4 * time.Hour)

	// AAA and BBB have identical inputs so their scores tie exactly; the
	// tie breaks by ticker ascending. CCC scores lowest.
	sentimentRepo := &fakeSentimentRepo{rows: []entity.ArticleSentiment{
		sentimentRow("BBB", asOf, 0.5),
		sentimentRow("AAA", asOf, 0.5),
		sentimentRow("CCC", asOf, -0.5),
	}}
	scoreRepo := newFakeScoreRepo()
	aggregator := NewAggregator(sentimentRepo, scoreRepo, newTestLogger(t))

	scores, err := aggregator.AggregateDate(context.Background(), date, asOf)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, "AAA", scores[0].Ticker)
	assert.Equal(t, 1, scores[0].Rank)
	assert.Equal(t, "BBB", scores[1].Ticker)
	assert.Equal(t, 2, scores[1].Rank)
	assert.Equal(t, "CCC", scores[2].Ticker)
	assert.Equal(t, 3, scores[2].Rank)

	day := utils.TruncateToDate(date)
	assert.Equal(t, 1, scoreRepo.ranks[scoreKey("AAA", day)])
	assert.Equal(t, 2, scoreRepo.ranks[scoreKey("BBB", day)])
	assert.Equal(t, 3, scoreRepo.ranks[scoreKey("CCC", day)])
}
