package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/repository"
	"newspulse/pkg/logger"
	"newspulse/pkg/utils"
)

// Per-hour multiplicative decay applied to an article's polarity: an
// article loses 10% influence per elapsed hour relative to asOf.
const decayFactor = 0.9

// Score weighting: the coverage-balance ratio is decay-free, the polarity
// term is decay-weighted to reflect freshness.
const (
	ratioWeight    = 100.0
	polarityWeight = 50.0
)

// Aggregator computes the per-company per-day decayed sentiment score from
// the article sentiment ledger and persists the ranked result.
type Aggregator struct {
	sentimentRepo repository.ArticleSentimentRepository
	scoreRepo     repository.CompanyScoreRepository
	logger        *logger.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(
	sentimentRepo repository.ArticleSentimentRepository,
	scoreRepo repository.CompanyScoreRepository,
	log *logger.Logger,
) *Aggregator {
	return &Aggregator{
		sentimentRepo: sentimentRepo,
		scoreRepo:     scoreRepo,
		logger:        log,
	}
}

// Aggregate computes and persists the score for one ticker on one calendar
// date. It is a pure function of that date's sentiment rows and asOf, so
// re-running it with no new data produces an identical row. Returns
// ErrNoArticles when the ticker has no rows for the date: the company then
// has no score row at all rather than a synthetic zero.
func (a *Aggregator) Aggregate(ctx context.Context, ticker string, date, asOf time.Time) (*entity.CompanyScore, error) {
	rows, err := a.sentimentRepo.FindForTickerAndDate(ctx, ticker, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentiments for %s: %w", ticker, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoArticles
	}

	var positives, negatives int
	var polaritySum, decayedSum float64
	for _, row := range rows {
		switch row.Label {
		case entity.SentimentPositive:
			positives++
		case entity.SentimentNegative:
			negatives++
		}
		polaritySum += row.Polarity
		decayedSum += decayWeight(row.PublishedAt, asOf) * row.Polarity
	}

	total := float64(len(rows))
	ratio := float64(positives-negatives) / total
	meanPolarity := polaritySum / total
	decayedMean := decayedSum / total

	score := &entity.CompanyScore{
		Ticker:              ticker,
		Date:                utils.TruncateToDate(date),
		Score:               ratio*ratioWeight + decayedMean*polarityWeight,
		ArticleCount:        len(rows),
		MeanPolarity:        meanPolarity,
		DecayedMeanPolarity: decayedMean,
		ComputedAt:          asOf,
	}

	if err := a.scoreRepo.Upsert(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to upsert score for %s: %w", ticker, err)
	}

	return score, nil
}

// AggregateDate recomputes scores for every ticker that has sentiment rows
// on the date, then assigns ranks. Idempotent for a fixed asOf.
func (a *Aggregator) AggregateDate(ctx context.Context, date, asOf time.Time) ([]entity.CompanyScore, error) {
	tickers, err := a.sentimentRepo.TickersWithSentiments(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickers for date: %w", err)
	}

	scores := make([]entity.CompanyScore, 0, len(tickers))
	for _, ticker := range tickers {
		score, err := a.Aggregate(ctx, ticker, date, asOf)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *score)
	}

	if err := a.assignRanks(ctx, date, scores); err != nil {
		return nil, err
	}

	return scores, nil
}

// assignRanks orders scores descending with ties broken by ticker ascending,
// so the ranking is always a total order.
func (a *Aggregator) assignRanks(ctx context.Context, date time.Time, scores []entity.CompanyScore) error {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Ticker < scores[j].Ticker
	})

	for i := range scores {
		scores[i].Rank = i + 1
		if err := a.scoreRepo.UpdateRank(ctx, scores[i].Ticker, date, scores[i].Rank); err != nil {
			return fmt.Errorf("failed to update rank for %s: %w", scores[i].Ticker, err)
		}
	}
	return nil
}

// decayWeight discounts an article by 0.9 per hour elapsed between its
// publication and asOf. Articles published after asOf get full weight.
func decayWeight(publishedAt, asOf time.Time) float64 {
	hours := asOf.Sub(publishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Pow(decayFactor, hours)
}
