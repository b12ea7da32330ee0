package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/config"
	"newspulse/internal/ingestion/dto"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngestionService(
	t *testing.T,
	companyRepo *stubCompanyRepo,
	newsRepo *stubNewsRepo,
	sentimentRepo *fakeSentimentRepo,
	batchRunRepo *stubBatchRunRepo,
	classifier *stubClassifier,
) IngestionService {
	t.Helper()
	log := newTestLogger(t)
	scoreRepo := newFakeScoreRepo()

	// A typed nil must not reach the scorer, it would defeat the nil check
	// that selects the lexicon fallback.
	scorer := NewScorer(nil, log)
	if classifier != nil {
		scorer = NewScorer(classifier, log)
	}
	aggregator := NewAggregator(sentimentRepo, scoreRepo, log)

	return NewIngestionService(
		&config.Config{},
		log,
		companyRepo,
		newsRepo,
		sentimentRepo,
		batchRunRepo,
		scorer,
		aggregator,
		nil,
		nil,
	)
}

func appleArticle(n int, publishedAt time.Time) dto.RawArticle {
	return dto.RawArticle{
		Title:       fmt.Sprintf("Apple story %d", n),
		Source:      "Example News",
		SourceURL:   fmt.Sprintf("https://example.com/apple/%d", n),
		PublishedAt: publishedAt,
	}
}

func TestIngestionService_PersistsScoredArticles(t *testing.T) {
	targetDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	companies := []entity.Company{
		{Ticker: "AAPL", Name: "Apple Inc.", Keywords: pq.StringArray{"Apple"}},
	}

	articles := make([]dto.RawArticle, 0, 5)
	for i := 0; i < 5; i++ {
		articles = append(articles, appleArticle(i, targetDate.Add(time.Duration(i+1)*time.Hour)))
	}

	classifier := &stubClassifier{
		fn: func(ctx context.Context, text string) (*dto.ClassifierResponse, error) {
			return &dto.ClassifierResponse{Polarity: 0.5, Confidence: 0.9}, nil
		},
	}
	sentimentRepo := &fakeSentimentRepo{}
	batchRunRepo := &stubBatchRunRepo{}

	svc := newTestIngestionService(t,
		&stubCompanyRepo{companies: companies},
		&stubNewsRepo{byTicker: map[string][]dto.RawArticle{"AAPL": articles}},
		sentimentRepo,
		batchRunRepo,
		classifier,
	)

	stats, err := svc.Run(context.Background(), targetDate)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Companies)
	assert.Equal(t, 5, stats.ArticlesFetched)
	assert.Equal(t, 5, stats.ArticlesMatched)
	assert.Equal(t, 5, stats.Persisted)
	assert.Zero(t, stats.DuplicateSkips)
	assert.Zero(t, stats.ScoreErrors)
	assert.Equal(t, 1, stats.CompaniesScored)

	require.Len(t, batchRunRepo.runs, 1)
	assert.Equal(t, entity.RunStatusCompleted, batchRunRepo.runs[0].Status)
	assert.True(t, batchRunRepo.runs[0].CompletedAt.Valid)
}

func TestIngestionService_ClassifierFailureSkipsOnlyThatArticle(t *testing.T) {
	targetDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	companies := []entity.Company{
		{Ticker: "AAPL", Name: "Apple Inc.", Keywords: pq.StringArray{"Apple"}},
	}

	articles := make([]dto.RawArticle, 0, 5)
	for i := 0; i < 5; i++ {
		articles = append(articles, appleArticle(i, targetDate.Add(time.Duration(i+1)*time.Hour)))
	}
	articles[2].Title = "Apple flaky headline"

	classifier := &stubClassifier{
		fn: func(ctx context.Context, text string) (*dto.ClassifierResponse, error) {
			if strings.Contains(text, "flaky") {
				return nil, errors.New("model timeout")
			}
			return &dto.ClassifierResponse{Polarity: 0.5, Confidence: 0.9}, nil
		},
	}
	sentimentRepo := &fakeSentimentRepo{}

	svc := newTestIngestionService(t,
		&stubCompanyRepo{companies: companies},
		&stubNewsRepo{byTicker: map[string][]dto.RawArticle{"AAPL": articles}},
		sentimentRepo,
		&stubBatchRunRepo{},
		classifier,
	)

	stats, err := svc.Run(context.Background(), targetDate)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Persisted)
	assert.Equal(t, 1, stats.ScoreErrors)
	assert.Len(t, sentimentRepo.rows, 4)
}

func TestIngestionService_FetchFailureSkipsOnlyThatCompany(t *testing.T) {
	targetDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	companies := []entity.Company{
		{Ticker: "AAPL", Name: "Apple Inc.", Keywords: pq.StringArray{"Apple"}},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Keywords: pq.StringArray{"Microsoft"}},
	}

	svc := newTestIngestionService(t,
		&stubCompanyRepo{companies: companies},
		&stubNewsRepo{
			byTicker: map[string][]dto.RawArticle{
				"AAPL": {appleArticle(0, targetDate.Add(time.Hour))},
			},
			errFor: map[string]error{"MSFT": errors.New("feed unreachable")},
		},
		&fakeSentimentRepo{},
		&stubBatchRunRepo{},
		nil,
	)

	stats, err := svc.Run(context.Background(), targetDate)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FetchErrors)
	assert.Equal(t, 1, stats.ArticlesFetched)
	assert.Equal(t, 1, stats.Persisted)
}

func TestIngestionService_SecondRunDedupsEverything(t *testing.T) {
	targetDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	companies := []entity.Company{
		{Ticker: "AAPL", Name: "Apple Inc.", Keywords: pq.StringArray{"Apple"}},
	}
	articles := []dto.RawArticle{
		appleArticle(0, targetDate.Add(1 * time.Hour)),
		appleArticle(1, targetDate.Add(2 * time.Hour)),
	}

	sentimentRepo := &fakeSentimentRepo{}
	svc := newTestIngestionService(t,
		&stubCompanyRepo{companies: companies},
		&stubNewsRepo{byTicker: map[string][]dto.RawArticle{"AAPL": articles}},
		sentimentRepo,
		&stubBatchRunRepo{},
		nil,
	)

	first, err := svc.Run(context.Background(), targetDate)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Persisted)

	second, err := svc.Run(context.Background(), targetDate)
	require.NoError(t, err)

	assert.Zero(t, second.Persisted)
	assert.Equal(t, 2, second.DuplicateSkips)
	assert.Len(t, sentimentRepo.rows, 2)
}

func TestIngestionService_ScoresOnceAndFansOutPerTicker(t *testing.T) {
	targetDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	companies := []entity.Company{
		{Ticker: "AAPL", Name: "Apple Inc.", Keywords: pq.StringArray{"Apple"}},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Keywords: pq.StringArray{"Microsoft"}},
	}
	article := dto.RawArticle{
		Title:       "Apple and Microsoft announce partnership",
		SourceURL:   "https://example.com/joint",
		PublishedAt: targetDate.Add(time.Hour),
	}

	var classifierCalls int64
	classifier := &stubClassifier{
		fn: func(ctx context.Context, text string) (*dto.ClassifierResponse, error) {
			atomic.AddInt64(&classifierCalls, 1)
			return &dto.ClassifierResponse{Polarity: 0.3, Confidence: 0.8}, nil
		},
	}
	sentimentRepo := &fakeSentimentRepo{}

	svc := newTestIngestionService(t,
		&stubCompanyRepo{companies: companies},
		&stubNewsRepo{byTicker: map[string][]dto.RawArticle{"AAPL": {article}}},
		sentimentRepo,
		&stubBatchRunRepo{},
		classifier,
	)

	stats, err := svc.Run(context.Background(), targetDate)
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&classifierCalls))
	assert.Equal(t, 2, stats.Persisted)
	require.Len(t, sentimentRepo.rows, 2)
	assert.NotEqual(t, sentimentRepo.rows[0].Fingerprint, sentimentRepo.rows[1].Fingerprint)
	assert.Equal(t, sentimentRepo.rows[0].Polarity, sentimentRepo.rows[1].Polarity)
}

func TestIngestionService_EmptyRegistryAborts(t *testing.T) {
	svc := newTestIngestionService(t,
		&stubCompanyRepo{},
		&stubNewsRepo{},
		&fakeSentimentRepo{},
		&stubBatchRunRepo{},
		nil,
	)

	_, err := svc.Run(context.Background(), time.Now())

	assert.ErrorIs(t, err, ErrRegistryEmpty)
}
