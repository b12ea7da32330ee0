package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/dto"
	"newspulse/pkg/logger"
	"newspulse/pkg/utils"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	return log
}

// stubClassifier delegates to fn, letting each test script polarity,
// confidence and failures per text.
type stubClassifier struct {
	fn func(ctx context.Context, text string) (*dto.ClassifierResponse, error)
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (*dto.ClassifierResponse, error) {
	return s.fn(ctx, text)
}

// fakeSentimentRepo is an in-memory ArticleSentimentRepository. Safe for
// concurrent use since the orchestrator writes from worker goroutines.
type fakeSentimentRepo struct {
	mu   sync.Mutex
	rows []entity.ArticleSentiment
}

func (f *fakeSentimentRepo) CreateIgnoreConflict(ctx context.Context, sentiment *entity.ArticleSentiment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Fingerprint == sentiment.Fingerprint {
			return false, nil
		}
	}
	sentiment.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *sentiment)
	return true, nil
}

func (f *fakeSentimentRepo) Exists(ctx context.Context, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Fingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSentimentRepo) FindForTickerAndDate(ctx context.Context, ticker string, date time.Time) ([]entity.ArticleSentiment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start, end := utils.DayBounds(date)

	var matched []entity.ArticleSentiment
	for _, row := range f.rows {
		if row.Ticker != ticker {
			continue
		}
		if row.PublishedAt.Before(start) || !row.PublishedAt.Before(end) {
			continue
		}
		matched = append(matched, row)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedAt.Before(matched[j].PublishedAt)
	})
	return matched, nil
}

func (f *fakeSentimentRepo) TickersWithSentiments(ctx context.Context, date time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start, end := utils.DayBounds(date)

	seen := map[string]struct{}{}
	var tickers []string
	for _, row := range f.rows {
		if row.PublishedAt.Before(start) || !row.PublishedAt.Before(end) {
			continue
		}
		if _, ok := seen[row.Ticker]; ok {
			continue
		}
		seen[row.Ticker] = struct{}{}
		tickers = append(tickers, row.Ticker)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// fakeScoreRepo is an in-memory CompanyScoreRepository keyed by ticker|date.
type fakeScoreRepo struct {
	mu      sync.Mutex
	upserts map[string]entity.CompanyScore
	ranks   map[string]int
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{
		upserts: map[string]entity.CompanyScore{},
		ranks:   map[string]int{},
	}
}

func scoreKey(ticker string, date time.Time) string {
	return ticker + "|" + date.Format(utils.DateLayout)
}

func (f *fakeScoreRepo) Upsert(ctx context.Context, score *entity.CompanyScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts[scoreKey(score.Ticker, score.Date)] = *score
	return nil
}

func (f *fakeScoreRepo) UpdateRank(ctx context.Context, ticker string, date time.Time, rank int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranks[scoreKey(ticker, utils.TruncateToDate(date))] = rank
	return nil
}

func (f *fakeScoreRepo) FindByDate(ctx context.Context, date time.Time) ([]entity.CompanyScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var scores []entity.CompanyScore
	for _, score := range f.upserts {
		if score.Date.Equal(utils.TruncateToDate(date)) {
			scores = append(scores, score)
		}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Ticker < scores[j].Ticker
	})
	return scores, nil
}

// stubCompanyRepo serves a fixed registry.
type stubCompanyRepo struct {
	companies []entity.Company
	err       error
}

func (s *stubCompanyRepo) GetCompanies(ctx context.Context) ([]entity.Company, error) {
	return s.companies, s.err
}

// stubNewsRepo serves canned articles per ticker and scripted failures.
type stubNewsRepo struct {
	byTicker map[string][]dto.RawArticle
	errFor   map[string]error
}

func (s *stubNewsRepo) Fetch(ctx context.Context, company entity.Company) ([]dto.RawArticle, error) {
	if err, ok := s.errFor[company.Ticker]; ok {
		return nil, err
	}
	return s.byTicker[company.Ticker], nil
}

// stubBatchRunRepo records run lifecycle transitions in memory.
type stubBatchRunRepo struct {
	mu       sync.Mutex
	runs     []*entity.BatchRun
	statuses []string
}

func (s *stubBatchRunRepo) Create(ctx context.Context, run *entity.BatchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = uint(len(s.runs) + 1)
	s.runs = append(s.runs, run)
	s.statuses = append(s.statuses, run.Status)
	return nil
}

func (s *stubBatchRunRepo) Update(ctx context.Context, run *entity.BatchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, run.Status)
	return nil
}
