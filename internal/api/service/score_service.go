package service

import (
	"context"
	"fmt"
	"time"

	"newspulse/internal/api/dto"
	"newspulse/internal/api/repository"
	ingestion "newspulse/internal/ingestion/service"
	"newspulse/pkg/logger"
	"newspulse/pkg/utils"

	"github.com/patrickmn/go-cache"
)

// ScoreService serves ranking and score-history reads and the idempotent
// re-aggregation trigger.
type ScoreService interface {
	GetRanking(ctx context.Context, query dto.RankingQuery) ([]dto.RankingItem, error)
	GetCompanyHistory(ctx context.Context, ticker string, days int) ([]dto.ScoreHistoryItem, error)
	Calculate(ctx context.Context, date time.Time) (*dto.CalculateResponse, error)
}

type scoreService struct {
	scoreRepo    repository.ScoreReadRepository
	aggregator   *ingestion.Aggregator
	logger       *logger.Logger
	rankingCache *cache.Cache
}

// NewScoreService creates a new ScoreService.
func NewScoreService(
	scoreRepo repository.ScoreReadRepository,
	aggregator *ingestion.Aggregator,
	log *logger.Logger,
	rankingTTL time.Duration,
) ScoreService {
	if rankingTTL <= 0 {
		rankingTTL = 5 * time.Minute
	}
	return &scoreService{
		scoreRepo:    scoreRepo,
		aggregator:   aggregator,
		logger:       log,
		rankingCache: cache.New(rankingTTL, 2*rankingTTL),
	}
}

func (s *scoreService) GetRanking(ctx context.Context, query dto.RankingQuery) ([]dto.RankingItem, error) {
	cacheKey := fmt.Sprintf("%s|%d|%s", query.Date.Format(utils.DateLayout), query.Limit, query.Sentiment)
	if cached, found := s.rankingCache.Get(cacheKey); found {
		return cached.([]dto.RankingItem), nil
	}

	items, err := s.scoreRepo.FindRanking(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}

	s.rankingCache.Set(cacheKey, items, cache.DefaultExpiration)
	return items, nil
}

func (s *scoreService) GetCompanyHistory(ctx context.Context, ticker string, days int) ([]dto.ScoreHistoryItem, error) {
	scores, err := s.scoreRepo.FindHistory(ctx, ticker, days)
	if err != nil {
		return nil, fmt.Errorf("failed to load score history: %w", err)
	}

	items := make([]dto.ScoreHistoryItem, 0, len(scores))
	for _, score := range scores {
		items = append(items, dto.ScoreHistoryItem{
			Date:         score.Date.Format(utils.DateLayout),
			Score:        score.Score,
			ArticleCount: score.ArticleCount,
			MeanPolarity: score.MeanPolarity,
			Rank:         score.Rank,
		})
	}
	return items, nil
}

// Calculate re-runs aggregation for a date. Safe to call repeatedly: score
// rows are overwritten in place, never duplicated.
func (s *scoreService) Calculate(ctx context.Context, date time.Time) (*dto.CalculateResponse, error) {
	scores, err := s.aggregator.AggregateDate(ctx, date, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate date: %w", err)
	}

	// Recomputation invalidates any cached rankings for the date.
	s.rankingCache.Flush()

	s.logger.Info("Recomputed scores",
		logger.StringField("date", date.Format(utils.DateLayout)),
		logger.IntField("companies_scored", len(scores)),
	)

	return &dto.CalculateResponse{
		Date:            date.Format(utils.DateLayout),
		CompaniesScored: len(scores),
	}, nil
}
