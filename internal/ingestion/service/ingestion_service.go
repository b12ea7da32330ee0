package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/config"
	"newspulse/internal/ingestion/dto"
	"newspulse/internal/ingestion/repository"
	"newspulse/pkg/common"
	"newspulse/pkg/logger"
	"newspulse/pkg/telegram"
	"newspulse/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 2 * time.Hour

// IngestionService orchestrates one batch run: fetch per company, match,
// dedup, score, persist, then aggregate and rank. Unit-level failures are
// counted and skipped; only a missing registry or unreachable persistence
// aborts the run.
type IngestionService interface {
	Run(ctx context.Context, targetDate time.Time) (*dto.RunStats, error)
}

type ingestionService struct {
	cfg           *config.Config
	logger        *logger.Logger
	companyRepo   repository.CompanyRepository
	newsRepo      repository.NewsRepository
	sentimentRepo repository.ArticleSentimentRepository
	batchRunRepo  repository.BatchRunRepository
	scorer        *Scorer
	aggregator    *Aggregator
	redisClient   *redis.Client
	notifier      telegram.Notifier
}

// NewIngestionService creates a new IngestionService. redisClient and
// notifier may be nil; the run lock and notifications are then skipped.
func NewIngestionService(
	cfg *config.Config,
	log *logger.Logger,
	companyRepo repository.CompanyRepository,
	newsRepo repository.NewsRepository,
	sentimentRepo repository.ArticleSentimentRepository,
	batchRunRepo repository.BatchRunRepository,
	scorer *Scorer,
	aggregator *Aggregator,
	redisClient *redis.Client,
	notifier telegram.Notifier,
) IngestionService {
	return &ingestionService{
		cfg:           cfg,
		logger:        log,
		companyRepo:   companyRepo,
		newsRepo:      newsRepo,
		sentimentRepo: sentimentRepo,
		batchRunRepo:  batchRunRepo,
		scorer:        scorer,
		aggregator:    aggregator,
		redisClient:   redisClient,
		notifier:      notifier,
	}
}

// Run executes one batch run for the target calendar date.
func (s *ingestionService) Run(ctx context.Context, targetDate time.Time) (*dto.RunStats, error) {
	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	companies, err := s.companyRepo.GetCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load company registry: %w", err)
	}
	if len(companies) == 0 {
		return nil, ErrRegistryEmpty
	}

	run := &entity.BatchRun{
		TargetDate: utils.TruncateToDate(targetDate),
		Status:     entity.RunStatusStarted,
		StartedAt:  time.Now(),
	}
	if err := s.batchRunRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("persistence unavailable: %w", err)
	}

	s.logger.Info("Starting batch run",
		logger.IntField("run_id", int(run.ID)),
		logger.StringField("target_date", run.TargetDate.Format(utils.DateLayout)),
		logger.IntField("companies", len(companies)),
	)

	stats := &dto.RunStats{Companies: len(companies)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	maxCompanies := s.cfg.Ingestion.MaxConcurrentCompanies
	if maxCompanies <= 0 {
		maxCompanies = 4
	}
	maxScoring := s.cfg.Ingestion.MaxConcurrentScoring
	if maxScoring <= 0 {
		maxScoring = 2
	}

	companySem := make(chan struct{}, maxCompanies)
	// Scoring is the CPU/model-bound step; its own cap keeps one slow
	// classifier call from exhausting resources across companies.
	scoringSem := make(chan struct{}, maxScoring)

	s.setStatus(ctx, run, entity.RunStatusFetching)

	for _, company := range companies {
		// Cancellation checkpoint: one company's full cycle is the
		// granularity; already-persisted rows stand.
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		wg.Add(1)
		c := company
		utils.GoSafe(func() {
			defer wg.Done()
			companySem <- struct{}{}
			defer func() { <-companySem }()

			s.processCompany(ctx, c, companies, scoringSem, stats, &mu)
		})
	}

	wg.Wait()

	if ctx.Err() != nil {
		s.finalizeRun(run, stats, entity.RunStatusFailed, ctx.Err())
		return stats, ctx.Err()
	}

	s.setStatus(ctx, run, entity.RunStatusPersisted)
	s.setStatus(ctx, run, entity.RunStatusAggregating)

	scores, err := s.aggregator.AggregateDate(ctx, targetDate, time.Now())
	if err != nil {
		s.finalizeRun(run, stats, entity.RunStatusFailed, err)
		return stats, fmt.Errorf("aggregation failed: %w", err)
	}
	stats.CompaniesScored = len(scores)

	s.notifyRanking(run.TargetDate, scores)
	s.publishScoresUpdated(ctx, run.TargetDate, len(scores))

	s.finalizeRun(run, stats, entity.RunStatusCompleted, nil)

	s.logger.Info("Batch run completed",
		logger.IntField("run_id", int(run.ID)),
		logger.IntField("persisted", stats.Persisted),
		logger.IntField("duplicate_skips", stats.DuplicateSkips),
		logger.IntField("fetch_errors", stats.FetchErrors),
		logger.IntField("score_errors", stats.ScoreErrors),
		logger.IntField("companies_scored", stats.CompaniesScored),
	)

	return stats, nil
}

// processCompany runs the fetch/match/dedup/score cycle for one company.
// Any failure here is contained: logged, counted, skipped.
func (s *ingestionService) processCompany(
	ctx context.Context,
	company entity.Company,
	companies []entity.Company,
	scoringSem chan struct{},
	stats *dto.RunStats,
	mu *sync.Mutex,
) {
	articles, err := s.newsRepo.Fetch(ctx, company)
	if err != nil {
		s.logger.Error("Failed to fetch articles, skipping company",
			logger.ErrorField(err), logger.StringField("ticker", company.Ticker))
		mu.Lock()
		stats.FetchErrors++
		mu.Unlock()
		return
	}

	mu.Lock()
	stats.ArticlesFetched += len(articles)
	mu.Unlock()

	for _, article := range articles {
		if !utils.ShouldContinue(ctx, s.logger) {
			return
		}
		s.processArticle(ctx, article, companies, scoringSem, stats, mu)
	}
}

// processArticle fans one article out to every matched company, scoring the
// text once and persisting one candidate record per matched ticker.
func (s *ingestionService) processArticle(
	ctx context.Context,
	article dto.RawArticle,
	companies []entity.Company,
	scoringSem chan struct{},
	stats *dto.RunStats,
	mu *sync.Mutex,
) {
	tickers := MatchCompanies(article, companies)
	if len(tickers) == 0 {
		return
	}

	mu.Lock()
	stats.ArticlesMatched++
	mu.Unlock()

	// Dedup gate before the expensive scoring call. The unique constraint
	// at insert time remains the authoritative guard.
	type candidate struct {
		ticker      string
		fingerprint string
	}
	var candidates []candidate
	for _, ticker := range tickers {
		fp := Fingerprint(ticker, article.SourceURL)
		seen, err := s.sentimentRepo.Exists(ctx, fp)
		if err != nil {
			s.logger.Error("Failed to check fingerprint",
				logger.ErrorField(err), logger.StringField("fingerprint", fp))
			continue
		}
		if seen {
			mu.Lock()
			stats.DuplicateSkips++
			mu.Unlock()
			continue
		}
		candidates = append(candidates, candidate{ticker: ticker, fingerprint: fp})
	}
	if len(candidates) == 0 {
		return
	}

	scoringSem <- struct{}{}
	result, err := s.scorer.Score(ctx, article.Text())
	<-scoringSem

	if err != nil {
		s.logger.Error("Failed to score article, skipping",
			logger.ErrorField(err),
			logger.StringField("title", article.Title),
			logger.StringField("url", article.SourceURL),
		)
		mu.Lock()
		stats.ScoreErrors++
		mu.Unlock()
		return
	}

	for _, cand := range candidates {
		confidence := result.Confidence
		sentiment := &entity.ArticleSentiment{
			Fingerprint: cand.fingerprint,
			Ticker:      cand.ticker,
			PublishedAt: article.PublishedAt,
			Polarity:    result.Polarity,
			Label:       result.Label,
			Confidence:  &confidence,
		}

		inserted, err := s.sentimentRepo.CreateIgnoreConflict(ctx, sentiment)
		if err != nil {
			s.logger.Error("Failed to persist article sentiment",
				logger.ErrorField(err), logger.StringField("ticker", cand.ticker))
			continue
		}

		mu.Lock()
		if inserted {
			stats.Persisted++
		} else {
			stats.DuplicateSkips++
		}
		mu.Unlock()
	}
}

// acquireLock takes the ingestion run lock so two cron triggers never
// overlap. Without a Redis client the lock is skipped.
func (s *ingestionService) acquireLock(ctx context.Context) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}

	ttl := defaultLockTTL
	if s.cfg.Ingestion.LockTTL != "" {
		if parsed, err := time.ParseDuration(s.cfg.Ingestion.LockTTL); err == nil {
			ttl = parsed
		}
	}

	ok, err := s.redisClient.SetNX(ctx, common.RedisKeyIngestionLock, time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire ingestion lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}

	return func() {
		if err := s.redisClient.Del(context.Background(), common.RedisKeyIngestionLock).Err(); err != nil {
			s.logger.Error("Failed to release ingestion lock", logger.ErrorField(err))
		}
	}, nil
}

func (s *ingestionService) setStatus(ctx context.Context, run *entity.BatchRun, status string) {
	run.Status = status
	if err := s.batchRunRepo.Update(ctx, run); err != nil {
		s.logger.Error("Failed to update run status",
			logger.ErrorField(err), logger.StringField("status", status))
	}
}

func (s *ingestionService) finalizeRun(run *entity.BatchRun, stats *dto.RunStats, status string, runErr error) {
	run.Status = status
	run.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if runErr != nil {
		run.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	}
	if payload, err := json.Marshal(stats); err == nil {
		run.Result = payload
	}

	// Finalization uses a fresh context so a cancelled run still records
	// its outcome.
	if err := s.batchRunRepo.Update(context.Background(), run); err != nil {
		s.logger.Error("Failed to finalize batch run", logger.ErrorField(err))
	}
}

func (s *ingestionService) notifyRanking(date time.Time, scores []entity.CompanyScore) {
	if s.notifier == nil || len(scores) == 0 {
		return
	}

	topN := s.cfg.Telegram.TopN
	if topN <= 0 {
		topN = 10
	}

	ranked := make([]telegram.RankedScore, 0, len(scores))
	for _, score := range scores {
		ranked = append(ranked, telegram.RankedScore{
			Ticker:       score.Ticker,
			Score:        score.Score,
			ArticleCount: score.ArticleCount,
			Rank:         score.Rank,
		})
	}

	if err := s.notifier.SendMessage(telegram.FormatDailyRanking(date, ranked, topN)); err != nil {
		s.logger.Error("Failed to send ranking notification", logger.ErrorField(err))
	}
}

func (s *ingestionService) publishScoresUpdated(ctx context.Context, date time.Time, companiesScored int) {
	if s.redisClient == nil {
		return
	}

	err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamScoresUpdated,
		MaxLen: s.cfg.Redis.StreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"date":             date.Format(utils.DateLayout),
			"companies_scored": companiesScored,
		},
	}).Err()
	if err != nil {
		s.logger.Error("Failed to publish scores.updated event", logger.ErrorField(err))
	}
}
