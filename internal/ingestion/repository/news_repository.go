package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"newspulse/internal/entity"
	"newspulse/internal/ingestion/config"
	"newspulse/internal/ingestion/dto"
	"newspulse/pkg/logger"
	"newspulse/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// NewsRepository is the news source collaborator: it produces raw article
// records for a company's keyword set. Calls may fail per company; the
// orchestrator treats such failures as skippable units.
type NewsRepository interface {
	Fetch(ctx context.Context, company entity.Company) ([]dto.RawArticle, error)
}

type googleNewsRepository struct {
	cfg       *config.Config
	logger    *logger.Logger
	parser    *gofeed.Parser
	client    *http.Client
	feedCache *cache.Cache
	limiter   *rate.Limiter
}

// NewGoogleNewsRepository creates a NewsRepository backed by Google News RSS
// search feeds.
func NewGoogleNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	maxRPM := cfg.News.MaxRequestPerMinute
	if maxRPM <= 0 {
		maxRPM = 30
	}

	return &googleNewsRepository{
		cfg:       cfg,
		logger:    log,
		parser:    gofeed.NewParser(),
		client:    &http.Client{Timeout: 30 * time.Second},
		feedCache: cache.New(5*time.Minute, 10*time.Minute),
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxRPM)), 1),
	}
}

// Fetch queries one RSS search feed per company, built from its keyword set.
func (r *googleNewsRepository) Fetch(ctx context.Context, company entity.Company) ([]dto.RawArticle, error) {
	feedURL := r.buildFeedURL(company)

	if cached, found := r.feedCache.Get(feedURL); found {
		return cached.([]dto.RawArticle), nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	r.logger.Info("Fetching RSS feed",
		logger.StringField("ticker", company.Ticker),
		logger.StringField("url", feedURL),
	)

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed for %s: %w", company.Ticker, err)
	}

	// Newest first, so per-company article caps keep the freshest items.
	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	maxAgeDays := r.cfg.Ingestion.MaxArticleAgeInDays
	if maxAgeDays <= 0 {
		maxAgeDays = 7
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)

	var articles []dto.RawArticle
	for _, item := range feed.Items {
		if r.cfg.Ingestion.MaxArticlesPerCompany > 0 && len(articles) >= r.cfg.Ingestion.MaxArticlesPerCompany {
			break
		}
		article, ok := r.toRawArticle(ctx, item, cutoff)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}

	r.feedCache.Set(feedURL, articles, cache.DefaultExpiration)

	return articles, nil
}

func (r *googleNewsRepository) buildFeedURL(company entity.Company) string {
	terms := make([]string, 0, len(company.Keywords))
	for _, kw := range company.Keywords {
		terms = append(terms, fmt.Sprintf("%q", kw))
	}
	query := strings.Join(terms, " OR ")

	lang := r.cfg.News.Language
	country := r.cfg.News.Country
	if lang == "" {
		lang = "en-US"
	}
	if country == "" {
		country = "US"
	}

	return fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		url.QueryEscape(query), lang, country, country, strings.Split(lang, "-")[0])
}

func (r *googleNewsRepository) toRawArticle(ctx context.Context, item *gofeed.Item, cutoff time.Time) (dto.RawArticle, bool) {
	if item.PublishedParsed == nil {
		r.logger.Warn("Skipping item without published date", logger.StringField("link", item.Link))
		return dto.RawArticle{}, false
	}
	if item.PublishedParsed.Before(cutoff) {
		return dto.RawArticle{}, false
	}
	if item.Title == "" || item.Link == "" {
		return dto.RawArticle{}, false
	}

	parsedURL, err := url.Parse(item.Link)
	if err != nil {
		r.logger.Warn("Skipping item with unparseable link", logger.StringField("link", item.Link))
		return dto.RawArticle{}, false
	}
	if utils.ContainsString(r.cfg.Ingestion.BlacklistedDomains, parsedURL.Hostname()) {
		r.logger.Warn("Skipping item from blacklisted domain", logger.StringField("domain", parsedURL.Hostname()))
		return dto.RawArticle{}, false
	}

	article := dto.RawArticle{
		Title:       utils.CleanToValidUTF8(item.Title),
		Body:        utils.SafeText(item.Description),
		Source:      parsedURL.Hostname(),
		SourceURL:   item.Link,
		PublishedAt: *item.PublishedParsed,
	}

	if r.cfg.Ingestion.FetchFullContent {
		body, err := r.extractContent(ctx, item.Link)
		if err != nil {
			// Feed description still gives the scorer something to work with.
			r.logger.Warn("Failed to extract full content, keeping description",
				logger.ErrorField(err), logger.StringField("url", item.Link))
		} else if body != "" {
			article.Body = body
		}
	}

	return article, true
}

// extractContent downloads the article page and extracts readable body text.
func (r *googleNewsRepository) extractContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article page, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}

	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	return utils.SafeText(docHTML.Text()), nil
}
