package config

import (
	"newspulse/pkg/config"
)

// Ingestion holds the batch pipeline configuration.
type Ingestion struct {
	CronSpec               string   `mapstructure:"cron_spec"`
	MaxConcurrentCompanies int      `mapstructure:"max_concurrent_companies"`
	MaxConcurrentScoring   int      `mapstructure:"max_concurrent_scoring"`
	MaxArticlesPerCompany  int      `mapstructure:"max_articles_per_company"`
	MaxArticleAgeInDays    int      `mapstructure:"max_article_age_in_days"`
	FetchFullContent       bool     `mapstructure:"fetch_full_content"`
	BlacklistedDomains     []string `mapstructure:"blacklisted_domains"`
	LockTTL                string   `mapstructure:"lock_ttl"`
}

// News holds the news source configuration.
type News struct {
	Language            string `mapstructure:"language"`
	Country             string `mapstructure:"country"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// AI holds configuration for the sentiment classifier provider.
// Provider "lexicon" selects the offline keyword-based fallback.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Gemini holds the configuration for the Gemini classifier.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	TopN     int    `mapstructure:"top_n"`
}

// Config holds the full configuration for the ingestion service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	Ingestion Ingestion       `mapstructure:"ingestion"`
	News      News            `mapstructure:"news"`
	AI        AI              `mapstructure:"ai"`
	Gemini    Gemini          `mapstructure:"gemini"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Load loads the ingestion configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
