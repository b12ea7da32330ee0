package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newspulse/internal/ingestion/config"
	"newspulse/internal/ingestion/repository"
	"newspulse/internal/ingestion/service"
	"newspulse/pkg/logger"
	"newspulse/pkg/postgres"
	"newspulse/pkg/redis"
	"newspulse/pkg/telegram"
	"newspulse/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var (
	configPath string
	runDate    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the ingestion service with scheduled batch runs",
	Run:   runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Executes a single batch run and exits",
	Run:   runOnce,
}

type app struct {
	cfg       *config.Config
	logger    *logger.Logger
	ingestion service.IngestionService
	cleanup   func()
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Repositories
	companyRepo := repository.NewCompanyRepository(db.DB)
	sentimentRepo := repository.NewArticleSentimentRepository(db.DB)
	scoreRepo := repository.NewCompanyScoreRepository(db.DB)
	batchRunRepo := repository.NewBatchRunRepository(db.DB)
	newsRepo := repository.NewGoogleNewsRepository(cfg, appLogger)

	// Classifier collaborator: the model handle is acquired once here and
	// passed into the scorer explicitly.
	var classifierRepo repository.ClassifierRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		classifierRepo, err = repository.NewGeminiClassifierRepository(cfg, appLogger, genAiClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini classifier: %w", err)
		}
	case "lexicon", "":
		appLogger.Info("No external classifier configured, using lexicon fallback")
	default:
		return nil, fmt.Errorf("invalid AI provider: %s", cfg.AI.Provider)
	}

	var notifier telegram.Notifier = telegram.NoopNotifier{}
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
		}
	}

	scorer := service.NewScorer(classifierRepo, appLogger)
	aggregator := service.NewAggregator(sentimentRepo, scoreRepo, appLogger)
	ingestionSvc := service.NewIngestionService(
		cfg,
		appLogger,
		companyRepo,
		newsRepo,
		sentimentRepo,
		batchRunRepo,
		scorer,
		aggregator,
		redisClient.Client,
		notifier,
	)

	cleanup := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = redisClient.Close()
		_ = appLogger.Sync()
	}

	return &app{
		cfg:       cfg,
		logger:    appLogger,
		ingestion: ingestionSvc,
		cleanup:   cleanup,
	}, nil
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := buildApp(ctx)
	if err != nil {
		log.Fatalf("Failed to build ingestion service: %v", err)
	}
	defer application.cleanup()

	application.logger.Info("Starting Ingestion Service",
		logger.StringField("name", application.cfg.App.Name),
		logger.StringField("cron_spec", application.cfg.Ingestion.CronSpec),
	)

	c := cron.New()
	_, err = c.AddFunc(application.cfg.Ingestion.CronSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 4*time.Hour)
		defer cancel()

		if _, err := application.ingestion.Run(runCtx, time.Now().UTC()); err != nil {
			application.logger.Error("Batch run failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		application.logger.Fatal("Invalid cron spec", logger.ErrorField(err))
	}

	c.Start()
	application.logger.Info("Ingestion service started. Waiting for scheduled runs...")

	<-ctx.Done()

	application.logger.Info("Shutting down ingestion service...")
	<-c.Stop().Done()
	application.logger.Info("Ingestion service stopped.")
}

func runOnce(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := buildApp(ctx)
	if err != nil {
		log.Fatalf("Failed to build ingestion service: %v", err)
	}
	defer application.cleanup()

	targetDate := time.Now().UTC()
	if runDate != "" {
		targetDate, err = utils.ParseDate(runDate)
		if err != nil {
			application.logger.Fatal("Invalid --date, use YYYY-MM-DD", logger.ErrorField(err))
		}
	}

	stats, err := application.ingestion.Run(ctx, targetDate)
	if err != nil {
		application.logger.Fatal("Batch run failed", logger.ErrorField(err))
	}

	application.logger.Info("Batch run finished",
		logger.IntField("persisted", stats.Persisted),
		logger.IntField("companies_scored", stats.CompaniesScored),
	)
}

func main() {
	rootCmd := &cobra.Command{Use: "ingestion-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-ingestion.yaml", "Path to the configuration file")
	runCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-ingestion.yaml", "Path to the configuration file")
	runCmd.Flags().StringVarP(&runDate, "date", "d", "", "Target date (YYYY-MM-DD), defaults to today")

	rootCmd.AddCommand(serveCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ingestion-service CLI: %s\n", err)
		os.Exit(1)
	}
}
