package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newspulse/internal/api/config"
	apihttp "newspulse/internal/api/delivery/http"
	_ "newspulse/internal/api/docs"
	apirepository "newspulse/internal/api/repository"
	apiservice "newspulse/internal/api/service"
	"newspulse/internal/ingestion/repository"
	"newspulse/internal/ingestion/service"
	"newspulse/pkg/logger"
	"newspulse/pkg/postgres"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	echoSwagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the API service",
	Run:   runServe,
}

// @title newspulse API
// @version 1.0
// @description Company news sentiment ranking API
// @BasePath /api/v1
func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

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
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	scoreReadRepo := apirepository.NewScoreReadRepository(db.DB)
	sentimentReadRepo := apirepository.NewSentimentReadRepository(db.DB)

	// The recompute endpoint reuses the pipeline's aggregator directly so both
	// paths produce identical score rows.
	sentimentRepo := repository.NewArticleSentimentRepository(db.DB)
	scoreRepo := repository.NewCompanyScoreRepository(db.DB)
	aggregator := service.NewAggregator(sentimentRepo, scoreRepo, appLogger)

	rankingTTL := 5 * time.Minute
	if cfg.Cache.RankingTTL != "" {
		if parsed, err := time.ParseDuration(cfg.Cache.RankingTTL); err == nil {
			rankingTTL = parsed
		}
	}

	scoreService := apiservice.NewScoreService(scoreReadRepo, aggregator, appLogger, rankingTTL)
	sentimentService := apiservice.NewSentimentService(sentimentReadRepo, appLogger)

	scoreHandler := apihttp.NewScoreHandler(scoreService, appLogger)
	sentimentHandler := apihttp.NewSentimentHandler(sentimentService, appLogger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/api/v1")
	scoreHandler.RegisterRoutes(v1.Group("/scores"))
	sentimentHandler.RegisterRoutes(v1.Group("/sentiments"))

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	go func() {
		appLogger.Info("Starting API Service", logger.StringField("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down API service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down server gracefully", logger.ErrorField(err))
	}

	if sqlDB, err := db.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLogger.Info("API service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "api-service"}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
