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

	"golang-stock-analyzer/internal/analyzer/cache"
	"golang-stock-analyzer/internal/analyzer/config"
	delivery "golang-stock-analyzer/internal/analyzer/delivery/http"
	_ "golang-stock-analyzer/internal/analyzer/docs"
	"golang-stock-analyzer/internal/analyzer/hub"
	"golang-stock-analyzer/internal/analyzer/pool"
	"golang-stock-analyzer/internal/analyzer/registry"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/internal/analyzer/service"
	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/postgres"
	"golang-stock-analyzer/pkg/redis"
	"golang-stock-analyzer/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the analyzer service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Analyzer Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	var reportRepo repository.AnalysisReportRepository
	if cfg.Database.Enabled {
		postgresCfg := postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}
		db, err := postgres.NewDB(postgresCfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			defer sqlDB.Close()
		}
		reportRepo = repository.NewAnalysisReportRepository(db.DB)
	}

	// Initialize Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisCfg := redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}
		redisClient, err = redis.NewClient(redisCfg)
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
	}

	// Initialize Telegram notifier
	var notifier telegram.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize repositories
	marketDataRepo, err := repository.NewYahooFinanceRepository(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize market data repository", logger.ErrorField(err))
	}
	newsRepo := repository.NewNewsRepository(cfg, appLogger)

	// Initialize AI provider
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		aiRepo, err = repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
		}
	case "", "none":
		appLogger.Warn("No AI provider configured, narratives use the rule-based fallback")
	default:
		appLogger.Fatal("Invalid AI provider specified in config", logger.StringField("provider", cfg.AI.Provider))
	}

	// Initialize core components
	resultCache := cache.New(cfg.Analyzer.PriceCacheTTL, cfg.Analyzer.FundamentalCacheTTL, cfg.Analyzer.NewsCacheTTL)
	taskRegistry := registry.New()
	workerPool := pool.New(cfg.Analyzer.MaxConcurrentJobs, appLogger)
	eventHub := hub.New(cfg.Analyzer.QueueSize, appLogger)

	analyzer := service.NewStreamingAnalyzer(cfg, appLogger, resultCache, eventHub, marketDataRepo, newsRepo, aiRepo)
	orchestrator := service.NewOrchestrator(ctx, cfg, appLogger, taskRegistry, workerPool, eventHub, analyzer, reportRepo, redisClient, notifier)

	// Start the watchlist scheduler
	watchlistScheduler := service.NewWatchlistScheduler(cfg, appLogger, orchestrator)
	if err := watchlistScheduler.Start(); err != nil {
		appLogger.Fatal("Failed to start watchlist scheduler", logger.ErrorField(err))
	}
	defer watchlistScheduler.Stop()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	analysisHandler := delivery.NewAnalysisHandler(orchestrator, appLogger)
	analysisHandler.RegisterRoutes(apiV1)

	streamHandler := delivery.NewStreamHandler(cfg, eventHub, appLogger)
	streamHandler.RegisterRoutes(apiV1)

	wsHandler := delivery.NewWSHandler(cfg, eventHub, appLogger)
	wsHandler.RegisterRoutes(apiV1)

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Worker pool forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Analyzer API
// @version 1.0
// @description Streaming stock analysis orchestrator.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "analyzer-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analyzer.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analyzer-service CLI: %s\n", err)
		os.Exit(1)
	}
}
