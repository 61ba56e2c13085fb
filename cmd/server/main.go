// Package main provides the entry point for the AI generation config console.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-config-console/internal/api/handlers"
	"ai-config-console/internal/api/routes"
	"ai-config-console/internal/config"
	"ai-config-console/internal/crypto"
	"ai-config-console/internal/database"
	"ai-config-console/internal/repository"
	"ai-config-console/internal/service/generation"
	"ai-config-console/internal/service/lifecycle"
	"ai-config-console/internal/service/llm"
	"ai-config-console/internal/service/metrics"
	"ai-config-console/internal/service/playground"
	"ai-config-console/internal/service/ranker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		return err
	}

	encryptor, err := crypto.New(cfg.Encryption.Key)
	if err != nil {
		return err
	}

	_ = db.SeedDefaultProviders(&cfg.Providers, encryptor)
	_ = db.SeedDefaultModels()
	_ = db.SeedDefaultPrompts()

	providerRepo := repository.NewProviderRepository(db.DB)
	modelRepo := repository.NewModelRepository(db.DB)
	promptRepo := repository.NewPromptRepository(db.DB)
	logRepo := repository.NewGenerationLogRepository(db.DB)

	dispatcher := llm.NewDispatcher(encryptor, logger)
	executor := generation.NewExecutor(promptRepo, modelRepo, providerRepo, logRepo, dispatcher, logger)

	lifecycleService := lifecycle.NewService(promptRepo, logRepo, logger)
	rankerService := ranker.NewService(modelRepo, logger)
	orchestrator := playground.NewOrchestrator(executor, cfg.Playground.CompareTimeout, logger)
	metricsService := metrics.NewService(logRepo, logger)

	gin.SetMode(cfg.Server.Mode)

	engine := routes.Setup(routes.Handlers{
		Provider:   handlers.NewProviderHandler(providerRepo, modelRepo, encryptor, logger),
		Model:      handlers.NewModelHandler(rankerService, modelRepo, logger),
		Prompt:     handlers.NewPromptHandler(lifecycleService, logger),
		Playground: handlers.NewPlaygroundHandler(orchestrator, logger),
		Dashboard:  handlers.NewDashboardHandler(metricsService, logger),
	}, cfg.Server.CORSOrigins, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = level
	}
	return zapCfg.Build()
}
