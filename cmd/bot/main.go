package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fixotrip/rescue-bot/internal/bot"
	"github.com/fixotrip/rescue-bot/internal/classifier"
	"github.com/fixotrip/rescue-bot/internal/fonnte"
	"github.com/fixotrip/rescue-bot/internal/server"
	"github.com/fixotrip/rescue-bot/internal/storage"
	"github.com/fixotrip/rescue-bot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Initialize classifier
	var clf classifier.Classifier = classifier.NewKeywordClassifier()
	if cfg.Classifier.UseGPT {
		logger.Info("Using GPT classifier", zap.String("model", cfg.OpenAI.Model))
		clf = classifier.NewGPTClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			logger,
		)
	}

	// Initialize delivery gateway
	gateway, err := fonnte.New(fonnte.Config{
		Token:       cfg.Fonnte.Token,
		BaseURL:     cfg.Fonnte.BaseURL,
		CountryCode: cfg.Fonnte.CountryCode,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Failed to create Fonnte client", zap.Error(err))
	}

	engine := bot.New(store, clf, gateway, cfg.Admin.Phone, logger)
	handler := server.New(engine, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runSweeper(ctx, store, cfg.Conversation.SweepInterval, cfg.Conversation.MaxIdle, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	go func() {
		logger.Info("FixoTrip bot running", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

// runSweeper evicts conversations idle longer than maxAge on a fixed tick.
func runSweeper(ctx context.Context, store storage.Storage, interval, maxAge time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.SweepExpired(ctx, maxAge, time.Now())
			if err != nil {
				logger.Error("Sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("Swept idle conversations", zap.Int("removed", removed))
			}
		}
	}
}
