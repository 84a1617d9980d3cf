// Package setup wires configuration, storage, inference clients, and the
// processing pipeline into a runnable application.
package setup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/api"
	"github.com/physician-notetaker/internal/cache"
	"github.com/physician-notetaker/internal/config"
	"github.com/physician-notetaker/internal/database"
	"github.com/physician-notetaker/internal/domain"
	"github.com/physician-notetaker/internal/feedback"
	"github.com/physician-notetaker/internal/nlp"
	"github.com/physician-notetaker/internal/repository"
	"github.com/physician-notetaker/internal/service"
	"github.com/physician-notetaker/pkg/inference"
)

// App holds the wired components of the server application.
type App struct {
	ConfigManager *config.Manager
	Logger        *logrus.Logger
	DB            *database.DB
	Cache         *cache.ResultCache
	FeedbackStore feedback.Store
	Pipeline      *service.Pipeline
	Server        *api.Server
}

// NewLogger builds a logger from configuration. Unknown levels fall back
// to info, unknown formats to JSON.
func NewLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// NewApp wires the full server application: config, database with
// migrations, cache, inference clients, pipeline, feedback store, and the
// HTTP server. Close must be called when the app shuts down.
func NewApp(ctx context.Context) (*App, error) {
	configManager, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := configManager.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	cfg := configManager.GetConfig()
	logger := NewLogger(cfg.Logging)

	if path := cfg.Database.MigrationsPath; path != "" {
		if err := database.ApplyMigrations(configManager.DatabaseURL(), path, logger); err != nil {
			return nil, err
		}
	}

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	resultCache, err := cache.New(cfg.Cache, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing result cache: %w", err)
	}

	feedbackStore, err := feedback.NewPostgresStoreFromURL(configManager.DatabaseURL())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing feedback store: %w", err)
	}

	pipeline := service.NewPipeline(
		logger,
		newRecognizer(cfg.Inference, logger),
		service.NewSentimentService(logger, newPolarityClassifier(cfg.Inference, logger)),
		resultCache,
		repository.NewNoteRepository(db.Pool, logger),
	)

	server := api.NewServer(configManager, pipeline, feedbackStore, logger)
	server.SetHealthCheck(db.Health)

	return &App{
		ConfigManager: configManager,
		Logger:        logger,
		DB:            db,
		Cache:         resultCache,
		FeedbackStore: feedbackStore,
		Pipeline:      pipeline,
		Server:        server,
	}, nil
}

// Close releases all resources held by the app.
func (a *App) Close() {
	if a.FeedbackStore != nil {
		if err := a.FeedbackStore.Close(); err != nil {
			a.Logger.WithError(err).Warn("Closing feedback store failed")
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.WithError(err).Warn("Closing result cache failed")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// newRecognizer selects the entity recognizer: the remote model server when
// an endpoint is configured, otherwise the in-process rule matcher.
func newRecognizer(cfg domain.InferenceConfig, logger *logrus.Logger) domain.EntityRecognizer {
	if cfg.NER.BaseURL != "" {
		return inference.NewNERClient(cfg.NER, logger)
	}
	logger.Info("No NER endpoint configured, using rule-based recognizer")
	return nlp.NewRuleRecognizer(logger)
}

// newPolarityClassifier returns the remote polarity client, or nil when no
// endpoint is configured. Without a classifier the sentiment rules alone
// decide, defaulting to Neutral.
func newPolarityClassifier(cfg domain.InferenceConfig, logger *logrus.Logger) domain.PolarityClassifier {
	if cfg.Polarity.BaseURL == "" {
		logger.Info("No polarity endpoint configured, sentiment falls back to lexicon rules")
		return nil
	}
	return inference.NewPolarityClient(cfg.Polarity, logger)
}
