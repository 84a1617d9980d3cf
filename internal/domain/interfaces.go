package domain

import (
	"context"
)

// EntityRecognizer labels clinical spans in text. Implementations may be
// in-process rule matchers or remote model servers; the pipeline treats
// them as a black box returning unordered spans.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// PolarityClassifier returns a coarse polarity judgment for a text span.
// Expected values are PolarityPositive and PolarityNegative; anything else
// degrades to a Neutral sentiment downstream.
type PolarityClassifier interface {
	ClassifyPolarity(ctx context.Context, text string) (string, error)
}

// NoteRepository persists processing results.
type NoteRepository interface {
	Save(ctx context.Context, record *NoteRecord) error
	GetByID(ctx context.Context, id string) (*NoteRecord, error)
	GetByHash(ctx context.Context, transcriptHash string) (*NoteRecord, error)
	List(ctx context.Context, limit, offset int) ([]*NoteRecord, error)
	Delete(ctx context.Context, id string) error
}

// ResultCache caches pipeline results keyed by transcript hash.
type ResultCache interface {
	Get(ctx context.Context, transcriptHash string) (*TranscriptResult, bool, error)
	Set(ctx context.Context, transcriptHash string, result *TranscriptResult) error
}

// ConfigManager provides validated application configuration.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	GetInferenceConfig() *InferenceConfig
	Validate() error
	DatabaseURL() string
}
