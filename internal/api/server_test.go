package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physician-notetaker/internal/domain"
	"github.com/physician-notetaker/internal/feedback"
	"github.com/physician-notetaker/internal/nlp"
	"github.com/physician-notetaker/internal/service"
)

// stubConfigManager is a fixed-value ConfigManager for handler tests.
type stubConfigManager struct {
	config domain.Config
}

func (s *stubConfigManager) GetConfig() *domain.Config                   { return &s.config }
func (s *stubConfigManager) GetServerConfig() *domain.ServerConfig       { return &s.config.Server }
func (s *stubConfigManager) GetDatabaseConfig() *domain.DatabaseConfig   { return &s.config.Database }
func (s *stubConfigManager) GetInferenceConfig() *domain.InferenceConfig { return &s.config.Inference }
func (s *stubConfigManager) Validate() error                             { return nil }
func (s *stubConfigManager) DatabaseURL() string                         { return "" }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return logger
}

func newTestServer(t *testing.T, store feedback.Store) *Server {
	t.Helper()

	logger := testLogger()
	pipeline := service.NewPipeline(
		logger,
		nlp.NewRuleRecognizer(logger),
		service.NewSentimentService(logger, nil),
		nil,
		nil,
	)

	cfg := &stubConfigManager{}
	cfg.config.Server = domain.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	return NewServer(cfg, pipeline, store, logger)
}

type jsonBody map[string]any

// failingRecognizer simulates an unreachable model server.
type failingRecognizer struct{}

func (failingRecognizer) Recognize(context.Context, string) ([]domain.Entity, error) {
	return nil, errors.New("connection refused")
}

func doRequest(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	t.Run("Degraded_When_Probe_Fails", func(t *testing.T) {
		s.SetHealthCheck(func(context.Context) error {
			return errors.New("connection refused")
		})
		defer s.SetHealthCheck(nil)

		w := doRequest(s, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "degraded")
	})
}

func TestServer_ProcessTranscript(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("Successful_Processing", func(t *testing.T) {
		w := doRequest(s, http.MethodPost, "/api/v1/notes", jsonBody{
			"transcript": "Doctor: How are you?\nPatient: I still have occasional back pain but it's better.",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var result domain.TranscriptResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.NotNil(t, result.MedicalSummary.CurrentStatus)
		assert.Equal(t, "Occasional back pain (improving)", *result.MedicalSummary.CurrentStatus)
		require.NotNil(t, result.SentimentIntent.Sentiment)
		assert.Equal(t, "Neutral", *result.SentimentIntent.Sentiment)
	})

	t.Run("Missing_Transcript", func(t *testing.T) {
		w := doRequest(s, http.MethodPost, "/api/v1/notes", jsonBody{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrCodeInvalidInput)
	})

	t.Run("Untagged_Transcript_Yields_Sparse_Result", func(t *testing.T) {
		w := doRequest(s, http.MethodPost, "/api/v1/notes", jsonBody{"transcript": "free dictation"})
		require.Equal(t, http.StatusOK, w.Code)

		var result domain.TranscriptResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Nil(t, result.SentimentIntent.Sentiment)
		assert.Empty(t, result.MedicalSummary.Symptoms)
	})

	t.Run("Recognizer_Failure_Maps_To_502", func(t *testing.T) {
		logger := testLogger()
		pipeline := service.NewPipeline(
			logger,
			failingRecognizer{},
			service.NewSentimentService(logger, nil),
			nil,
			nil,
		)
		cfg := &stubConfigManager{}
		broken := NewServer(cfg, pipeline, nil, logger)

		w := doRequest(broken, http.MethodPost, "/api/v1/notes", jsonBody{"transcript": "Patient: Hi."})
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrCodeCollaborator)
	})

	t.Run("Store_Without_Repository", func(t *testing.T) {
		w := doRequest(s, http.MethodPost, "/api/v1/notes", jsonBody{
			"transcript": "Patient: Hi.",
			"store":      true,
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_Notes_Unconfigured(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/api/v1/notes/some-id", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/notes", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Feedback(t *testing.T) {
	store, err := feedback.NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	defer store.Close()

	s := newTestServer(t, store)

	t.Run("Save_And_List", func(t *testing.T) {
		w := doRequest(s, http.MethodPost, "/api/v1/feedback", jsonBody{
			"note_hash":      "abc123",
			"section":        "soap_assessment",
			"suggested_text": "Mild, improving",
			"corrected_text": "Moderate",
			"user_agreed":    false,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(s, http.MethodGet, "/api/v1/feedback", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "abc123")
	})

	t.Run("Unknown_Section_Rejected", func(t *testing.T) {
		w := doRequest(s, http.MethodPost, "/api/v1/feedback", jsonBody{
			"note_hash": "abc123",
			"section":   "margins",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrCodeValidation)
	})

	t.Run("Unconfigured_Store", func(t *testing.T) {
		bare := newTestServer(t, nil)
		w := doRequest(bare, http.MethodPost, "/api/v1/feedback", jsonBody{
			"note_hash": "abc123",
			"section":   "soap_plan",
		})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

