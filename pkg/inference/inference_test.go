package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physician-notetaker/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return logger
}

func endpointConfig(baseURL string) domain.ModelEndpointConfig {
	return domain.ModelEndpointConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func TestNERClient_Recognize(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful_Recognition", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/ner", r.URL.Path)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "My back hurts.", req["text"])

			json.NewEncoder(w).Encode(map[string]any{
				"entities": []map[string]any{
					{"text": "back pain", "label": "SYMPTOM", "start": 3, "end": 12},
				},
			})
		}))
		defer server.Close()

		client := NewNERClient(endpointConfig(server.URL), testLogger())

		entities, err := client.Recognize(ctx, "My back hurts.")
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "back pain", entities[0].Text)
		assert.Equal(t, domain.LabelSymptom, entities[0].Label)
	})

	t.Run("Invalid_Labels_Dropped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"entities": []map[string]any{
					{"text": "back pain", "label": "SYMPTOM", "start": 0, "end": 9},
					{"text": "something", "label": "GIBBERISH", "start": 10, "end": 19},
				},
			})
		}))
		defer server.Close()

		client := NewNERClient(endpointConfig(server.URL), testLogger())

		entities, err := client.Recognize(ctx, "back pain something")
		require.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, domain.LabelSymptom, entities[0].Label)
	})

	t.Run("Server_Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewNERClient(endpointConfig(server.URL), testLogger())

		_, err := client.Recognize(ctx, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("Circuit_Opens_After_Repeated_Failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewNERClient(endpointConfig(server.URL), testLogger())

		for i := 0; i < 5; i++ {
			_, err := client.Recognize(ctx, "text")
			require.Error(t, err)
		}

		_, err := client.Recognize(ctx, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "circuit breaker is open")
	})
}

func TestPolarityClient_ClassifyPolarity(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful_Classification", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/polarity", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"label": "NEGATIVE", "score": 0.93})
		}))
		defer server.Close()

		client := NewPolarityClient(endpointConfig(server.URL), testLogger())

		label, err := client.ClassifyPolarity(ctx, "I hate this pain.")
		require.NoError(t, err)
		assert.Equal(t, domain.PolarityNegative, label)
	})

	t.Run("Malformed_Response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewPolarityClient(endpointConfig(server.URL), testLogger())

		_, err := client.ClassifyPolarity(ctx, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding response")
	})

	t.Run("Cancelled_Context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		client := NewPolarityClient(endpointConfig(server.URL), testLogger())

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.ClassifyPolarity(cancelled, "text")
		assert.Error(t, err)
	})
}
