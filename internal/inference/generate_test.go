package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarslabs/assistd/internal/config"
)

func genConfig(baseURL string) config.GenerationConfig {
	return config.GenerationConfig{
		BaseURL:     baseURL,
		Model:       "mistralai/Mistral-7B-Instruct-v0.2",
		APIKey:      config.Secret("test-key"),
		MaxTokens:   256,
		Temperature: 0.2,
		TopP:        0.9,
		Timeout:     5 * time.Second,
	}
}

func TestGenerateSendsFixedSamplingConfig(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "You have 2 pending tasks."}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	svc, err := NewGenerationService(genConfig(srv.URL + "/v1"))
	require.NoError(t, err)

	answer, err := svc.Generate(context.Background(), "list my tasks")
	require.NoError(t, err)
	assert.Equal(t, "You have 2 pending tasks.", answer)

	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.2", captured.Model)
	assert.Equal(t, 256, captured.MaxTokens)
	assert.InDelta(t, 0.2, captured.Temperature, 1e-9)
	assert.InDelta(t, 0.9, captured.TopP, 1e-9)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "list my tasks", captured.Messages[0].Content)
}

func TestGenerateNonSuccessIsServiceError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model overloaded", "type": "server_error"},
		})
	}))
	defer srv.Close()

	svc, err := NewGenerationService(genConfig(srv.URL + "/v1"))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrService)
	assert.Contains(t, err.Error(), "model overloaded")
	// Single attempt, no retries.
	assert.Equal(t, 1, calls)
}

func TestGenerateEmptyChoicesIsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	svc, err := NewGenerationService(genConfig(srv.URL + "/v1"))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrService)
}

func TestGenerateCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	svc, err := NewGenerationService(genConfig(srv.URL + "/v1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Generate(ctx, "anything")
	require.Error(t, err)
}

func TestNewGenerationServiceRejectsMissingModel(t *testing.T) {
	_, err := NewGenerationService(config.GenerationConfig{BaseURL: "http://x"})
	require.Error(t, err)
}
