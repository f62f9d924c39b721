package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/smarslabs/assistd/internal/config"
)

// Rate limiter defaults: 50 requests per minute with small bursts.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// GenerationService calls an OpenAI-compatible chat-completions endpoint.
//
// Each Generate call is a single attempt: a non-success response aborts the
// whole question rather than retrying with a partial answer.
type GenerationService struct {
	config     config.GenerationConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGenerationService creates the generation client.
func NewGenerationService(cfg config.GenerationConfig) (*GenerationService, error) {
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("generation base URL and model required")
	}

	return &GenerationService{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends the prompt with the fixed sampling configuration and
// returns the generated text.
func (s *GenerationService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req := chatRequest{
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		TopP:        s.config.TopP,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling generation request: %w", err)
	}

	url := strings.TrimSuffix(s.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.config.APIKey.IsSet() {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey.Value())
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp chatError
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("%w: status %d: %s", ErrService, resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrService, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrService, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrService)
	}

	return chatResp.Choices[0].Message.Content, nil
}

var _ Generator = (*GenerationService)(nil)
