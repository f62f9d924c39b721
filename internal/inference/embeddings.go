package inference

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smarslabs/assistd/internal/config"
)

// EmbeddingService generates embeddings through an OpenAI-compatible
// endpoint (TEI or a hosted inference router) via langchaingo.
type EmbeddingService struct {
	embedder *embeddings.EmbedderImpl
	config   config.EmbeddingConfig
}

// NewEmbeddingService creates the embedding client.
func NewEmbeddingService(cfg config.EmbeddingConfig) (*EmbeddingService, error) {
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("embedding base URL and model required")
	}

	apiKey := cfg.APIKey.Value()
	if apiKey == "" {
		// langchaingo requires a token even for unauthenticated TEI.
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &EmbeddingService{embedder: embedder, config: cfg}, nil
}

// EmbedQuery embeds a single query string.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrService, err)
	}
	return vector, nil
}

// EmbedDocuments embeds multiple texts, one vector per input.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding documents: %v", ErrService, err)
	}
	return vectors, nil
}

var _ Embedder = (*EmbeddingService)(nil)
