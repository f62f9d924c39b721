// Package inference wraps the external model capabilities assistd depends
// on: text embedding and text generation. Both are single blocking calls
// per request; failures surface as ErrService and are never retried here.
package inference

import (
	"context"
	"errors"
)

// ErrService indicates a non-success response from an inference capability.
var ErrService = errors.New("inference service error")

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds multiple texts, one vector per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
