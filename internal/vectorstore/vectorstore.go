// Package vectorstore defines the vector search interface for assistd.
//
// Embedding vectors for notes and tasks live in per-type collections.
// Every search and upsert is scoped by the owning user id through payload
// filtering; a missing user id is an error, never an unscoped query.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrConnectionFailed indicates gRPC connection issues.
	ErrConnectionFailed = errors.New("failed to connect to vector store")

	// ErrMissingUser is returned when an operation lacks a user id.
	ErrMissingUser = errors.New("user id required for vector operation")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid vector store configuration")
)

// Point is a vector with its display payload, keyed by the source record id.
type Point struct {
	// ID is the source record id (task or note).
	ID string

	// UserID is the owning user. Stored in the payload for filtering.
	UserID string

	// Vector is the embedding. Length must match the collection size.
	Vector []float32

	// Payload carries the record's displayable fields so search results
	// can be rendered without a second store lookup.
	Payload map[string]any
}

// ScoredPoint is a search hit with its similarity score.
type ScoredPoint struct {
	Point
	// Score is the cosine similarity of the hit, in [0, 1) for
	// normalized embeddings.
	Score float32
}

// SearchParams tunes a single ANN query.
type SearchParams struct {
	// Limit is the maximum number of hits (K).
	Limit int

	// CandidatePool is the search pool size examined by the index
	// (hnsw_ef). Zero leaves the server default.
	CandidatePool int
}

// Store is the vector search surface consumed by the semantic retriever and
// the embedding indexer.
type Store interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error

	// Search returns up to params.Limit points nearest to vector in the
	// given collection, restricted to the user's points, best first.
	Search(ctx context.Context, collection, userID string, vector []float32, params SearchParams) ([]ScoredPoint, error)

	// Upsert writes points into the collection, replacing existing points
	// with the same source record id.
	Upsert(ctx context.Context, collection string, points []Point) error

	// DeletePoints removes points by source record id.
	DeletePoints(ctx context.Context, collection string, ids []string) error

	// Close releases the connection.
	Close() error
}
