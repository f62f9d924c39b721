// Package config provides configuration loading for assistd.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables. Each section carries its own defaults and
// validation.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig indicates a configuration value that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the complete assistd configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Store      StoreConfig      `koanf:"store"`
	Qdrant     QdrantConfig     `koanf:"qdrant"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
	Generation GenerationConfig `koanf:"generation"`
	Session    SessionConfig    `koanf:"session"`
	Retrieval  RetrievalConfig  `koanf:"retrieval"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	// Level is one of: debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// StoreConfig holds SQLite configuration for the structured store.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for tests.
	Path string `koanf:"path"`
	// BusyTimeout is applied via the busy_timeout pragma.
	BusyTimeout time.Duration `koanf:"busy_timeout"`
}

// QdrantConfig holds the vector search connection settings.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string `koanf:"host"`
	// Port is the Qdrant gRPC port (6334), not the HTTP REST port.
	Port   int  `koanf:"port"`
	UseTLS bool `koanf:"use_tls"`

	// NoteCollection and TaskCollection name the embedding collections.
	NoteCollection string `koanf:"note_collection"`
	TaskCollection string `koanf:"task_collection"`

	// VectorSize is the embedding dimensionality. Must match the
	// embedding model output (384 for BAAI/bge-small-en-v1.5).
	VectorSize uint64 `koanf:"vector_size"`
}

// EmbeddingConfig holds the embedding capability settings.
//
// The endpoint must be OpenAI-compatible (TEI or a hosted router).
type EmbeddingConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
	APIKey  Secret `koanf:"api_key"`
}

// GenerationConfig holds the text-generation capability settings.
//
// MaxTokens, Temperature and TopP are the fixed sampling parameters sent
// with every generation request.
type GenerationConfig struct {
	BaseURL     string        `koanf:"base_url"`
	Model       string        `koanf:"model"`
	APIKey      Secret        `koanf:"api_key"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`
	TopP        float64       `koanf:"top_p"`
	Timeout     time.Duration `koanf:"timeout"`
}

// SessionConfig holds bearer-session resolution settings.
type SessionConfig struct {
	// TTL is how long a resolved token stays valid in the cache.
	TTL time.Duration `koanf:"ttl"`
	// StaticTokens maps bearer tokens to user ids. Development only;
	// production deployments populate sessions from the auth system.
	StaticTokens map[string]string `koanf:"static_tokens"`
}

// RetrievalConfig holds tunables for the semantic retrieval path.
type RetrievalConfig struct {
	// TopK is the per-collection ANN result count.
	TopK int `koanf:"top_k"`
	// CandidatePool is the ANN search pool size (hnsw_ef).
	CandidatePool int `koanf:"candidate_pool"`
	// FuseLimit caps the fused, ranked result list.
	FuseLimit int `koanf:"fuse_limit"`
}

// applyDefaults fills unset fields with working defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "./data/assistd.db"
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = 5 * time.Second
	}

	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = "localhost"
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.Qdrant.NoteCollection == "" {
		cfg.Qdrant.NoteCollection = "note_embeddings"
	}
	if cfg.Qdrant.TaskCollection == "" {
		cfg.Qdrant.TaskCollection = "task_embeddings"
	}
	if cfg.Qdrant.VectorSize == 0 {
		cfg.Qdrant.VectorSize = 384
	}

	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:8081/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "BAAI/bge-small-en-v1.5"
	}

	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = "http://localhost:8082/v1"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "mistralai/Mistral-7B-Instruct-v0.2"
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 256
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.2
	}
	if cfg.Generation.TopP == 0 {
		cfg.Generation.TopP = 0.9
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 60 * time.Second
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 30 * time.Minute
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.CandidatePool == 0 {
		cfg.Retrieval.CandidatePool = 50
	}
	if cfg.Retrieval.FuseLimit == 0 {
		cfg.Retrieval.FuseLimit = 10
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: logging format %q (want json or console)", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store path required", ErrInvalidConfig)
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("%w: qdrant port %d out of range", ErrInvalidConfig, c.Qdrant.Port)
	}
	if c.Qdrant.VectorSize == 0 {
		return fmt.Errorf("%w: qdrant vector size required", ErrInvalidConfig)
	}
	if c.Embedding.BaseURL == "" || c.Embedding.Model == "" {
		return fmt.Errorf("%w: embedding base_url and model required", ErrInvalidConfig)
	}
	if c.Generation.BaseURL == "" || c.Generation.Model == "" {
		return fmt.Errorf("%w: generation base_url and model required", ErrInvalidConfig)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("%w: generation temperature %v out of range", ErrInvalidConfig, c.Generation.Temperature)
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		return fmt.Errorf("%w: generation top_p %v out of range", ErrInvalidConfig, c.Generation.TopP)
	}
	if c.Retrieval.TopK <= 0 || c.Retrieval.FuseLimit <= 0 {
		return fmt.Errorf("%w: retrieval top_k and fuse_limit must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.CandidatePool < c.Retrieval.TopK {
		return fmt.Errorf("%w: retrieval candidate_pool %d smaller than top_k %d",
			ErrInvalidConfig, c.Retrieval.CandidatePool, c.Retrieval.TopK)
	}
	return nil
}
