// Assistd is the question-answering daemon for the assistant backend.
//
// The binary wires the structured store, the vector store, the embedding and
// generation clients and the HTTP API, then serves until interrupted.
//
// Configuration is loaded from an optional YAML file and environment
// variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults
//	assistd
//
//	# Start with a config file, override the port
//	SERVER_PORT=9090 assistd -config /etc/assistd/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/smarslabs/assistd/internal/assistant"
	"github.com/smarslabs/assistd/internal/config"
	httpapi "github.com/smarslabs/assistd/internal/http"
	"github.com/smarslabs/assistd/internal/inference"
	"github.com/smarslabs/assistd/internal/logging"
	"github.com/smarslabs/assistd/internal/session"
	"github.com/smarslabs/assistd/internal/store"
	"github.com/smarslabs/assistd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("assistd by Smars Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run initializes every dependency and serves until ctx is cancelled:
//  1. Load and validate configuration
//  2. Initialize the logger
//  3. Open the structured store and the vector store
//  4. Create the embedding and generation clients
//  5. Wire the question-answering service and session store
//  6. Start the HTTP server, shut down gracefully on cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("starting assistd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	db, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening structured store: %w", err)
	}
	defer db.Close()

	logger.Info("structured store ready", zap.String("path", cfg.Store.Path))

	vectors, err := vectorstore.NewQdrantStore(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("connecting to vector store: %w", err)
	}
	defer vectors.Close()

	for _, collection := range []string{cfg.Qdrant.NoteCollection, cfg.Qdrant.TaskCollection} {
		if err := vectors.EnsureCollection(ctx, collection, cfg.Qdrant.VectorSize); err != nil {
			return fmt.Errorf("ensuring collection %s: %w", collection, err)
		}
	}

	logger.Info("vector store ready",
		zap.String("host", cfg.Qdrant.Host),
		zap.String("note_collection", cfg.Qdrant.NoteCollection),
		zap.String("task_collection", cfg.Qdrant.TaskCollection),
		zap.Uint64("vector_size", cfg.Qdrant.VectorSize))

	embedder, err := inference.NewEmbeddingService(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}
	generator, err := inference.NewGenerationService(cfg.Generation)
	if err != nil {
		return fmt.Errorf("creating generation service: %w", err)
	}

	logger.Info("inference services ready",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("generation_model", cfg.Generation.Model))

	svc := assistant.NewService(
		assistant.NewStructuredRetriever(db),
		assistant.NewSemanticRetriever(embedder, vectors, db, assistant.SemanticConfig{
			NoteCollection: cfg.Qdrant.NoteCollection,
			TaskCollection: cfg.Qdrant.TaskCollection,
			TopK:           cfg.Retrieval.TopK,
			CandidatePool:  cfg.Retrieval.CandidatePool,
		}),
		generator,
		cfg.Retrieval.FuseLimit,
		logger.Named("assistant"),
	)

	sessions := session.NewStore(cfg.Session)

	srv, err := httpapi.NewServer(svc, sessions, logger.Named("http"), cfg.Server)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
