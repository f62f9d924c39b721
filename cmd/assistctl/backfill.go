package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smarslabs/assistd/internal/config"
	"github.com/smarslabs/assistd/internal/indexer"
	"github.com/smarslabs/assistd/internal/inference"
	"github.com/smarslabs/assistd/internal/logging"
	"github.com/smarslabs/assistd/internal/store"
	"github.com/smarslabs/assistd/internal/vectorstore"
)

var (
	backfillConfigPath string
	backfillBatchSize  int
)

// backfillCmd recomputes embeddings for records without one. It talks to
// the stores directly, not through the server, so it can run while the
// server is down.
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill embeddings for notes and tasks",
	Long: `Backfill embedding vectors for every note and task that does not
have one yet. Reads the same configuration as assistd.

Examples:
  # Backfill with the default configuration
  assistctl backfill

  # Backfill with an explicit config file and smaller batches
  assistctl backfill --config /etc/assistd/config.yaml --batch-size 8`,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().StringVar(&backfillConfigPath, "config", "", "path to YAML configuration file")
	backfillCmd.Flags().IntVar(&backfillBatchSize, "batch-size", 0, "records per embedding request (0 = default)")
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(backfillConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("opening structured store: %w", err)
	}
	defer db.Close()

	vectors, err := vectorstore.NewQdrantStore(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("connecting to vector store: %w", err)
	}
	defer vectors.Close()

	ctx := cmd.Context()
	for _, collection := range []string{cfg.Qdrant.NoteCollection, cfg.Qdrant.TaskCollection} {
		if err := vectors.EnsureCollection(ctx, collection, cfg.Qdrant.VectorSize); err != nil {
			return fmt.Errorf("ensuring collection %s: %w", collection, err)
		}
	}

	embedder, err := inference.NewEmbeddingService(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("creating embedding service: %w", err)
	}

	ix := indexer.New(db, embedder, vectors, indexer.Config{
		NoteCollection: cfg.Qdrant.NoteCollection,
		TaskCollection: cfg.Qdrant.TaskCollection,
		BatchSize:      backfillBatchSize,
	}, logger.Named("indexer"))

	stats, err := ix.Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed after %d notes and %d tasks: %w", stats.Notes, stats.Tasks, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Backfilled %d notes and %d tasks\n", stats.Notes, stats.Tasks)
	return nil
}
