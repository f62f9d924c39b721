// Package indexer backfills embedding vectors for records that do not have
// one yet. It walks the structured store in batches, embeds each record's
// text rendering, upserts the points with their display payload and marks
// the records embedded.
package indexer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smarslabs/assistd/internal/inference"
	"github.com/smarslabs/assistd/internal/store"
	"github.com/smarslabs/assistd/internal/vectorstore"
)

// defaultBatchSize bounds how many records one embedding request carries.
const defaultBatchSize = 32

// embedDateLayout matches the date rendering used in retrieval context
// lines, so the embedded text and the displayed text agree.
const embedDateLayout = "Mon Jan 02 2006"

// Indexer runs the embedding backfill.
type Indexer struct {
	store     store.Indexable
	embedder  inference.Embedder
	vectors   vectorstore.Store
	noteColl  string
	taskColl  string
	batchSize int
	logger    *zap.Logger
}

// Config wires the indexer's collections and batch size.
type Config struct {
	NoteCollection string
	TaskCollection string
	// BatchSize caps records per embedding request. Zero means the default.
	BatchSize int
}

// New creates an indexer.
func New(s store.Indexable, embedder inference.Embedder, vectors vectorstore.Store, cfg Config, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &Indexer{
		store:     s,
		embedder:  embedder,
		vectors:   vectors,
		noteColl:  cfg.NoteCollection,
		taskColl:  cfg.TaskCollection,
		batchSize: batch,
		logger:    logger,
	}
}

// Stats counts the records a run processed.
type Stats struct {
	Notes int
	Tasks int
}

// Run backfills every record missing an embedding. The note and task queues
// drain concurrently; each queue is sequential within itself so a batch is
// marked before the next one is listed. The first error stops the run;
// already-processed batches stay marked.
func (ix *Indexer) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			notes, err := ix.store.NotesMissingEmbedding(gctx, ix.batchSize)
			if err != nil {
				return fmt.Errorf("listing notes to embed: %w", err)
			}
			if len(notes) == 0 {
				return nil
			}
			if err := ix.embedNotes(gctx, notes); err != nil {
				return err
			}
			mu.Lock()
			stats.Notes += len(notes)
			mu.Unlock()
		}
	})

	g.Go(func() error {
		for {
			tasks, err := ix.store.TasksMissingEmbedding(gctx, ix.batchSize)
			if err != nil {
				return fmt.Errorf("listing tasks to embed: %w", err)
			}
			if len(tasks) == 0 {
				return nil
			}
			if err := ix.embedTasks(gctx, tasks); err != nil {
				return err
			}
			mu.Lock()
			stats.Tasks += len(tasks)
			mu.Unlock()
		}
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}

	ix.logger.Info("backfill complete",
		zap.Int("notes", stats.Notes),
		zap.Int("tasks", stats.Tasks),
	)
	return stats, nil
}

func (ix *Indexer) embedNotes(ctx context.Context, notes []store.Note) error {
	texts := make([]string, len(notes))
	for i, n := range notes {
		texts[i] = NoteText(n)
	}

	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding notes: %w", err)
	}
	if len(vectors) != len(notes) {
		return fmt.Errorf("embedding notes: got %d vectors for %d inputs", len(vectors), len(notes))
	}

	points := make([]vectorstore.Point, len(notes))
	for i, n := range notes {
		points[i] = vectorstore.Point{
			ID:     n.ID,
			UserID: n.UserID,
			Vector: vectors[i],
			Payload: map[string]any{
				"title":      n.Title,
				"content":    n.Content,
				"created_at": n.CreatedAt.Unix(),
			},
		}
	}
	if err := ix.vectors.Upsert(ctx, ix.noteColl, points); err != nil {
		return fmt.Errorf("upserting note points: %w", err)
	}

	for _, n := range notes {
		if err := ix.store.MarkNoteEmbedded(ctx, n.ID); err != nil {
			return fmt.Errorf("marking note %s embedded: %w", n.ID, err)
		}
	}
	return nil
}

func (ix *Indexer) embedTasks(ctx context.Context, tasks []store.Task) error {
	texts := make([]string, len(tasks))
	for i, t := range tasks {
		texts[i] = TaskText(t)
	}

	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding tasks: %w", err)
	}
	if len(vectors) != len(tasks) {
		return fmt.Errorf("embedding tasks: got %d vectors for %d inputs", len(vectors), len(tasks))
	}

	points := make([]vectorstore.Point, len(tasks))
	for i, t := range tasks {
		payload := map[string]any{
			"title": t.Title,
			"done":  t.Done,
		}
		if !t.Date.IsZero() {
			payload["date"] = t.Date.Unix()
		}
		points[i] = vectorstore.Point{
			ID:      t.ID,
			UserID:  t.UserID,
			Vector:  vectors[i],
			Payload: payload,
		}
	}
	if err := ix.vectors.Upsert(ctx, ix.taskColl, points); err != nil {
		return fmt.Errorf("upserting task points: %w", err)
	}

	for _, t := range tasks {
		if err := ix.store.MarkTaskEmbedded(ctx, t.ID); err != nil {
			return fmt.Errorf("marking task %s embedded: %w", t.ID, err)
		}
	}
	return nil
}

// NoteText renders the text a note is embedded from: title and content on
// separate lines.
func NoteText(n store.Note) string {
	return n.Title + "\n" + n.Content
}

// TaskText renders the text a task is embedded from. Empty fields are
// skipped so sparse tasks still embed cleanly.
func TaskText(t store.Task) string {
	var parts []string
	if t.Title != "" {
		parts = append(parts, "Task title: "+t.Title)
	}
	if !t.Date.IsZero() {
		parts = append(parts, "Date: "+t.Date.Format(embedDateLayout))
	}
	if t.Category != "" {
		parts = append(parts, "Category: "+t.Category)
	}
	if t.Recurrence != "" {
		parts = append(parts, "Recurrence: "+t.Recurrence)
	}
	return strings.Join(parts, ". ")
}
