package assistant

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smarslabs/assistd/internal/inference"
	"github.com/smarslabs/assistd/internal/store"
	"github.com/smarslabs/assistd/internal/vectorstore"
)

// StructuredRetriever answers routed intents with exact store queries.
// Every result it returns carries score 1.0.
type StructuredRetriever struct {
	store store.Reader
}

// NewStructuredRetriever creates a retriever over the structured store.
func NewStructuredRetriever(s store.Reader) *StructuredRetriever {
	return &StructuredRetriever{store: s}
}

// Retrieve runs the exact query the intent maps to. The question is only
// consulted for the extractable parameter (title or date); intents without
// a parameter ignore it.
func (r *StructuredRetriever) Retrieve(ctx context.Context, userID string, intent Intent, question string) ([]Result, error) {
	switch intent {
	case IntentAllTasks:
		return r.tasks(ctx, userID, store.DoneAny)
	case IntentPendingTasks:
		return r.tasks(ctx, userID, store.DonePending)
	case IntentCompletedTasks:
		return r.tasks(ctx, userID, store.DoneCompleted)
	case IntentAllNotes:
		notes, err := r.store.ListNotes(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("listing notes: %w", err)
		}
		return notesToResults(notes), nil
	case IntentNoteByTitle:
		title, ok := ExtractTitle(question)
		if !ok {
			return nil, nil
		}
		notes, err := r.store.NotesByTitle(ctx, userID, title)
		if err != nil {
			return nil, fmt.Errorf("searching notes by title: %w", err)
		}
		return notesToResults(notes), nil
	case IntentTasksByDate:
		day, ok := ExtractDate(question)
		if !ok {
			return nil, nil
		}
		tasks, err := r.store.TasksOnDay(ctx, userID, day)
		if err != nil {
			return nil, fmt.Errorf("listing tasks on day: %w", err)
		}
		return tasksToResults(tasks), nil
	default:
		return nil, fmt.Errorf("intent %q has no structured query", intent)
	}
}

func (r *StructuredRetriever) tasks(ctx context.Context, userID string, done store.DoneFilter) ([]Result, error) {
	tasks, err := r.store.ListTasks(ctx, userID, done)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasksToResults(tasks), nil
}

func tasksToResults(tasks []store.Task) []Result {
	results := make([]Result, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, resultFromTask(t, exactScore))
	}
	return results
}

func notesToResults(notes []store.Note) []Result {
	results := make([]Result, 0, len(notes))
	for _, n := range notes {
		results = append(results, resultFromNote(n, exactScore))
	}
	return results
}

// SemanticRetriever answers generic questions by fanning out over both
// vector collections plus a date-anchored exact task query when the
// question mentions a valid date.
type SemanticRetriever struct {
	embedder inference.Embedder
	vectors  vectorstore.Store
	tasks    store.TaskReader

	noteCollection string
	taskCollection string
	params         vectorstore.SearchParams
}

// SemanticConfig wires the semantic retriever's collections and tunables.
type SemanticConfig struct {
	NoteCollection string
	TaskCollection string
	TopK           int
	CandidatePool  int
}

// NewSemanticRetriever creates the semantic retrieval path.
func NewSemanticRetriever(embedder inference.Embedder, vectors vectorstore.Store, tasks store.TaskReader, cfg SemanticConfig) *SemanticRetriever {
	return &SemanticRetriever{
		embedder:       embedder,
		vectors:        vectors,
		tasks:          tasks,
		noteCollection: cfg.NoteCollection,
		taskCollection: cfg.TaskCollection,
		params: vectorstore.SearchParams{
			Limit:         cfg.TopK,
			CandidatePool: cfg.CandidatePool,
		},
	}
}

// Retrieve embeds the question once, then runs the note search, the task
// search and the optional date-anchored task query concurrently. Any
// failing leg fails the whole retrieval.
func (r *SemanticRetriever) Retrieve(ctx context.Context, userID, question string) (notes, tasks, dated []Result, err error) {
	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("embedding question: %w", err)
	}

	day, hasDate := ExtractDate(question)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := r.vectors.Search(gctx, r.noteCollection, userID, vector, r.params)
		if err != nil {
			return fmt.Errorf("note search: %w", err)
		}
		notes = noteHitsToResults(hits)
		return nil
	})

	g.Go(func() error {
		hits, err := r.vectors.Search(gctx, r.taskCollection, userID, vector, r.params)
		if err != nil {
			return fmt.Errorf("task search: %w", err)
		}
		tasks = taskHitsToResults(hits)
		return nil
	})

	if hasDate {
		g.Go(func() error {
			onDay, err := r.tasks.TasksOnDay(gctx, userID, day)
			if err != nil {
				return fmt.Errorf("tasks on day: %w", err)
			}
			dated = tasksToResults(onDay)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return notes, tasks, dated, nil
}

func noteHitsToResults(hits []vectorstore.ScoredPoint) []Result {
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		r := Result{
			Kind:    KindNote,
			ID:      hit.ID,
			Title:   payloadString(hit.Payload, "title"),
			Content: payloadString(hit.Payload, "content"),
			Score:   float64(hit.Score),
		}
		if created, ok := payloadTime(hit.Payload, "created_at"); ok {
			r.CreatedAt = &created
		}
		results = append(results, r)
	}
	return results
}

func taskHitsToResults(hits []vectorstore.ScoredPoint) []Result {
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		r := Result{
			Kind:  KindTask,
			ID:    hit.ID,
			Title: payloadString(hit.Payload, "title"),
			Done:  payloadBool(hit.Payload, "done"),
			Score: float64(hit.Score),
		}
		if date, ok := payloadTime(hit.Payload, "date"); ok {
			r.Date = &date
		}
		results = append(results, r)
	}
	return results
}

func payloadString(payload map[string]any, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}

func payloadBool(payload map[string]any, key string) bool {
	if b, ok := payload[key].(bool); ok {
		return b
	}
	return false
}

// payloadTime reads a unix-seconds timestamp stored as int64 or float64.
func payloadTime(payload map[string]any, key string) (time.Time, bool) {
	switch v := payload[key].(type) {
	case int64:
		return time.Unix(v, 0), true
	case float64:
		return time.Unix(int64(v), 0), true
	default:
		return time.Time{}, false
	}
}
