package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smarslabs/assistd/internal/inference"
	"github.com/smarslabs/assistd/internal/store"
	"github.com/smarslabs/assistd/internal/vectorstore"
)

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

var _ inference.Generator = (*fakeGenerator)(nil)

func newTestService(fs *fakeStore, vectors *fakeVectors, gen *fakeGenerator) *Service {
	embedder := &fakeEmbedder{vector: make([]float32, 384)}
	return NewService(
		NewStructuredRetriever(fs),
		semanticRetriever(embedder, vectors, fs),
		gen,
		10,
		zap.NewNop(),
	)
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeVectors{}, &fakeGenerator{})

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), "u1", q)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}
}

func TestAskPendingTasks(t *testing.T) {
	due := time.Date(2026, time.February, 25, 0, 0, 0, 0, time.Local)
	fs := &fakeStore{tasks: []store.Task{
		{ID: "t1", Title: "Dentist", Done: false, Date: due},
	}}
	gen := &fakeGenerator{answer: "Dentist, Wed Feb 25 2026, Pending"}

	svc := newTestService(fs, &fakeVectors{}, gen)
	answer, err := svc.Ask(context.Background(), "u1", "show me my pending tasks")
	require.NoError(t, err)

	assert.Equal(t, store.DonePending, fs.listDone)
	assert.Equal(t, "Todo: Dentist | Status: Pending | Date: Wed Feb 25 2026", answer.Context)
	assert.Contains(t, gen.prompt, "list them clearly, one per line")
	assert.Contains(t, gen.prompt, answer.Context)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, KindTask, answer.Sources[0].Kind)
	assert.Equal(t, "Dentist, Wed Feb 25 2026, Pending", answer.Answer)
}

func TestAskNoteByTitle(t *testing.T) {
	fs := &fakeStore{notes: []store.Note{
		{ID: "n1", Title: "Shopping", Content: "milk, eggs"},
	}}
	gen := &fakeGenerator{answer: "Your Shopping note says: milk, eggs."}

	svc := newTestService(fs, &fakeVectors{}, gen)
	answer, err := svc.Ask(context.Background(), "u1", `what's in my note "Shopping"?`)
	require.NoError(t, err)

	assert.Equal(t, "Shopping", fs.titleQuery)
	assert.Contains(t, answer.Context, "Note: Shopping | Date:  | Text: milk, eggs")
}

func TestAskGenericFusesAndSplits(t *testing.T) {
	created := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.Local)
	due := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local)
	vectors := &fakeVectors{hits: map[string][]vectorstore.ScoredPoint{
		"note_embeddings": {notePoint("n1", "Ideas", "sailing", created, 0.5)},
		"task_embeddings": {taskPoint("t1", "Dentist", false, due, 0.9)},
	}}
	gen := &fakeGenerator{answer: "Your week has a dentist visit."}

	svc := newTestService(&fakeStore{}, vectors, gen)
	answer, err := svc.Ask(context.Background(), "u1", "how is my week going")
	require.NoError(t, err)

	// Ranked sources: best score first regardless of kind.
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "t1", answer.Sources[0].ID)
	assert.Equal(t, "n1", answer.Sources[1].ID)

	// Context renders tasks before notes.
	assert.Equal(t,
		"Todo: Dentist | Status: Pending | Date: Sun Mar 01 2026\n"+
			"Note: Ideas | Date: Mon Jan 05 2026 | Text: sailing",
		answer.Context)
	assert.Contains(t, gen.prompt, "Answer clearly and accurately based only on the context.")
}

func TestAskGenericWithDateRunsExactTaskQuery(t *testing.T) {
	fs := &fakeStore{tasks: []store.Task{{ID: "t7", Title: "Review"}}}
	vectors := &fakeVectors{hits: map[string][]vectorstore.ScoredPoint{}}
	gen := &fakeGenerator{answer: "You have a review."}

	// No task/todo wording, so the question stays generic despite the date.
	svc := newTestService(fs, vectors, gen)
	answer, err := svc.Ask(context.Background(), "u1", "what's happening on 25-2-2026?")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.February, 25, 0, 0, 0, 0, time.Local), fs.onDay)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, exactScore, answer.Sources[0].Score)
}

func TestAskEmptyRetrievalStillGenerates(t *testing.T) {
	gen := &fakeGenerator{answer: "You have no matching tasks or notes."}

	svc := newTestService(&fakeStore{}, &fakeVectors{}, gen)
	answer, err := svc.Ask(context.Background(), "u1", "list notes")
	require.NoError(t, err)

	assert.Equal(t, "", answer.Context)
	assert.Contains(t, gen.prompt, "(no relevant notes or todos found)")
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
}

func TestAskRetrievalFailureAborts(t *testing.T) {
	fs := &fakeStore{err: store.ErrStoreUnavailable}
	gen := &fakeGenerator{answer: "should not be called"}

	svc := newTestService(fs, &fakeVectors{}, gen)
	_, err := svc.Ask(context.Background(), "u1", "show all my tasks")
	require.ErrorIs(t, err, store.ErrStoreUnavailable)
	assert.Empty(t, gen.prompt)
}

func TestAskGenerationFailureAborts(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model overloaded")}

	svc := newTestService(&fakeStore{}, &fakeVectors{}, gen)
	_, err := svc.Ask(context.Background(), "u1", "list notes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestAskTrimsGeneratedAnswer(t *testing.T) {
	gen := &fakeGenerator{answer: "  All done.\n"}

	svc := newTestService(&fakeStore{}, &fakeVectors{}, gen)
	answer, err := svc.Ask(context.Background(), "u1", "list notes")
	require.NoError(t, err)
	assert.Equal(t, "All done.", answer.Answer)
}
