package assistant

import (
	"time"

	"github.com/smarslabs/assistd/internal/store"
)

// ResultKind tags a retrieved record by source type.
type ResultKind string

const (
	KindNote ResultKind = "note"
	KindTask ResultKind = "task"
)

// Result is a retrieved record in the shape the fuser, the context builder
// and the response all share. Exact-match hits carry score 1.0; semantic
// hits carry their similarity score.
type Result struct {
	Kind  ResultKind `json:"type"`
	ID    string     `json:"id,omitempty"`
	Title string     `json:"title"`
	Score float64    `json:"score"`

	// Task fields.
	Done bool       `json:"done,omitempty"`
	Date *time.Time `json:"date,omitempty"`

	// Note fields.
	Content   string     `json:"content,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// exactScore marks results produced by exact structured queries.
const exactScore = 1.0

func resultFromTask(t store.Task, score float64) Result {
	r := Result{
		Kind:  KindTask,
		ID:    t.ID,
		Title: t.Title,
		Score: score,
		Done:  t.Done,
	}
	if !t.Date.IsZero() {
		date := t.Date
		r.Date = &date
	}
	return r
}

func resultFromNote(n store.Note, score float64) Result {
	r := Result{
		Kind:    KindNote,
		ID:      n.ID,
		Title:   n.Title,
		Score:   score,
		Content: n.Content,
	}
	if !n.CreatedAt.IsZero() {
		created := n.CreatedAt
		r.CreatedAt = &created
	}
	return r
}
