// Package store provides the structured record store for assistd.
//
// The store holds the task and note records owned by the CRUD subsystem.
// The question-answering core only reads; the writes exposed here exist for
// schema bootstrap, tests, and the embedding indexer.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable indicates a connectivity failure with the store.
// Empty result sets are never errors.
var ErrStoreUnavailable = errors.New("structured store unavailable")

// DoneFilter narrows task queries by completion state.
type DoneFilter int

const (
	// DoneAny matches every task regardless of completion state.
	DoneAny DoneFilter = iota
	// DonePending matches tasks with done = false.
	DonePending
	// DoneCompleted matches tasks with done = true.
	DoneCompleted
)

// Task is a task record. Date is the calendar instant the task is due.
type Task struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Title      string    `json:"title"`
	Done       bool      `json:"done"`
	Priority   string    `json:"priority,omitempty"`
	Category   string    `json:"category,omitempty"`
	Recurrence string    `json:"recurrence,omitempty"`
	Date       time.Time `json:"date"`
	Embedded   bool      `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// Note is a note record.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	Embedded  bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskReader serves the exact, user-scoped task queries of the retrievers.
type TaskReader interface {
	// ListTasks returns the user's tasks matching the done filter,
	// sorted by date ascending.
	ListTasks(ctx context.Context, userID string, done DoneFilter) ([]Task, error)

	// TasksOnDay returns every task of the user whose date falls within
	// [00:00:00.000, 23:59:59.999] local time of the given calendar day,
	// sorted by date ascending.
	TasksOnDay(ctx context.Context, userID string, day time.Time) ([]Task, error)
}

// NoteReader serves the exact, user-scoped note queries of the retrievers.
type NoteReader interface {
	// ListNotes returns the user's notes sorted by creation time descending.
	ListNotes(ctx context.Context, userID string) ([]Note, error)

	// NotesByTitle returns the user's notes whose title contains the given
	// text, case-insensitively, sorted by creation time descending. The
	// text is matched literally; LIKE metacharacters in it are escaped.
	NotesByTitle(ctx context.Context, userID, title string) ([]Note, error)
}

// Reader combines the read surfaces the question-answering core consumes.
type Reader interface {
	TaskReader
	NoteReader
}

// Indexable lists records the embedding indexer still has to process and
// records completion. Used only by the backfill path.
type Indexable interface {
	TasksMissingEmbedding(ctx context.Context, limit int) ([]Task, error)
	NotesMissingEmbedding(ctx context.Context, limit int) ([]Note, error)
	MarkTaskEmbedded(ctx context.Context, id string) error
	MarkNoteEmbedded(ctx context.Context, id string) error
}

// DayBounds returns the inclusive start and end instants of the calendar day
// containing t, in t's location: [00:00:00.000, 23:59:59.999].
func DayBounds(t time.Time) (start, end time.Time) {
	year, month, day := t.Date()
	start = time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	end = time.Date(year, month, day, 23, 59, 59, int(999*time.Millisecond), t.Location())
	return start, end
}
