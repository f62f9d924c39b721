package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smarslabs/assistd/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	done        INTEGER NOT NULL DEFAULT 0,
	priority    TEXT NOT NULL DEFAULT 'Normal',
	category    TEXT NOT NULL DEFAULT '',
	recurrence  TEXT NOT NULL DEFAULT '',
	date        TIMESTAMP NOT NULL,
	embedded    INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, date);

CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL,
	image_url   TEXT NOT NULL DEFAULT '',
	embedded    INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_notes_user_created ON notes(user_id, created_at);
`

// SQLiteStore is the SQLite-backed structured store.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and ensures the schema exists.
func Open(cfg config.StoreConfig) (*SQLiteStore, error) {
	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	busyMS := cfg.BusyTimeout.Milliseconds()
	if busyMS == 0 {
		busyMS = 5000
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", cfg.Path, busyMS)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", cfg.Path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const taskColumns = "id, user_id, title, done, priority, category, recurrence, date, embedded, created_at"

func (s *SQLiteStore) ListTasks(ctx context.Context, userID string, done DoneFilter) ([]Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ?"
	args := []any{userID}
	switch done {
	case DonePending:
		query += " AND done = 0"
	case DoneCompleted:
		query += " AND done = 1"
	}
	query += " ORDER BY date ASC"

	return s.queryTasks(ctx, query, args...)
}

func (s *SQLiteStore) TasksOnDay(ctx context.Context, userID string, day time.Time) ([]Task, error) {
	start, end := DayBounds(day)
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date ASC"
	return s.queryTasks(ctx, query, userID, start, end)
}

const noteColumns = "id, user_id, title, content, image_url, embedded, created_at"

func (s *SQLiteStore) ListNotes(ctx context.Context, userID string) ([]Note, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE user_id = ? ORDER BY created_at DESC"
	return s.queryNotes(ctx, query, userID)
}

func (s *SQLiteStore) NotesByTitle(ctx context.Context, userID, title string) ([]Note, error) {
	// User-supplied text is escaped so LIKE metacharacters match literally.
	// SQLite LIKE is case-insensitive for ASCII by default.
	pattern := "%" + escapeLike(title) + "%"
	query := "SELECT " + noteColumns + ` FROM notes
		WHERE user_id = ? AND title LIKE ? ESCAPE '\'
		ORDER BY created_at DESC`
	return s.queryNotes(ctx, query, userID, pattern)
}

func (s *SQLiteStore) TasksMissingEmbedding(ctx context.Context, limit int) ([]Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE embedded = 0 ORDER BY created_at ASC LIMIT ?"
	return s.queryTasks(ctx, query, limit)
}

func (s *SQLiteStore) NotesMissingEmbedding(ctx context.Context, limit int) ([]Note, error) {
	query := "SELECT " + noteColumns + " FROM notes WHERE embedded = 0 ORDER BY created_at ASC LIMIT ?"
	return s.queryNotes(ctx, query, limit)
}

func (s *SQLiteStore) MarkTaskEmbedded(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE tasks SET embedded = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark task %s embedded: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) MarkNoteEmbedded(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE notes SET embedded = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark note %s embedded: %w", id, err)
	}
	return nil
}

// InsertTask writes a task record. Owned by the CRUD subsystem; exposed for
// bootstrap tooling and tests.
func (s *SQLiteStore) InsertTask(ctx context.Context, t Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.Title, t.Done, t.Priority, t.Category, t.Recurrence, t.Date, t.Embedded, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// InsertNote writes a note record. Owned by the CRUD subsystem; exposed for
// bootstrap tooling and tests.
func (s *SQLiteStore) InsertNote(ctx context.Context, n Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		n.ID, n.UserID, n.Title, n.Content, n.ImageURL, n.Embedded, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Done, &t.Priority,
			&t.Category, &t.Recurrence, &t.Date, &t.Embedded, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tasks, nil
}

func (s *SQLiteStore) queryNotes(ctx context.Context, query string, args ...any) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content,
			&n.ImageURL, &n.Embedded, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return notes, nil
}

// escapeLike escapes LIKE metacharacters so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var (
	_ Reader    = (*SQLiteStore)(nil)
	_ Indexable = (*SQLiteStore)(nil)
)
