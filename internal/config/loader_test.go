package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9191
qdrant:
  host: qdrant.internal
  note_collection: notes_v2
generation:
  model: mistralai/Mistral-7B-Instruct-v0.2
  max_tokens: 128
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, "notes_v2", cfg.Qdrant.NoteCollection)
	assert.Equal(t, 128, cfg.Generation.MaxTokens)
	// Untouched sections still get defaults.
	assert.Equal(t, "task_embeddings", cfg.Qdrant.TaskCollection)
	assert.Equal(t, 5*time.Second, cfg.Store.BusyTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o600))

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("QDRANT_VECTOR_SIZE", "768")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, uint64(768), cfg.Qdrant.VectorSize)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"SERVER_SHUTDOWN_TIMEOUT", "server.shutdown_timeout"},
		{"GENERATION_MAX_TOKENS", "generation.max_tokens"},
		{"QDRANT_NOTE_COLLECTION", "qdrant.note_collection"},
		{"PATH", ""},
		{"HOME", ""},
		{"SERVER_", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envTransform(tt.in), tt.in)
	}
}
