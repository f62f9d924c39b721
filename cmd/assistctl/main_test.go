package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	return cmd, out
}

func TestRunAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/chat/ask", r.URL.Path)
		require.Equal(t, "Bearer dev-token", r.Header.Get("Authorization"))

		var req AskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "show me my pending tasks", req.Content)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer":  "You have 1 pending task.",
			"context": "Todo: Dentist | Status: Pending | Date: ",
			"sources": []map[string]any{
				{"type": "task", "title": "Dentist", "score": 1.0},
			},
		})
	}))
	defer srv.Close()

	serverURL = srv.URL
	authToken = "dev-token"
	defer func() { serverURL = "http://localhost:8080"; authToken = "" }()

	cmd, out := testCommand()
	require.NoError(t, runAsk(cmd, []string{"show me my pending tasks"}))

	assert.Contains(t, out.String(), "You have 1 pending task.")
	assert.Contains(t, out.String(), "[task] Dentist (score 1.00)")
}

func TestRunAskServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid session"})
	}))
	defer srv.Close()

	serverURL = srv.URL
	defer func() { serverURL = "http://localhost:8080" }()

	cmd, _ := testCommand()
	err := runAsk(cmd, []string{"anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session")
}

func TestRunHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	serverURL = srv.URL
	defer func() { serverURL = "http://localhost:8080" }()

	cmd, out := testCommand()
	require.NoError(t, runHealth(cmd, nil))
	assert.Contains(t, out.String(), "is healthy")
}

func TestRunHealthUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	serverURL = srv.URL
	defer func() { serverURL = "http://localhost:8080" }()

	cmd, _ := testCommand()
	assert.Error(t, runHealth(cmd, nil))
}
