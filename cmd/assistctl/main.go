// Package main implements the assistctl CLI for manual operations against
// the assistd server and its stores.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the assistd HTTP server
	serverURL string
	// authToken is the bearer token sent with API requests
	authToken string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "assistctl",
	Short: "CLI for assistd operations",
	Long: `assistctl is a command-line interface for the assistd server.
It provides commands for asking questions, checking server health and
backfilling embeddings.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "assistd server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "bearer token for API requests")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(backfillCmd)
}

// askCmd sends a question to the server
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a question",
	Long: `Ask the assistant a question and print the answer with its sources.

Examples:
  # Ask about pending tasks
  assistctl ask --token dev-token "show me my pending tasks"

  # Ask an open question
  assistctl ask --token dev-token "how is my week going"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check assistd server health",
	Long: `Check the health status of the assistd HTTP server.

Examples:
  # Check health
  assistctl health

  # Check health on a different server
  assistctl health --server http://localhost:9090`,
	RunE: runHealth,
}

// AskRequest matches internal/http/server.go AskRequest
type AskRequest struct {
	Content string `json:"question"`
}

// AskResponse mirrors the answer envelope returned by the server.
type AskResponse struct {
	Answer  string `json:"answer"`
	Context string `json:"context"`
	Sources []struct {
		Type  string  `json:"type"`
		Title string  `json:"title"`
		Score float64 `json:"score"`
	} `json:"sources"`
}

// ErrorResponse matches the server's JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	body, err := json.Marshal(AskRequest{Content: args[0]})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/v1/chat/ask", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var answer AskResponse
	if err := json.Unmarshal(respBody, &answer); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer.Answer)
	if len(answer.Sources) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
		for _, s := range answer.Sources {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s (score %.2f)\n", s.Type, s.Title, s.Score)
		}
	}
	return nil
}

func runHealth(cmd *cobra.Command, _ []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to reach server at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy (%d): %s", resp.StatusCode, string(body))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server at %s is healthy\n", serverURL)
	return nil
}
