package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var showHistory bool

// chatCmd asks a question about a session's files
var chatCmd = &cobra.Command{
	Use:   "chat --session ID query...",
	Short: "Ask a question about the files in a session",
	Long: `Ask a question about the PDF files uploaded to a session. The first
question builds the session's index, which can take several minutes.

Examples:
  docchatctl chat --session demo "What does the report conclude?"
  docchatctl chat --session demo --history "And the appendix?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&showHistory, "history", false, "print the full session history")
}

// ChatRequest matches internal/http/server.go ChatRequest
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// ChatResponse matches internal/http/server.go ChatResponse
type ChatResponse struct {
	Answer  string      `json:"answer"`
	History [][2]string `json:"history"`
}

// runChat handles the chat command
func runChat(cmd *cobra.Command, args []string) error {
	reqJSON, err := json.Marshal(ChatRequest{
		SessionID: sessionID,
		Query:     strings.Join(args, " "),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat", serverURL)
	httpReq, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// Index builds call the model once per paragraph.
	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	var chatResp ChatResponse
	if err := decodeResponse(resp, &chatResp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showHistory {
		for i, turn := range chatResp.History {
			fmt.Fprintf(out, "[%d] Q: %s\n    A: %s\n", i+1, turn[0], turn[1])
		}
		return nil
	}
	fmt.Fprintln(out, chatResp.Answer)
	return nil
}
