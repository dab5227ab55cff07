package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// sessionCmd shows a session's files and history
var sessionCmd = &cobra.Command{
	Use:   "session ID",
	Short: "Show the files and history of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSession,
}

// SessionResponse matches the JSON form of the server's session snapshot
type SessionResponse struct {
	SessionID string      `json:"session_id"`
	Files     []string    `json:"files"`
	History   [][2]string `json:"history"`
	Indexed   bool        `json:"indexed"`
}

// runSession handles the session command
func runSession(cmd *cobra.Command, args []string) error {
	endpoint := fmt.Sprintf("%s/sessions/%s", serverURL, url.PathEscape(args[0]))

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var snap SessionResponse
	if err := decodeResponse(resp, &snap); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session: %s\n", snap.SessionID)
	fmt.Fprintf(out, "Files:   %s\n", strings.Join(snap.Files, ", "))
	fmt.Fprintf(out, "Indexed: %t\n", snap.Indexed)
	fmt.Fprintf(out, "Turns:   %d\n", len(snap.History))
	return nil
}
