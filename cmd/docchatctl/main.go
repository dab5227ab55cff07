// Package main implements docchatctl, a command-line client for the docchat
// HTTP server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the docchat HTTP server
	serverURL string
	// sessionID names the session uploads and chats belong to
	sessionID string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docchatctl",
	Short: "CLI for the docchat server",
	Long: `docchatctl uploads PDF files to a docchat session and asks questions
about them.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "docchat server URL")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(healthCmd)

	for _, cmd := range []*cobra.Command{uploadCmd, chatCmd} {
		cmd.Flags().StringVar(&sessionID, "session", "", "session id")
		_ = cmd.MarkFlagRequired("session")
	}
}

// HealthResponse matches internal/http/server.go HealthResponse
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check docchat server health",
	Long: `Check the health status of the docchat HTTP server.

Examples:
  # Check health
  docchatctl health

  # Check health on a different server
  docchatctl health --server http://localhost:9000`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/health", serverURL)

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer resp.Body.Close()

	var healthResp HealthResponse
	if err := decodeResponse(resp, &healthResp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server Status: %s\n", healthResp.Status)
	fmt.Fprintf(out, "Server URL: %s\n", serverURL)
	return nil
}

// decodeResponse decodes a 200 JSON body into v, or turns any other status
// into an error carrying the server's message.
func decodeResponse(resp *http.Response, v any) error {
	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		var httpErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &httpErr) == nil && httpErr.Message != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, httpErr.Message)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
