package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// uploadCmd uploads PDF files to a session
var uploadCmd = &cobra.Command{
	Use:   "upload --session ID file...",
	Short: "Upload PDF files to a session",
	Long: `Upload one or more PDF files to a docchat session. The session is
created on first use.

Examples:
  docchatctl upload --session demo report.pdf appendix.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

// UploadResponse matches internal/http/server.go UploadResponse
type UploadResponse struct {
	Status string   `json:"status"`
	Files  []string `json:"files"`
}

// runUpload handles the upload command
func runUpload(cmd *cobra.Command, args []string) error {
	body, contentType, err := multipartBody(sessionID, args)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/upload", serverURL)
	httpReq, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	client := &http.Client{
		Timeout: 2 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	var uploadResp UploadResponse
	if err := decodeResponse(resp, &uploadResp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d file(s) to session %s: %s\n",
		len(uploadResp.Files), sessionID, strings.Join(uploadResp.Files, ", "))
	return nil
}

// multipartBody builds a form with session_id and one files part per path.
func multipartBody(session string, paths []string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("session_id", session); err != nil {
		return nil, "", fmt.Errorf("failed to write session_id: %w", err)
	}

	for _, path := range paths {
		if err := addFilePart(w, path); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func addFilePart(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form part for %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return nil
}
