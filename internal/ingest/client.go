// Package ingest calls the external registration pipeline that turns a
// staged STIX file into a first-class store record.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"stip-taxii-backend/internal/config"
	"stip-taxii-backend/pkg/logger"
)

// Client registers staged packages over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new ingestion client
func NewClient(cfg config.IngestConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("ingest"),
	}
}

// Register uploads the staged file at path to the registration pipeline,
// tagging it with the destination community and publish channel. A non-2xx
// response is an error; the caller owns cleanup of the staged file.
func (c *Client) Register(ctx context.Context, path, community, via string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("stix_file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read staged file: %w", err)
	}
	if err := writer.WriteField("community", community); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.WriteField("via", via); err != nil {
		return fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registration request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("registration rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	c.logger.Debug().Str("community", community).Str("via", via).Msg("package registered")
	return nil
}
