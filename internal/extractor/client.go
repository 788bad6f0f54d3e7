package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"glaciercare/internal/config"
)

// ErrNotConfigured means no extraction endpoint is set; binary uploads cannot
// be analyzed without one.
var ErrNotConfigured = errors.New("extractor endpoint not configured")

// Client calls the external file-to-text extraction service. OCR and document
// parsing live entirely on that side; this is a single multipart POST.
type Client struct {
	http     *http.Client
	endpoint string
}

func New(cfg config.ExtractorConfig) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
	}
}

type extractResponse struct {
	Text string `json:"text"`
}

// ExtractText sends the file and returns the extracted plain text.
func (c *Client) ExtractText(ctx context.Context, filename string, contentType string, data []byte) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	filePart, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := filePart.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.WriteField("contentType", contentType); err != nil {
		return "", fmt.Errorf("write field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("extractor returned %s: %s", resp.Status, snippet)
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode extractor response: %w", err)
	}
	return decoded.Text, nil
}
