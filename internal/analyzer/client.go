package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"glaciercare/internal/config"
	"glaciercare/internal/models"
)

// Client talks to the Gemini generateContent endpoint and reshapes its reply
// into a normalized AnalysisResult. A failed call or an unparseable reply is
// absorbed into the fixed fallback result, never surfaced to the caller.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	model    string
	log      zerolog.Logger
}

func New(cfg config.AnalyzerConfig, log zerolog.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		log:      log,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Analyze runs the report text through the model. It always returns a usable
// result; the error path is logged and replaced with Fallback.
func (c *Client) Analyze(ctx context.Context, reportText string, filename string) models.AnalysisResult {
	raw, err := c.generate(ctx, buildPrompt(reportText, filename))
	if err != nil {
		c.log.Error().Err(err).Str("filename", filename).Msg("analysis call failed")
		return Fallback(filename)
	}

	result, err := parseModelReply(raw)
	if err != nil {
		c.log.Error().Err(err).Str("filename", filename).Msg("analysis reply unparseable")
		return Fallback(filename)
	}
	return result
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("model returned %s: %s", resp.Status, snippet)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidate list")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
