package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// TokenSource yields a fresh session token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// APIClient talks to the analysis backend. Every authenticated call fetches
// a fresh token, a 401 triggers the sign-in redirect exactly once per call,
// and no call is ever retried.
type APIClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource

	// OnUnauthorized runs when the backend rejects the token, before the
	// call returns ErrUnauthorized. Typically it navigates to the sign-in
	// screen.
	OnUnauthorized func()
}

func NewAPIClient(baseURL string, tokens TokenSource, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

type analyzeTextRequest struct {
	ReportText string `json:"reportText"`
	Filename   string `json:"filename,omitempty"`
}

// AnalyzeText submits pasted or hoisted report text.
func (c *APIClient) AnalyzeText(ctx context.Context, reportText string, filename string) (AnalysisResult, error) {
	body, err := json.Marshal(analyzeTextRequest{ReportText: reportText, Filename: filename})
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	var result AnalysisResult
	if err := c.do(ctx, "/analyze", "application/json", bytes.NewReader(body), &result); err != nil {
		return AnalysisResult{}, err
	}
	return result, nil
}

// AnalyzeFile submits a raw file for server-side extraction and analysis.
func (c *APIClient) AnalyzeFile(ctx context.Context, filename string, mediaType string, content []byte) (AnalysisResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", mediaType)
	filePart, err := writer.CreatePart(header)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := filePart.Write(content); err != nil {
		return AnalysisResult{}, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return AnalysisResult{}, fmt.Errorf("close form: %w", err)
	}

	var result AnalysisResult
	if err := c.do(ctx, "/analyze/file", writer.FormDataContentType(), &body, &result); err != nil {
		return AnalysisResult{}, err
	}
	return result, nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *APIClient) CurrentUser(ctx context.Context) (UserInfo, error) {
	var data struct {
		User UserInfo `json:"user"`
	}
	if err := c.get(ctx, "/user", true, &data); err != nil {
		return UserInfo{}, err
	}
	return data.User, nil
}

// Health checks the backend without authentication.
func (c *APIClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, StatusText: resp.Status}
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, path string, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.send(req, true, out)
}

func (c *APIClient) get(ctx context.Context, path string, authed bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.send(req, authed, out)
}

func (c *APIClient) send(req *http.Request, authed bool, out any) error {
	if authed {
		token, err := c.tokens.Token(req.Context())
		if err != nil {
			return fmt.Errorf("fetch token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
		return ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
		return &APIError{StatusCode: resp.StatusCode, StatusText: resp.Status}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Status != "success" {
		return &APIError{StatusCode: resp.StatusCode, StatusText: resp.Status, Code: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
