package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"glaciercare/internal/config"
	"glaciercare/internal/models"
)

func newModelServer(t *testing.T, reply string, status int) (*httptest.Server, *http.Request) {
	t.Helper()
	captured := &http.Request{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = *r.Clone(r.Context())
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": reply}}}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func newTestClient(endpoint string) *Client {
	return New(config.AnalyzerConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Model:    "gemini-2.5-flash",
		Timeout:  5 * time.Second,
	}, zerolog.Nop())
}

func TestAnalyzeSuccess(t *testing.T) {
	reply := "```json\n" + `{
		"keyFindings": ["Hemoglobin below normal"],
		"explanations": ["Consistent with mild anemia"],
		"recommendations": ["Discuss with your provider"],
		"urgentCare": [],
		"medicationDetails": [],
		"riskLevel": "moderate"
	}` + "\n```"
	server, captured := newModelServer(t, reply, http.StatusOK)

	client := newTestClient(server.URL)
	result := client.Analyze(context.Background(), "Hemoglobin: 9.8 g/dL", "")

	require.Equal(t, []string{"Hemoglobin below normal"}, result.KeyFindings)
	require.Equal(t, models.RiskModerate, result.RiskLevel)

	require.Equal(t, "/models/gemini-2.5-flash:generateContent", captured.URL.Path)
	require.Equal(t, "test-key", captured.Header.Get("x-goog-api-key"))
}

func TestAnalyzeServerErrorFallsBack(t *testing.T) {
	server, _ := newModelServer(t, "", http.StatusTooManyRequests)

	client := newTestClient(server.URL)
	result := client.Analyze(context.Background(), "Glucose: 180 mg/dL", "labs.pdf")

	require.Equal(t, Fallback("labs.pdf"), result)
}

func TestAnalyzeUnparseableReplyFallsBack(t *testing.T) {
	server, _ := newModelServer(t, "Sorry, I cannot help with that.", http.StatusOK)

	client := newTestClient(server.URL)
	result := client.Analyze(context.Background(), "Glucose: 180 mg/dL", "")

	require.Equal(t, Fallback(""), result)
}

func TestAnalyzeNetworkFailureFallsBack(t *testing.T) {
	server, _ := newModelServer(t, "", http.StatusOK)
	server.Close()

	client := newTestClient(server.URL)
	result := client.Analyze(context.Background(), "Glucose: 180 mg/dL", "")

	require.Equal(t, Fallback(""), result)
}

func TestBuildPromptIncludesReport(t *testing.T) {
	prompt := buildPrompt("Hemoglobin: 9.8 g/dL", "labs.txt")
	require.Contains(t, prompt, "Hemoglobin: 9.8 g/dL")
	require.Contains(t, prompt, "labs.txt")
	require.Contains(t, prompt, "keyFindings")
}
