package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticTokens struct{}

func (staticTokens) Token(ctx context.Context) (string, error) {
	return "test-token", nil
}

type recordedRequest struct {
	path        string
	contentType string
	body        []byte
}

// analysisBackend fakes the analyze endpoints and records every request.
type analysisBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	result   AnalysisResult
	status   int
}

func newAnalysisBackend(result AnalysisResult) *analysisBackend {
	return &analysisBackend{result: result, status: http.StatusOK}
}

func (b *analysisBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		path:        r.URL.Path,
		contentType: r.Header.Get("Content-Type"),
		body:        body,
	})
	status := b.status
	result := b.result
	b.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"status":"error","error":"analysis_failed"}`)
		return
	}

	data, _ := json.Marshal(result)
	fmt.Fprintf(w, `{"status":"success","data":%s}`, data)
}

func (b *analysisBackend) calls() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func sampleResult() AnalysisResult {
	return AnalysisResult{
		KeyFindings:       []string{"Hemoglobin is below the normal range"},
		Explanations:      []string{"Low hemoglobin can indicate anemia"},
		Recommendations:   []string{"Discuss iron studies with your provider"},
		UrgentCare:        []string{},
		MedicationDetails: []Medication{},
		RiskLevel:         RiskModerate,
	}
}

func newTestSubmitter(t *testing.T, backend http.Handler) (*Submitter, func()) {
	t.Helper()
	server := httptest.NewServer(backend)
	api := NewAPIClient(server.URL, staticTokens{}, server.Client())
	return NewSubmitter(api), server.Close
}

func TestSubmitEmptyInput(t *testing.T) {
	backend := newAnalysisBackend(sampleResult())
	submitter, stop := newTestSubmitter(t, backend)
	defer stop()

	t.Run("no text and no file", func(t *testing.T) {
		result, err := submitter.Submit(context.Background())
		require.ErrorIs(t, err, ErrNothingToSubmit)
		require.Nil(t, result)
	})

	t.Run("whitespace only text", func(t *testing.T) {
		submitter.SetText("   \n\t  ")
		result, err := submitter.Submit(context.Background())
		require.ErrorIs(t, err, ErrNothingToSubmit)
		require.Nil(t, result)
	})

	require.Empty(t, backend.calls(), "no backend call may be made for empty input")
}

func TestSubmitTextDispatch(t *testing.T) {
	backend := newAnalysisBackend(sampleResult())
	submitter, stop := newTestSubmitter(t, backend)
	defer stop()

	reportText := "Hemoglobin: 9.8 g/dL (Normal: 12-16 g/dL)"
	submitter.SetText(reportText)

	result, err := submitter.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, sampleResult().KeyFindings, result.KeyFindings)

	calls := backend.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "/analyze", calls[0].path)
	require.Equal(t, "application/json", calls[0].contentType)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(calls[0].body, &payload))
	require.Equal(t, reportText, payload["reportText"])
	require.NotContains(t, payload, "filename")
}

func TestSubmitFileDispatch(t *testing.T) {
	backend := newAnalysisBackend(sampleResult())
	submitter, stop := newTestSubmitter(t, backend)
	defer stop()

	content := []byte("\x89PNG\r\n\x1a\nfake image bytes")
	err := submitter.SelectFile(SelectedFile{
		Name:      "scan.png",
		Size:      int64(len(content)),
		MediaType: "image/png",
		Content:   content,
	})
	require.NoError(t, err)
	require.Equal(t, "[Image uploaded: scan.png - ready for server-side analysis]", submitter.Text())

	result, err := submitter.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	calls := backend.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "/analyze/file", calls[0].path)
	require.True(t, strings.HasPrefix(calls[0].contentType, "multipart/form-data"))
	require.Contains(t, string(calls[0].body), `filename="scan.png"`)
	require.Contains(t, string(calls[0].body), "Content-Type: image/png")
}

func TestSubmitHoistedTextFile(t *testing.T) {
	backend := newAnalysisBackend(sampleResult())
	submitter, stop := newTestSubmitter(t, backend)
	defer stop()

	content := "CBC panel\nHemoglobin: 9.8 g/dL"
	err := submitter.SelectFile(SelectedFile{
		Name:      "labs.txt",
		Size:      int64(len(content)),
		MediaType: "text/plain",
		Content:   []byte(content),
	})
	require.NoError(t, err)
	require.Equal(t, content, submitter.Text(), "plain text files hoist their content verbatim")

	_, err = submitter.Submit(context.Background())
	require.NoError(t, err)

	calls := backend.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "/analyze", calls[0].path, "hoisted text dispatches as text, not as a file upload")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(calls[0].body, &payload))
	require.Equal(t, content, payload["reportText"])
	require.Equal(t, "labs.txt", payload["filename"])
}

func TestSubmitEditedSentinelSendsText(t *testing.T) {
	backend := newAnalysisBackend(sampleResult())
	submitter, stop := newTestSubmitter(t, backend)
	defer stop()

	err := submitter.SelectFile(SelectedFile{
		Name:      "report.pdf",
		Size:      128,
		MediaType: "application/pdf",
		Content:   []byte("%PDF-1.4 ..."),
	})
	require.NoError(t, err)
	require.Equal(t, "[Document uploaded: report.pdf - ready for server-side analysis]", submitter.Text())

	// the user typed over the placeholder, so their words win
	submitter.SetText("Cholesterol 240 mg/dL, LDL 160 mg/dL")

	_, err = submitter.Submit(context.Background())
	require.NoError(t, err)

	calls := backend.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "/analyze", calls[0].path)
}

func TestSelectFileRejections(t *testing.T) {
	backend := newAnalysisBackend(sampleResult())
	submitter, stop := newTestSubmitter(t, backend)
	defer stop()

	submitter.SetText("existing text")

	t.Run("oversized file", func(t *testing.T) {
		err := submitter.SelectFile(SelectedFile{
			Name:      "huge.pdf",
			Size:      MaxFileBytes + 1,
			MediaType: "application/pdf",
		})
		require.ErrorIs(t, err, ErrFileTooLarge)
		require.Equal(t, "existing text", submitter.Text())
		require.Nil(t, submitter.Result())
	})

	t.Run("unsupported media type", func(t *testing.T) {
		err := submitter.SelectFile(SelectedFile{
			Name:      "archive.zip",
			Size:      100,
			MediaType: "application/zip",
		})
		require.ErrorIs(t, err, ErrUnsupportedFile)
		require.Equal(t, "existing text", submitter.Text())
	})

	require.Empty(t, backend.calls(), "rejected files must not reach the backend")
}

func TestSubmitFallbackOnFailure(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		backend := newAnalysisBackend(sampleResult())
		backend.status = http.StatusInternalServerError
		submitter, stop := newTestSubmitter(t, backend)
		defer stop()

		submitter.SetText("WBC 15.2 K/uL")
		result, err := submitter.Submit(context.Background())
		require.NoError(t, err, "failures surface as the fallback result, not as an error")
		requireFallbackShape(t, result, "")
	})

	t.Run("network failure", func(t *testing.T) {
		backend := newAnalysisBackend(sampleResult())
		submitter, stop := newTestSubmitter(t, backend)
		stop() // server already gone when Submit runs

		content := []byte("%PDF-1.4")
		require.NoError(t, submitter.SelectFile(SelectedFile{
			Name:      "report.pdf",
			Size:      int64(len(content)),
			MediaType: "application/pdf",
			Content:   content,
		}))

		result, err := submitter.Submit(context.Background())
		require.NoError(t, err)
		requireFallbackShape(t, result, "report.pdf")
	})
}

func requireFallbackShape(t *testing.T, result *AnalysisResult, filename string) {
	t.Helper()
	require.NotNil(t, result)
	require.Equal(t, RiskModerate, result.RiskLevel)
	require.NotEmpty(t, result.UrgentCare)
	require.NotNil(t, result.MedicationDetails)
	require.Empty(t, result.MedicationDetails)
	require.NotEmpty(t, result.KeyFindings)
	if filename != "" {
		require.Contains(t, result.KeyFindings[0], fmt.Sprintf("(from file: %s)", filename))
	}
}

func TestSubmitInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	backend := newAnalysisBackend(sampleResult())
	gated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		backend.ServeHTTP(w, r)
	})
	submitter, stop := newTestSubmitter(t, gated)
	defer stop()

	submitter.SetText("Glucose 180 mg/dL")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = submitter.Submit(context.Background())
	}()

	require.Eventually(t, submitter.IsAnalyzing, time.Second, 5*time.Millisecond)

	_, err := submitter.Submit(context.Background())
	require.ErrorIs(t, err, ErrAnalysisInFlight)

	close(release)
	<-done

	require.False(t, submitter.IsAnalyzing())
	require.Len(t, backend.calls(), 1)
}

func TestIsSentinel(t *testing.T) {
	require.True(t, IsSentinel("[Image uploaded: x.png - ready for server-side analysis]"))
	require.True(t, IsSentinel("[Document uploaded: r.pdf - ready for server-side analysis]"))
	require.False(t, IsSentinel("Hemoglobin: 9.8 g/dL"))
	require.False(t, IsSentinel("[Image uploaded: x.png"))
	require.False(t, IsSentinel("[Video uploaded: x.mp4 - ready for server-side analysis]"))
}

func TestHemoglobinScenario(t *testing.T) {
	result := AnalysisResult{
		KeyFindings:       []string{"Hemoglobin of 9.8 g/dL is below the normal range of 12-16 g/dL"},
		Explanations:      []string{"This level of hemoglobin suggests mild anemia"},
		Recommendations:   []string{"Ask your provider about iron studies and dietary changes"},
		UrgentCare:        []string{},
		MedicationDetails: []Medication{},
		RiskLevel:         RiskModerate,
	}
	backend := newAnalysisBackend(result)
	submitter, stop := newTestSubmitter(t, backend)
	defer stop()

	submitter.SetText("Hemoglobin: 9.8 g/dL (Normal: 12-16 g/dL)")
	got, err := submitter.Submit(context.Background())
	require.NoError(t, err)

	calls := backend.calls()
	require.Len(t, calls, 1)
	require.Equal(t, "/analyze", calls[0].path)

	var rendered strings.Builder
	Render(&rendered, *got)
	out := rendered.String()
	require.Contains(t, out, "Key Findings")
	require.Contains(t, out, "Hemoglobin of 9.8 g/dL is below the normal range of 12-16 g/dL")
	require.Contains(t, out, "What This Means")
	require.Contains(t, out, "Risk level: moderate")
	require.NotContains(t, out, "Urgent Care", "empty sections are omitted")
}
