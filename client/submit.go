package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MaxFileBytes is the upload size gate applied before any request is made.
const MaxFileBytes = 20 << 20 // 20 MiB

// DefaultSubmitTimeout bounds a single submission so a hung network call
// degrades into the fallback result instead of a permanently stuck flow.
const DefaultSubmitTimeout = 2 * time.Minute

const (
	imageSentinelPrefix    = "[Image uploaded: "
	documentSentinelPrefix = "[Document uploaded: "
	sentinelSuffix         = " - ready for server-side analysis]"
)

var allowedUploadTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"text/plain":      {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// SelectedFile is a user-chosen report file, held client-side until
// submission decides whether its bytes or its hoisted text get sent.
type SelectedFile struct {
	Name      string
	Size      int64
	MediaType string
	Content   []byte
}

// Submitter owns the report-submission flow: input validation, file-type
// dispatch, the analyzing flag, and fallback-on-failure. One Submitter per
// input form.
type Submitter struct {
	api     *APIClient
	timeout time.Duration

	mu        sync.Mutex
	text      string
	file      *SelectedFile
	analyzing bool
	result    *AnalysisResult
}

func NewSubmitter(api *APIClient) *Submitter {
	return &Submitter{
		api:     api,
		timeout: DefaultSubmitTimeout,
	}
}

// SetTimeout overrides the per-submission deadline.
func (s *Submitter) SetTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.timeout = d
	}
}

// SetText replaces the text-area content.
func (s *Submitter) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

func (s *Submitter) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// SelectFile applies the acceptance gate and, on success, either hoists a
// plain-text file's content into the text field or marks the field with the
// sentinel placeholder. A rejected file leaves all prior state untouched.
func (s *Submitter) SelectFile(file SelectedFile) error {
	if file.Size > MaxFileBytes {
		return ErrFileTooLarge
	}
	if _, ok := allowedUploadTypes[file.MediaType]; !ok {
		return ErrUnsupportedFile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	selected := file
	s.file = &selected

	switch {
	case file.MediaType == "text/plain":
		s.text = string(file.Content)
	case strings.HasPrefix(file.MediaType, "image/"):
		s.text = imageSentinelPrefix + file.Name + sentinelSuffix
	default:
		s.text = documentSentinelPrefix + file.Name + sentinelSuffix
	}
	return nil
}

// ClearFile deselects the file without touching the text field.
func (s *Submitter) ClearFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = nil
}

func (s *Submitter) IsAnalyzing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzing
}

// Result returns the latest completed analysis, or nil before the first one.
func (s *Submitter) Result() *AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Submit issues exactly one backend call and produces exactly one result.
// Sentinel text with a selected file means the raw file goes up for
// server-side extraction; otherwise non-empty text is sent as JSON. Any
// backend or network failure is absorbed into the fixed fallback result.
func (s *Submitter) Submit(ctx context.Context) (*AnalysisResult, error) {
	s.mu.Lock()
	if s.analyzing {
		s.mu.Unlock()
		return nil, ErrAnalysisInFlight
	}
	text := s.text
	file := s.file
	if strings.TrimSpace(text) == "" && file == nil {
		s.mu.Unlock()
		return nil, ErrNothingToSubmit
	}
	s.analyzing = true
	timeout := s.timeout
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.analyzing = false
		s.mu.Unlock()
	}()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		result AnalysisResult
		err    error
	)
	switch {
	case file != nil && IsSentinel(text):
		result, err = s.api.AnalyzeFile(callCtx, file.Name, file.MediaType, file.Content)
	case strings.TrimSpace(text) != "":
		filename := ""
		if file != nil {
			filename = file.Name
		}
		result, err = s.api.AnalyzeText(callCtx, text, filename)
	default:
		return nil, ErrNothingToSubmit
	}

	if err != nil {
		filename := ""
		if file != nil {
			filename = file.Name
		}
		result = fallbackResult(filename)
	}

	s.mu.Lock()
	s.result = &result
	s.mu.Unlock()
	return &result, nil
}

// IsSentinel reports whether text is one of the two upload placeholders.
func IsSentinel(text string) bool {
	if !strings.HasSuffix(text, sentinelSuffix) {
		return false
	}
	return strings.HasPrefix(text, imageSentinelPrefix) || strings.HasPrefix(text, documentSentinelPrefix)
}

// fallbackResult matches a genuine result in shape so the renderer never
// needs to special-case failure.
func fallbackResult(filename string) AnalysisResult {
	fileInfo := ""
	if filename != "" {
		fileInfo = fmt.Sprintf(" (from file: %s)", filename)
	}

	return AnalysisResult{
		KeyFindings: []string{
			fmt.Sprintf("Report analysis completed%s", fileInfo),
			"Unable to provide detailed AI analysis at this time",
			"Please consult your healthcare provider",
		},
		Explanations: []string{
			"We had a technical issue while analyzing your report.",
			"This does not reflect your health status.",
			"Your healthcare provider can give a detailed explanation.",
		},
		Recommendations: []string{
			"Contact your healthcare provider for interpretation",
			"Keep a copy of your medical report",
			"Schedule a follow-up appointment",
		},
		UrgentCare: []string{
			"Seek immediate care if you have severe symptoms",
			"Do not delay urgent medical attention",
		},
		MedicationDetails: []Medication{},
		RiskLevel:         RiskModerate,
	}
}
