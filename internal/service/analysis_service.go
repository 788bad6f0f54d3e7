package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"glaciercare/internal/analyzer"
	"glaciercare/internal/config"
	"glaciercare/internal/extractor"
	"glaciercare/internal/ids"
	"glaciercare/internal/media/docsniff"
	"glaciercare/internal/models"
	"glaciercare/internal/repository"
	"glaciercare/internal/storage"
)

var (
	ErrEmptyReport     = errors.New("report_text_required")
	ErrFileTooLarge    = errors.New("file_too_large")
	ErrUnsupportedType = errors.New("unsupported_media_type")
)

// AnalysisService turns pasted text or an uploaded file into exactly one
// AnalysisResult. Analyzer and extractor failures never escape: the caller
// always gets a result, at worst the fixed fallback.
type AnalysisService struct {
	reports   *repository.ReportRepository
	store     *storage.ObjectStore
	analyzer  *analyzer.Client
	extractor *extractor.Client
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewAnalysisService(
	reports *repository.ReportRepository,
	store *storage.ObjectStore,
	analyzerClient *analyzer.Client,
	extractorClient *extractor.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		reports:   reports,
		store:     store,
		analyzer:  analyzerClient,
		extractor: extractorClient,
		cfg:       cfg,
		log:       log,
	}
}

// AnalyzeText analyzes pasted (or pre-extracted) report text.
func (s *AnalysisService) AnalyzeText(ctx context.Context, user models.User, reportText string, filename string) (models.AnalysisResult, error) {
	reportText = strings.TrimSpace(reportText)
	if reportText == "" {
		return models.AnalysisResult{}, ErrEmptyReport
	}

	result := s.analyzer.Analyze(ctx, reportText, filename)
	s.attachMetadata(&result, user.ID, filename, len(reportText))

	s.persist(ctx, user.ID, filename, "text/plain", int64(len(reportText)), "", "", result)
	return result, nil
}

type FileInput struct {
	User   models.User
	File   multipart.File
	Header *multipart.FileHeader
}

// AnalyzeFile gates, stores and analyzes an uploaded report file. Plain text
// is decoded in-process; every other accepted type goes to the external
// extraction service.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, input FileInput) (models.AnalysisResult, error) {
	if input.File == nil || input.Header == nil {
		return models.AnalysisResult{}, errors.New("invalid file payload")
	}
	if input.Header.Size > docsniff.MaxUploadBytes {
		return models.AnalysisResult{}, ErrFileTooLarge
	}

	declared := docsniff.MimeTypeFromHTTP(http.Header(input.Header.Header))
	if declared != "" && !docsniff.Allowed(declared) {
		return models.AnalysisResult{}, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(input.File, docsniff.MaxUploadBytes+1))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > docsniff.MaxUploadBytes {
		return models.AnalysisResult{}, ErrFileTooLarge
	}
	if len(data) == 0 {
		return models.AnalysisResult{}, ErrEmptyReport
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detected, err := docsniff.DetectHead(head)
	if err != nil {
		return models.AnalysisResult{}, ErrUnsupportedType
	}

	filename := input.Header.Filename
	user := input.User

	if detected.Type == docsniff.TypeText {
		return s.AnalyzeText(ctx, user, string(data), filename)
	}

	reportID := ids.New()
	objectKey := ""
	if s.store != nil {
		key, err := s.store.PutReport(ctx, reportID, string(detected.Type), detected.MIME, data)
		if err != nil {
			s.log.Warn().Err(err).Str("report_id", reportID).Msg("store report file failed")
		} else {
			objectKey = key
		}
	}

	var result models.AnalysisResult
	text, err := s.extractor.ExtractText(ctx, filename, detected.MIME, data)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Error().Err(err).Str("filename", filename).Msg("text extraction failed")
		result = analyzer.Fallback(filename)
	} else {
		result = s.analyzer.Analyze(ctx, text, filename)
	}
	s.attachMetadata(&result, user.ID, filename, len(text))

	s.persistWithID(ctx, reportID, user.ID, filename, detected.MIME, int64(len(data)), s.bucket(), objectKey, result)
	return result, nil
}

func (s *AnalysisService) ListReports(ctx context.Context, userID string, limit, offset int) ([]models.Report, error) {
	return s.reports.ListByUser(ctx, userID, limit, offset)
}

func (s *AnalysisService) attachMetadata(result *models.AnalysisResult, userID string, filename string, reportLength int) {
	result.Metadata = &models.AnalysisMetadata{
		Filename:          filename,
		AnalysisTimestamp: time.Now().UTC(),
		ReportLength:      reportLength,
		AIModel:           s.analyzer.Model(),
		UserID:            userID,
	}
}

func (s *AnalysisService) bucket() string {
	if s.store == nil {
		return ""
	}
	return s.store.Bucket()
}

// persist saves the analysis record. Persistence failure is logged, not
// returned: the user already has the result in hand.
func (s *AnalysisService) persist(ctx context.Context, userID, filename, mediaType string, sizeBytes int64, bucket, objectKey string, result models.AnalysisResult) {
	s.persistWithID(ctx, ids.New(), userID, filename, mediaType, sizeBytes, bucket, objectKey, result)
}

func (s *AnalysisService) persistWithID(ctx context.Context, reportID, userID, filename, mediaType string, sizeBytes int64, bucket, objectKey string, result models.AnalysisResult) {
	if s.reports == nil {
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.log.Error().Err(err).Str("report_id", reportID).Msg("marshal result failed")
		return
	}

	expireAt := time.Now().Add(s.cfg.Retention.ReportTTL)
	report := models.Report{
		ID:         reportID,
		UserID:     userID,
		Filename:   filename,
		MediaType:  mediaType,
		SizeBytes:  sizeBytes,
		Bucket:     bucket,
		ObjectKey:  objectKey,
		RiskLevel:  result.RiskLevel,
		ResultJSON: resultJSON,
		ExpireAt:   &expireAt,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		s.log.Error().Err(err).Str("report_id", reportID).Msg("save report failed")
	}
}
