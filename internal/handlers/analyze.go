package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"glaciercare/internal/models"
	"glaciercare/internal/service"
)

type analyzeRequest struct {
	ReportText string `json:"reportText" binding:"required"`
	Filename   string `json:"filename"`
}

func (h HandlerSet) AnalyzeText(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "report_text_required")
		return
	}

	result, err := h.analysis.AnalyzeText(c.Request.Context(), user, req.ReportText, req.Filename)
	if err != nil {
		if errors.Is(err, service.ErrEmptyReport) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("analyze text failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	respondSuccess(c, http.StatusOK, result)
}

func (h HandlerSet) AnalyzeFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file_required")
		return
	}
	defer file.Close()

	result, err := h.analysis.AnalyzeFile(c.Request.Context(), service.FileInput{
		User:   user,
		File:   file,
		Header: header,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFileTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUnsupportedType), errors.Is(err, service.ErrEmptyReport):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("analyze file failed")
			respondError(c, http.StatusInternalServerError, "internal_server_error")
		}
		return
	}

	respondSuccess(c, http.StatusOK, result)
}

type reportSummary struct {
	ID        string           `json:"id"`
	Filename  string           `json:"filename,omitempty"`
	MediaType string           `json:"mediaType"`
	SizeBytes int64            `json:"sizeBytes"`
	RiskLevel models.RiskLevel `json:"riskLevel"`
	Result    json.RawMessage  `json:"result"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (h HandlerSet) ListReports(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 50
	offset := 0
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	reports, err := h.analysis.ListReports(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("list reports failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	items := make([]reportSummary, 0, len(reports))
	for _, report := range reports {
		items = append(items, reportSummary{
			ID:        report.ID,
			Filename:  report.Filename,
			MediaType: report.MediaType,
			SizeBytes: report.SizeBytes,
			RiskLevel: report.RiskLevel,
			Result:    json.RawMessage(report.ResultJSON),
			CreatedAt: report.CreatedAt,
		})
	}

	respondSuccess(c, http.StatusOK, gin.H{"reports": items})
}
