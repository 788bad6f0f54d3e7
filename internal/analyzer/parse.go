package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"glaciercare/internal/models"
)

// parseModelReply decodes the model output and enforces the result schema.
// Models wrap JSON in markdown fences often enough that stripping them is
// part of the contract.
func parseModelReply(reply string) (models.AnalysisResult, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("decode model json: %w", err)
	}

	normalize(&result)
	return result, nil
}

// normalize fills missing fields so the renderer never sees nil slices, an
// out-of-range risk level, or a half-empty medication entry.
func normalize(result *models.AnalysisResult) {
	if result.KeyFindings == nil {
		result.KeyFindings = []string{}
	}
	if result.Explanations == nil {
		result.Explanations = []string{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	if result.UrgentCare == nil {
		result.UrgentCare = []string{}
	}

	if !result.RiskLevel.Valid() {
		result.RiskLevel = models.RiskModerate
	}

	meds := make([]models.Medication, 0, len(result.MedicationDetails))
	for _, med := range result.MedicationDetails {
		if med.Name == "" {
			med.Name = "Unknown"
		}
		if med.Purpose == "" {
			med.Purpose = "Not specified"
		}
		if med.Instructions == "" {
			med.Instructions = "Not specified"
		}
		if med.SideEffects == "" {
			med.SideEffects = "Not specified"
		}
		meds = append(meds, med)
	}
	result.MedicationDetails = meds
}
