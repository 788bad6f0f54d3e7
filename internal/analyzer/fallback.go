package analyzer

import (
	"fmt"

	"glaciercare/internal/models"
)

// Fallback is the fixed result used whenever analysis is unavailable. It has
// the same shape as a genuine result so nothing downstream special-cases it.
func Fallback(filename string) models.AnalysisResult {
	fileInfo := ""
	if filename != "" {
		fileInfo = fmt.Sprintf(" (from file: %s)", filename)
	}

	return models.AnalysisResult{
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
		MedicationDetails: []models.Medication{},
		RiskLevel:         models.RiskModerate,
	}
}
