package analyzer

import "fmt"

// buildPrompt asks for a structured JSON reply with every medication fully
// explained. The schema here must stay in lockstep with models.AnalysisResult.
func buildPrompt(reportText string, filename string) string {
	fileInfo := ""
	if filename != "" {
		fileInfo = fmt.Sprintf(" (from file: %s)", filename)
	}

	return fmt.Sprintf(`You are a medical AI assistant that analyzes medical reports and provides clear explanations for patients.

Please analyze the following medical report%s and provide a structured JSON output.
Focus especially on medications: extract each medication name, dosage, explain its purpose, how to take it, and common side effects.
If no medications are mentioned, return "medicationDetails": [].

Medical Report:
%s

Respond ONLY with valid JSON in this format:

{
  "keyFindings": ["..."],
  "explanations": ["..."],
  "recommendations": ["..."],
  "urgentCare": ["..."],
  "medicationDetails": [
    {
      "name": "Medication name and dosage",
      "purpose": "What this medicine does in simple terms",
      "instructions": "When/how to take it",
      "sideEffects": "Common side effects to watch for"
    }
  ],
  "riskLevel": "low|moderate|high"
}`, fileInfo, reportText)
}
