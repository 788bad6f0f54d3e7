package client

import (
	"fmt"
	"io"
	"strings"
)

// Render writes the result as plain text sections. Pure display: it makes
// no decisions about the result's content.
func Render(w io.Writer, result AnalysisResult) {
	writeSection(w, "Key Findings", result.KeyFindings)
	writeSection(w, "What This Means", result.Explanations)
	writeSection(w, "Recommendations", result.Recommendations)
	writeSection(w, "Urgent Care", result.UrgentCare)

	if len(result.MedicationDetails) > 0 {
		fmt.Fprintln(w, "Medications")
		fmt.Fprintln(w, strings.Repeat("-", len("Medications")))
		for _, med := range result.MedicationDetails {
			fmt.Fprintf(w, "  %s\n", med.Name)
			fmt.Fprintf(w, "    Purpose:      %s\n", med.Purpose)
			fmt.Fprintf(w, "    Instructions: %s\n", med.Instructions)
			if med.SideEffects != "" {
				fmt.Fprintf(w, "    Side effects: %s\n", med.SideEffects)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Risk level: %s\n", result.RiskLevel)
}

func writeSection(w io.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
	for _, line := range lines {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	fmt.Fprintln(w)
}
