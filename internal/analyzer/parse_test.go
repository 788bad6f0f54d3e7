package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"glaciercare/internal/models"
)

func TestParseModelReply(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		result, err := parseModelReply(`{
			"keyFindings": ["Elevated glucose"],
			"explanations": ["May indicate prediabetes"],
			"recommendations": ["Repeat fasting glucose"],
			"urgentCare": [],
			"medicationDetails": [],
			"riskLevel": "low"
		}`)
		require.NoError(t, err)
		require.Equal(t, []string{"Elevated glucose"}, result.KeyFindings)
		require.Equal(t, models.RiskLow, result.RiskLevel)
	})

	t.Run("markdown fences stripped", func(t *testing.T) {
		reply := "```json\n{\"keyFindings\":[\"ok\"],\"riskLevel\":\"high\"}\n```"
		result, err := parseModelReply(reply)
		require.NoError(t, err)
		require.Equal(t, []string{"ok"}, result.KeyFindings)
		require.Equal(t, models.RiskHigh, result.RiskLevel)
	})

	t.Run("bare fences stripped", func(t *testing.T) {
		reply := "```\n{\"riskLevel\":\"moderate\"}\n```"
		result, err := parseModelReply(reply)
		require.NoError(t, err)
		require.Equal(t, models.RiskModerate, result.RiskLevel)
	})

	t.Run("missing arrays become empty", func(t *testing.T) {
		result, err := parseModelReply(`{"riskLevel":"low"}`)
		require.NoError(t, err)
		require.NotNil(t, result.KeyFindings)
		require.NotNil(t, result.Explanations)
		require.NotNil(t, result.Recommendations)
		require.NotNil(t, result.UrgentCare)
		require.Empty(t, result.KeyFindings)
	})

	t.Run("invalid risk level corrected to moderate", func(t *testing.T) {
		result, err := parseModelReply(`{"riskLevel":"catastrophic"}`)
		require.NoError(t, err)
		require.Equal(t, models.RiskModerate, result.RiskLevel)
	})

	t.Run("medication defaults filled", func(t *testing.T) {
		result, err := parseModelReply(`{
			"riskLevel": "low",
			"medicationDetails": [{"name": "Metformin"}]
		}`)
		require.NoError(t, err)
		require.Len(t, result.MedicationDetails, 1)
		med := result.MedicationDetails[0]
		require.Equal(t, "Metformin", med.Name)
		require.Equal(t, "Not specified", med.Purpose)
		require.Equal(t, "Not specified", med.Instructions)
		require.Equal(t, "Not specified", med.SideEffects)
	})

	t.Run("nameless medication named Unknown", func(t *testing.T) {
		result, err := parseModelReply(`{"medicationDetails":[{"purpose":"blood pressure"}]}`)
		require.NoError(t, err)
		require.Equal(t, "Unknown", result.MedicationDetails[0].Name)
	})

	t.Run("non json fails", func(t *testing.T) {
		_, err := parseModelReply("I am sorry, I cannot analyze this report.")
		require.Error(t, err)
	})
}

func TestFallback(t *testing.T) {
	t.Run("without filename", func(t *testing.T) {
		result := Fallback("")
		require.Equal(t, models.RiskModerate, result.RiskLevel)
		require.Equal(t, "Report analysis completed", result.KeyFindings[0])
		require.NotEmpty(t, result.UrgentCare)
		require.NotNil(t, result.MedicationDetails)
		require.Empty(t, result.MedicationDetails)
	})

	t.Run("with filename", func(t *testing.T) {
		result := Fallback("labs.pdf")
		require.Equal(t, "Report analysis completed (from file: labs.pdf)", result.KeyFindings[0])
	})
}
