package models

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Valid reports whether the level is one of the three recognised values.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskModerate || r == RiskHigh
}

type Medication struct {
	Name         string `json:"name"`
	Purpose      string `json:"purpose"`
	Instructions string `json:"instructions"`
	SideEffects  string `json:"sideEffects,omitempty"`
}

type AnalysisMetadata struct {
	Filename          string    `json:"filename"`
	AnalysisTimestamp time.Time `json:"analysisTimestamp"`
	ReportLength      int       `json:"reportLength"`
	AIModel           string    `json:"aiModel"`
	UserID            string    `json:"userId"`
}

// AnalysisResult is the normalized output of a report analysis. It is
// immutable once produced; a new submission supersedes the previous value.
type AnalysisResult struct {
	KeyFindings       []string          `json:"keyFindings"`
	Explanations      []string          `json:"explanations"`
	Recommendations   []string          `json:"recommendations"`
	UrgentCare        []string          `json:"urgentCare"`
	MedicationDetails []Medication      `json:"medicationDetails"`
	RiskLevel         RiskLevel         `json:"riskLevel"`
	Metadata          *AnalysisMetadata `json:"metadata,omitempty"`
}

type Report struct {
	ID         string
	UserID     string
	Filename   string
	MediaType  string
	SizeBytes  int64
	Bucket     string
	ObjectKey  string
	RiskLevel  RiskLevel
	ResultJSON []byte
	ExpireAt   *time.Time
	CreatedAt  time.Time
}
