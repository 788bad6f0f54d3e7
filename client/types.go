// Package client is the Go client for the Glacier Care analysis API. It owns
// the session lifecycle, attaches tokens to outbound calls, and turns raw
// user input into exactly one analysis request and one result.
package client

import (
	"encoding/json"
	"time"
)

// Session describes the signed-in user. It is replaced wholesale on every
// auth change, never mutated in place.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

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

// AnalysisResult is the normalized outcome of one submission. The fallback
// produced on failure has exactly this shape, so rendering code never needs
// to distinguish the two.
type AnalysisResult struct {
	KeyFindings       []string          `json:"keyFindings"`
	Explanations      []string          `json:"explanations"`
	Recommendations   []string          `json:"recommendations"`
	UrgentCare        []string          `json:"urgentCare"`
	MedicationDetails []Medication      `json:"medicationDetails"`
	RiskLevel         RiskLevel         `json:"riskLevel"`
	Metadata          *AnalysisMetadata `json:"metadata,omitempty"`
}

type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}
