package analysis

import (
	"strings"

	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/sanitize"
)

// RiskLevel is the categorical scam risk. It is authoritative over Score.
type RiskLevel string

const (
	RiskSafe      RiskLevel = "Safe"
	RiskWarning   RiskLevel = "Warning"
	RiskDangerous RiskLevel = "Dangerous"
)

var riskLabels = map[RiskLevel]string{
	RiskSafe:      "An Toàn",
	RiskWarning:   "Cảnh Báo",
	RiskDangerous: "Nguy Hiểm",
}

// Label returns the Vietnamese display label used on the wire to the provider.
func (r RiskLevel) Label() string { return riskLabels[r] }

// ParseRiskLevel accepts either the canonical name or the display label.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	s = strings.TrimSpace(s)
	for level, label := range riskLabels {
		if strings.EqualFold(s, string(level)) || strings.EqualFold(s, label) {
			return level, true
		}
	}
	return "", false
}

// Entities are the posting's key facts.
type Entities struct {
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
	Salary      string `json:"salary"`
	Location    string `json:"location"`
}

// ScamAnalysis is the fraud assessment.
type ScamAnalysis struct {
	RiskLevel RiskLevel `json:"riskLevel"`
	RiskLabel string    `json:"riskLabel"`
	Reasons   []string  `json:"reasons"`
	Verdict   string    `json:"verdict"`
	// Score is an optional 0-100 indicator; absent when the provider gave none.
	Score *int `json:"score,omitempty"`
}

// Suitability is the fit assessment for a student worker.
type Suitability struct {
	SkillsRequired []string `json:"skillsRequired"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	ContactRisks   []string `json:"contactRisks"`
	Advice         string   `json:"advice"`
}

// GroundingData is the verification narrative and its citations.
type GroundingData struct {
	VerificationText   string           `json:"verificationText"`
	VerificationBlocks []sanitize.Block `json:"verificationBlocks"`
	SearchChunks       []llm.Source     `json:"searchChunks"`
	MapChunks          []llm.Source     `json:"mapChunks"`
}

// Result is one complete analysis. It is only ever published whole.
type Result struct {
	Entities         Entities      `json:"entities"`
	ScamAnalysis     ScamAnalysis  `json:"scamAnalysis"`
	Suitability      Suitability   `json:"suitability"`
	GroundingData    GroundingData `json:"groundingData"`
	ApplicationDraft string        `json:"applicationDraft"`
	// Degraded names the sub-calls that fell back to defaults.
	Degraded []string `json:"degraded,omitempty"`
}
