package entity

import "github.com/joseph-ayodele/contract-risk/constants"

// AnalysisResult is the response shape of a single analysis.
type AnalysisResult struct {
	FileName  string              `json:"file_name"`
	RiskScore int                 `json:"risk_score"`
	RiskLevel constants.RiskLevel `json:"risk_level"`
	Summary   string              `json:"summary"`
	Clauses   []Clause            `json:"clauses"`
}

