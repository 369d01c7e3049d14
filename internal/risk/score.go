package risk

import (
	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

// Score weights per clause severity and the level thresholds.
const (
	WeightHigh    = 25
	WeightMedium  = 15
	WeightLow     = 5
	MaxScore      = 100
	MediumAtScore = 30
	HighAtScore   = 70
)

// Weight returns the score contribution of one clause. Missing or unknown
// severities count as medium.
func Weight(s constants.Severity) int {
	switch constants.NormalizeSeverity(string(s)) {
	case constants.SeverityHigh:
		return WeightHigh
	case constants.SeverityLow:
		return WeightLow
	default:
		return WeightMedium
	}
}

// Score sums clause weights and clamps the total to [0, MaxScore].
func Score(clauses []entity.Clause) int {
	total := 0
	for _, c := range clauses {
		total += Weight(c.Severity)
		if total >= MaxScore {
			return MaxScore
		}
	}
	return total
}

// Level buckets a score: below 30 is low, below 70 is medium, otherwise high.
func Level(score int) constants.RiskLevel {
	switch {
	case score < MediumAtScore:
		return constants.RiskLow
	case score < HighAtScore:
		return constants.RiskMedium
	default:
		return constants.RiskHigh
	}
}

// CountBySeverity counts high and medium clauses, the two counts the summary reports.
func CountBySeverity(clauses []entity.Clause) (high, medium int) {
	for _, c := range clauses {
		switch constants.NormalizeSeverity(string(c.Severity)) {
		case constants.SeverityHigh:
			high++
		case constants.SeverityMedium:
			medium++
		}
	}
	return high, medium
}

// ClampScore forces a model-supplied score into [0, MaxScore].
func ClampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}
