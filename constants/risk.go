package constants

import "strings"

// ClauseType tags the category of a detected clause.
type ClauseType string

const (
	ClauseLockIn       ClauseType = "lock_in"
	ClauseForeclosure  ClauseType = "foreclosure"
	ClausePenalty      ClauseType = "penalty"
	ClauseAutoRenew    ClauseType = "auto_renew"
	ClauseDataSharing  ClauseType = "data_sharing"
	ClauseCharges      ClauseType = "charges"
	ClauseIllegalTerms ClauseType = "illegal_terms"
	ClauseOther        ClauseType = "other"
)

var allClauseTypes = []ClauseType{
	ClauseLockIn,
	ClauseForeclosure,
	ClausePenalty,
	ClauseAutoRenew,
	ClauseDataSharing,
	ClauseCharges,
	ClauseIllegalTerms,
	ClauseOther,
}

// ClauseTypesAsStrings is used for prompt text and the JSON schema enum.
func ClauseTypesAsStrings() []string {
	out := make([]string, len(allClauseTypes))
	for i, t := range allClauseTypes {
		out[i] = string(t)
	}
	return out
}

// CanonicalClauseType lower-cases the input and returns it when it is a known
// type, otherwise ClauseOther. The bool reports whether the input was known.
func CanonicalClauseType(s string) (ClauseType, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	for _, t := range allClauseTypes {
		if n == string(t) {
			return t, true
		}
	}
	return ClauseOther, false
}

// Severity of a single clause.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity lower-cases and trims s. The bool reports whether it named a
// known severity; otherwise the result is medium.
func ParseSeverity(s string) (Severity, bool) {
	switch n := Severity(strings.ToLower(strings.TrimSpace(s))); n {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return n, true
	default:
		return SeverityMedium, false
	}
}

// NormalizeSeverity is ParseSeverity without the flag: empty or unknown input
// becomes medium.
func NormalizeSeverity(s string) Severity {
	sev, _ := ParseSeverity(s)
	return sev
}

// RiskLevel is the coarse bucket of a risk score.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskUnknown RiskLevel = "unknown" // no extractable text only
)

// ParseRiskLevel accepts low/medium/high in any case. unknown is not accepted
// here because it is reserved for the no-text path.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	}
	return "", false
}
