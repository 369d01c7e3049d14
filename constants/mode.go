package constants

// AnalyzerMode selects how backend failures are handled.
type AnalyzerMode string

const (
	// ModeHybrid prefers the model and falls back to keyword rules.
	ModeHybrid AnalyzerMode = "hybrid"
	// ModeAIOnly requires a backend credential and never runs the rules.
	ModeAIOnly AnalyzerMode = "ai_only"
)

// ScoringSource decides who computes score, level and summary.
type ScoringSource string

const (
	ScoringLocal ScoringSource = "local"
	ScoringModel ScoringSource = "model"
)

// Detection strategies, reported in logs.
const (
	StrategyAI    = "ai"
	StrategyRules = "rules"
)
