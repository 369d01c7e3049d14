package llm

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
)

// ErrMissingAPIKey is returned by backends constructed without a credential.
var ErrMissingAPIKey = errors.New("llm: api key not configured")

// CompletionRequest is one system + user exchange with a chat model.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
	JSONMode    bool // ask the backend for a JSON object response when it supports it
}

// Completer is the interface the clause detector depends on. Implementations
// return the raw assistant text; recovering JSON from it is the caller's job.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ClauseAnalysis is the sanitized shape recovered from a model response.
// Score, Level and Summary are set only when the model was asked to score.
type ClauseAnalysis struct {
	Clauses []entity.Clause
	Score   *int
	Level   *constants.RiskLevel
	Summary *string
}
