package detect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/llm"
)

// Token budgets per scoring source.
const (
	MaxTokensLocal = 1024
	MaxTokensModel = 2048
)

// AIConfig tunes the model-backed strategy.
type AIConfig struct {
	Scoring        constants.ScoringSource
	MaxPromptChars int // runes of contract text sent; 0 picks the scoring default
	MaxTokens      int
	Temperature    float32
}

// AIDetector asks a chat model for risky clauses. A nil completer makes the
// detector permanently unavailable.
type AIDetector struct {
	completer llm.Completer
	cfg       AIConfig
	schema    map[string]any
	logger    *slog.Logger
}

func NewAIDetector(completer llm.Completer, cfg AIConfig, logger *slog.Logger) *AIDetector {
	if cfg.Scoring == "" {
		cfg.Scoring = constants.ScoringLocal
	}
	withScore := cfg.Scoring == constants.ScoringModel
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = common.DefaultPromptCharsLocal
		if withScore {
			cfg.MaxPromptChars = common.DefaultPromptCharsModel
		}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = MaxTokensLocal
		if withScore {
			cfg.MaxTokens = MaxTokensModel
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AIDetector{
		completer: completer,
		cfg:       cfg,
		schema:    llm.BuildClauseJSONSchema(withScore),
		logger:    logger,
	}
}

// Available reports whether a backend is configured.
func (d *AIDetector) Available() bool {
	return d != nil && d.completer != nil
}

// Detect runs one completion and parses the embedded JSON object. Every
// failure, including a panic in the backend, is reported as ErrUnavailable.
func (d *AIDetector) Detect(ctx context.Context, text string, lang constants.Language) (det Detection, err error) {
	if !d.Available() {
		return Detection{}, fmt.Errorf("%w: no backend configured", ErrUnavailable)
	}
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()
	withScore := d.cfg.Scoring == constants.ScoringModel

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("llm.detect.panic", "req_id", rid, "panic", fmt.Sprint(r))
			det, err = Detection{}, fmt.Errorf("%w: panic: %v", ErrUnavailable, r)
		}
	}()

	body, truncated := llm.Truncate(text, d.cfg.MaxPromptChars)
	d.logger.Info("llm.detect.start",
		"req_id", rid,
		"lang", lang,
		"scoring", d.cfg.Scoring,
		"text_len", len(text),
		"truncated", truncated,
	)

	content, err := d.completer.Complete(ctx, llm.CompletionRequest{
		System:      llm.BuildSystemPrompt(),
		User:        llm.BuildUserPrompt(body, lang, withScore),
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		d.logger.Warn("llm.detect.backend_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return Detection{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	obj, err := llm.ExtractJSONObject(content)
	if err != nil {
		d.logger.Warn("llm.detect.no_json", "req_id", rid, "content_len", len(content))
		return Detection{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if vErr := llm.ValidateJSONAgainstSchema(d.schema, obj); vErr != nil {
		d.logger.Warn("llm.detect.schema_mismatch", "req_id", rid, "error", vErr)
	}

	analysis, repairs, err := llm.SanitizeAnalysis(obj, withScore, lang)
	if err != nil {
		d.logger.Warn("llm.detect.decode_error", "req_id", rid, "error", err)
		return Detection{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(repairs) > 0 {
		d.logger.Warn("llm.detect.sanitize_applied", "req_id", rid, "repairs", repairs)
	}

	d.logger.Info("llm.detect.ok",
		"req_id", rid,
		"clauses", len(analysis.Clauses),
		"model_scored", withScore,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Detection{
		Clauses:  analysis.Clauses,
		Strategy: constants.StrategyAI,
		Score:    analysis.Score,
		Level:    analysis.Level,
		Summary:  analysis.Summary,
	}, nil
}
