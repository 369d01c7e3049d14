package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/detect"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
	"github.com/joseph-ayodele/contract-risk/internal/risk"
)

// TextExtractor turns an upload into plain text. It must not fail.
type TextExtractor interface {
	ExtractText(ctx context.Context, filename string, data []byte) string
}

// Request is one uploaded document.
type Request struct {
	FileName string
	Data     []byte
	Language string // "en" or "hi"; anything else is treated as "en"
}

// Service runs the analysis pipeline:
// text acquisition -> detection -> scoring -> summary.
type Service struct {
	extractor TextExtractor
	ai        detect.Detector
	rules     detect.Detector
	mode      constants.AnalyzerMode
	logger    *slog.Logger
}

// NewService wires the pipeline. ai may be nil, which makes hybrid mode
// rules-only and ai_only mode always degraded.
func NewService(extractor TextExtractor, ai, rules detect.Detector, mode constants.AnalyzerMode, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if rules == nil {
		rules = detect.NewRuleDetector(nil, logger)
	}
	if mode == "" {
		mode = constants.ModeHybrid
	}
	return &Service{extractor: extractor, ai: ai, rules: rules, mode: mode, logger: logger}
}

// Mode reports the configured analyzer mode.
func (s *Service) Mode() constants.AnalyzerMode { return s.mode }

// Analyze always returns a well-formed result; every failure is folded into it.
func (s *Service) Analyze(ctx context.Context, req Request) entity.AnalysisResult {
	ctx, rid := common.EnsureRequestID(ctx)
	lang := constants.ParseLanguage(req.Language)
	start := time.Now()

	text := s.extractor.ExtractText(ctx, req.FileName, req.Data)
	s.logger.Info("analyze.text_acquired",
		"req_id", rid,
		"file_name", req.FileName,
		"bytes", len(req.Data),
		"chars", len(text),
		"lang", lang,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return s.AnalyzeText(ctx, req.FileName, text, lang)
}

// AnalyzeText runs detection and scoring on text that was already acquired.
func (s *Service) AnalyzeText(ctx context.Context, fileName, text string, lang constants.Language) entity.AnalysisResult {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		s.logger.Info("analyze.no_text", "req_id", rid, "file_name", fileName)
		return NoTextResult(fileName, lang)
	}

	det, err := s.detect(ctx, text, lang)
	if err != nil {
		s.logger.Warn("analyze.degraded",
			"req_id", rid,
			"mode", s.mode,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return DegradedResult(fileName, lang)
	}

	res := entity.AnalysisResult{
		FileName: fileName,
		Clauses:  det.Clauses,
	}
	if res.Clauses == nil {
		res.Clauses = []entity.Clause{}
	}
	if det.Scored() {
		res.RiskScore = risk.ClampScore(*det.Score)
		res.RiskLevel = *det.Level
		res.Summary = *det.Summary
	} else {
		res.RiskScore = risk.Score(res.Clauses)
		res.RiskLevel = risk.Level(res.RiskScore)
		high, medium := risk.CountBySeverity(res.Clauses)
		res.Summary = risk.Summarize(res.RiskLevel, high, medium, lang)
	}

	s.logger.Info("analyze.done",
		"req_id", rid,
		"file_name", fileName,
		"strategy", det.Strategy,
		"model_scored", det.Scored(),
		"clauses", len(res.Clauses),
		"risk_score", res.RiskScore,
		"risk_level", res.RiskLevel,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// detect runs exactly one strategy to completion. In hybrid mode an AI
// failure falls back to the rules; in ai_only mode it is returned.
func (s *Service) detect(ctx context.Context, text string, lang constants.Language) (detect.Detection, error) {
	rid := common.RequestIDFromContext(ctx)

	if s.ai != nil {
		start := time.Now()
		det, err := s.ai.Detect(ctx, text, lang)
		if err == nil {
			return det, nil
		}
		if !errors.Is(err, detect.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", detect.ErrUnavailable, err)
		}
		if s.mode == constants.ModeAIOnly {
			return detect.Detection{}, err
		}
		s.logger.Info("analyze.fallback_rules",
			"req_id", rid,
			"reason", err.Error(),
			"ai_elapsed_ms", time.Since(start).Milliseconds(),
		)
	} else if s.mode == constants.ModeAIOnly {
		return detect.Detection{}, fmt.Errorf("%w: no backend configured", detect.ErrUnavailable)
	}

	det, err := s.rules.Detect(ctx, text, lang)
	if err != nil {
		s.logger.Error("analyze.rules_failed", "req_id", rid, "error", err)
		return detect.Detection{Clauses: []entity.Clause{}, Strategy: constants.StrategyRules}, nil
	}
	return det, nil
}

// NoTextResult is the terminal result for documents with no readable text.
func NoTextResult(fileName string, lang constants.Language) entity.AnalysisResult {
	return entity.AnalysisResult{
		FileName:  fileName,
		RiskScore: 0,
		RiskLevel: constants.RiskUnknown,
		Summary:   risk.NoTextMessage(lang),
		Clauses:   []entity.Clause{},
	}
}

// DegradedResult is returned in ai_only mode when the backend could not be used.
func DegradedResult(fileName string, lang constants.Language) entity.AnalysisResult {
	return entity.AnalysisResult{
		FileName:  fileName,
		RiskScore: 0,
		RiskLevel: constants.RiskLow,
		Summary:   risk.DegradedMessage(lang),
		Clauses:   []entity.Clause{},
	}
}
