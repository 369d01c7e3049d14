package analyzer

import (
	"log/slog"

	"github.com/joseph-ayodele/contract-risk/internal/common"
	"github.com/joseph-ayodele/contract-risk/internal/detect"
	"github.com/joseph-ayodele/contract-risk/internal/llm"
	"github.com/joseph-ayodele/contract-risk/internal/llm/gemini"
	"github.com/joseph-ayodele/contract-risk/internal/llm/openai"
	"github.com/joseph-ayodele/contract-risk/internal/ocr"
)

// NewFromConfig builds the production service: OCR extractor, rule table,
// the configured LLM backend (if a key is present) and the orchestrator.
func NewFromConfig(cfg *common.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	extractor := ocr.NewExtractor(ocr.Config{
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	rules, err := detect.LoadRuleSet(cfg.Analyzer.RulesFile)
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "load rules", err)
	}

	completer := NewCompleter(cfg.LLM, logger)
	ai := detect.NewAIDetector(completer, detect.AIConfig{
		Scoring:        cfg.LLM.Scoring,
		MaxPromptChars: cfg.LLM.MaxPromptChars,
		Temperature:    cfg.LLM.Temperature,
	}, logger)

	svc := NewService(extractor, ai, detect.NewRuleDetector(rules, logger), cfg.Analyzer.Mode, logger)
	logger.Info("analyzer.configured",
		"mode", svc.Mode(),
		"provider", cfg.LLM.Provider,
		"model", CompleterModel(completer),
		"ai_available", ai.Available(),
		"scoring", cfg.LLM.Scoring,
		"rules", len(rules.Rules),
	)
	return svc, nil
}

// CompleterModel names the model behind c, or "" when there is no backend.
func CompleterModel(c llm.Completer) string {
	if m, ok := c.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

// NewCompleter returns the backend for cfg.Provider, or nil when no API key
// is configured so the AI strategy reports itself unavailable.
func NewCompleter(cfg common.LLMConfig, logger *slog.Logger) llm.Completer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil
	}
	switch cfg.Provider {
	case common.ProviderGemini:
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case common.ProviderOpenAI:
		oc := openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}
		if oc.BaseURL == "" {
			oc.BaseURL = openai.OpenAIBaseURL
		}
		if oc.Model == "" {
			oc.Model = openai.OpenAIModel
		}
		return openai.NewClient(oc, logger)
	case common.ProviderGroq, "":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		logger.Warn("analyzer.unknown_provider", "provider", cfg.Provider)
		return nil
	}
}
