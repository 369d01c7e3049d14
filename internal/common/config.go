package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/contract-risk/constants"
)

// LLM providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Analyzer AnalyzerConfig
	Log      LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr     string
	GRPCAddr     string
	StaticDir    string
	MaxUploadMB  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	Temperature    float32
	Timeout        time.Duration
	Scoring        constants.ScoringSource
	MaxPromptChars int
}

// AnalyzerConfig holds orchestration behavior.
type AnalyzerConfig struct {
	Mode      constants.AnalyzerMode
	RulesFile string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// Prompt truncation limits per scoring source.
const (
	DefaultPromptCharsLocal = 15000
	DefaultPromptCharsModel = 20000
)

// LoadConfig loads configuration from a .env file (if any), an optional YAML
// file named by CONFIG_FILE, and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "read config file "+path, err)
		}
	}

	provider := strings.ToLower(v.GetString("llm_provider"))
	scoring := constants.ScoringSource(strings.ToLower(v.GetString("llm_scoring")))

	cfg := &Config{
		Server: ServerConfig{
			HTTPAddr:     v.GetString("http_addr"),
			GRPCAddr:     v.GetString("grpc_addr"),
			StaticDir:    v.GetString("static_dir"),
			MaxUploadMB:  v.GetInt("max_upload_mb"),
			ReadTimeout:  v.GetDuration("http_read_timeout"),
			WriteTimeout: v.GetDuration("http_write_timeout"),
		},
		OCR: OCRConfig{
			TesseractLang: v.GetString("tesseract_lang"),
			TessdataDir:   v.GetString("tessdata_prefix"),
			DPI:           v.GetInt("ocr_dpi"),
			MaxPages:      v.GetInt("ocr_max_pages"),
		},
		LLM: LLMConfig{
			Provider:       provider,
			Model:          v.GetString("llm_model"),
			APIKey:         resolveAPIKey(v, provider),
			BaseURL:        v.GetString("llm_base_url"),
			Temperature:    float32(v.GetFloat64("llm_temperature")),
			Timeout:        v.GetDuration("llm_timeout"),
			Scoring:        scoring,
			MaxPromptChars: v.GetInt("llm_max_prompt_chars"),
		},
		Analyzer: AnalyzerConfig{
			Mode:      constants.AnalyzerMode(strings.ToLower(v.GetString("analyzer_mode"))),
			RulesFile: v.GetString("rules_file"),
		},
		Log: LogConfig{
			Level: v.GetString("log_level"),
		},
	}
	if cfg.LLM.MaxPromptChars <= 0 {
		cfg.LLM.MaxPromptChars = DefaultPromptCharsLocal
		if cfg.LLM.Scoring == constants.ScoringModel {
			cfg.LLM.MaxPromptChars = DefaultPromptCharsModel
		}
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8003")
	v.SetDefault("grpc_addr", ":9003")
	v.SetDefault("static_dir", "")
	v.SetDefault("max_upload_mb", 20)
	v.SetDefault("http_read_timeout", 60*time.Second)
	// 0 = no write deadline; OCR of a long scan has no fixed upper bound
	v.SetDefault("http_write_timeout", 0)

	v.SetDefault("tesseract_lang", "eng")
	v.SetDefault("tessdata_prefix", "")
	v.SetDefault("ocr_dpi", 300)
	v.SetDefault("ocr_max_pages", 0)

	v.SetDefault("llm_provider", ProviderGroq)
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("groq_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_temperature", 0.1)
	v.SetDefault("llm_timeout", 45*time.Second)
	v.SetDefault("llm_scoring", string(constants.ScoringLocal))
	v.SetDefault("llm_max_prompt_chars", 0)

	v.SetDefault("analyzer_mode", string(constants.ModeHybrid))
	v.SetDefault("rules_file", "")

	v.SetDefault("log_level", "info")
}

// resolveAPIKey prefers the generic LLM_API_KEY, then the provider's own variable.
func resolveAPIKey(v *viper.Viper, provider string) string {
	if k := strings.TrimSpace(v.GetString("llm_api_key")); k != "" {
		return k
	}
	switch provider {
	case ProviderOpenAI:
		return strings.TrimSpace(v.GetString("openai_api_key"))
	case ProviderGemini:
		return strings.TrimSpace(v.GetString("gemini_api_key"))
	default:
		return strings.TrimSpace(v.GetString("groq_api_key"))
	}
}

// HasLLMCredential reports whether a backend key is configured.
func (c *Config) HasLLMCredential() bool {
	return c.LLM.APIKey != ""
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("MAX_UPLOAD_MB", c.Server.MaxUploadMB, Positive).
		Field("OCR_DPI", c.OCR.DPI, Positive).
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf(ProviderGroq, ProviderOpenAI, ProviderGemini)).
		Field("LLM_SCORING", string(c.LLM.Scoring), OneOf(string(constants.ScoringLocal), string(constants.ScoringModel))).
		Field("ANALYZER_MODE", string(c.Analyzer.Mode), OneOf(string(constants.ModeHybrid), string(constants.ModeAIOnly)))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	if c.Analyzer.Mode == constants.ModeAIOnly && !c.HasLLMCredential() {
		return NewAppError("CONFIG_ERROR",
			fmt.Sprintf("an API key for provider %q is required when ANALYZER_MODE=%s", c.LLM.Provider, constants.ModeAIOnly),
			ErrNotConfigured)
	}
	return nil
}
