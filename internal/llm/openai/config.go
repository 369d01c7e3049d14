package openai

import (
	"log/slog"
	"net/http"
	"time"
)

// Defaults point at Groq's OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
	OpenAIBaseURL  = "https://api.openai.com/v1"
	OpenAIModel    = "gpt-4o-mini"
)

// Config for an OpenAI-compatible chat/completions backend.
type Config struct {
	APIKey      string
	BaseURL     string        // default DefaultBaseURL
	Model       string        // default DefaultModel
	Temperature float32       // used when a request leaves it at 0
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Model reports the configured model name.
func (c *Client) Model() string { return c.cfg.Model }
