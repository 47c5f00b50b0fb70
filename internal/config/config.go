package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingAPIKey   = errors.New("API key is required for the selected LLM provider")
	ErrInvalidProvider = errors.New("invalid LLM provider")
)

type Config struct {
	Database  DatabaseConfig
	LLM       LLMConfig
	Log       LogConfig
	Grading   GradingConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Budget    BudgetConfig
	Output    OutputConfig
}

type DatabaseConfig struct {
	URL string // optional, persistence is skipped when empty
}

type LLMConfig struct {
	Provider  string
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
}

type AnthropicConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxTokens  int
	Timeout    time.Duration
	MaxRetries int
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type LogConfig struct {
	Level string
}

type GradingConfig struct {
	RubricPath     string // empty means the built-in default rubric
	MaxConcurrency int
	Timeout        time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type BudgetConfig struct {
	LimitUSD      float64
	WarnThreshold float64
}

type OutputConfig struct {
	Dir     string
	Formats []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LLM: LLMConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "anthropic"),
			Anthropic: AnthropicConfig{
				APIKey:     os.Getenv("ANTHROPIC_API_KEY"),
				Model:      getEnvOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
				BaseURL:    getEnvOrDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				MaxTokens:  getEnvIntOrDefault("ANTHROPIC_MAX_TOKENS", 4096),
				Timeout:    time.Duration(getEnvIntOrDefault("ANTHROPIC_TIMEOUT_SEC", 120)) * time.Second,
				MaxRetries: getEnvIntOrDefault("ANTHROPIC_MAX_RETRIES", 3),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
				Timeout: time.Duration(getEnvIntOrDefault("OPENAI_TIMEOUT_SEC", 120)) * time.Second,
			},
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Grading: GradingConfig{
			RubricPath:     os.Getenv("RUBRIC_PATH"),
			MaxConcurrency: getEnvIntOrDefault("MAX_CONCURRENCY", 4),
			Timeout:        time.Duration(getEnvIntOrDefault("GRADING_TIMEOUT_SEC", 600)) * time.Second,
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
		},
		Budget: BudgetConfig{
			LimitUSD:      getEnvFloatOrDefault("BUDGET_LIMIT_USD", 0),
			WarnThreshold: getEnvFloatOrDefault("BUDGET_WARN_THRESHOLD", 0.8),
		},
		Output: OutputConfig{
			Dir:     getEnvOrDefault("OUTPUT_DIR", "outputs"),
			Formats: []string{"markdown", "json"},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.Anthropic.APIKey == "" {
			return ErrMissingAPIKey
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return ErrMissingAPIKey
		}
	case "mock":
	default:
		return ErrInvalidProvider
	}

	if c.Grading.MaxConcurrency <= 0 {
		c.Grading.MaxConcurrency = 4
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
