package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/inference"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultProvider    = "gemini"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultTemperature = 0.2
	DefaultRateLimit   = 60
	DefaultTimeout     = 5 * time.Minute
)

// SetDefaults registers the llm.* and logging.* defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", DefaultProvider)
	v.SetDefault("llm.temperature", DefaultTemperature)
	v.SetDefault("llm.rate_limit", DefaultRateLimit)
	v.SetDefault("llm.timeout", DefaultTimeout)
	v.SetDefault("llm.max_retries", inference.DefaultMaxRetries)
	v.SetDefault("llm.retry_delay", inference.DefaultRetryDelay)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

// LoadLLMConfig loads inference configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or DEALFLOW_ env vars)
// 2. Provider-specific environment variables (GEMINI_API_KEY, OPENAI_API_KEY)
// 3. Default values
func LoadLLMConfig(v *viper.Viper) (inference.Config, error) {
	cfg := inference.Config{
		Provider:    strings.ToLower(v.GetString("llm.provider")),
		Model:       v.GetString("llm.model"),
		BaseURL:     v.GetString("llm.base_url"),
		Temperature: v.GetFloat64("llm.temperature"),
		MaxTokens:   v.GetInt("llm.max_tokens"),
		RateLimit:   v.GetInt("llm.rate_limit"),
		Timeout:     v.GetDuration("llm.timeout"),
		MaxRetries:  v.GetInt("llm.max_retries"),
		RetryDelay:  v.GetDuration("llm.retry_delay"),
	}

	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}

	switch cfg.Provider {
	case "gemini":
		cfg.APIKey = firstNonEmpty(v.GetString("llm.gemini_api_key"), os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY"))
		if cfg.Model == "" {
			cfg.Model = DefaultGeminiModel
		}
	case "openai":
		cfg.APIKey = firstNonEmpty(v.GetString("llm.openai_api_key"), os.Getenv("OPENAI_API_KEY"))
		if cfg.Model == "" {
			cfg.Model = DefaultOpenAIModel
		}
	default:
		return inference.Config{}, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	if cfg.APIKey == "" {
		return inference.Config{}, fmt.Errorf("%w: no API key for provider %s (set llm.%s_api_key or %s_API_KEY)",
			common.ErrMissingConfig, cfg.Provider, cfg.Provider, strings.ToUpper(cfg.Provider))
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return inference.Config{}, fmt.Errorf("%w: temperature %.2f out of range", common.ErrInvalidConfig, cfg.Temperature)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
