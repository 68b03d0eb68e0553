package config

import (
	"fmt"
	"time"
)

type AIProvider string

const (
	ProviderNone   AIProvider = "none"
	ProviderGemini AIProvider = "gemini"
	ProviderOllama AIProvider = "ollama"
)

type AIConfig struct {
	Provider             AIProvider    `mapstructure:"provider"`
	APIKey               string        `mapstructure:"api_key"`
	Model                string        `mapstructure:"model"`
	OllamaURL            string        `mapstructure:"ollama_url"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRequestsPerMinute float32       `mapstructure:"max_requests_per_minute"`
	MaxRequestsPerDay    float32       `mapstructure:"max_requests_per_day"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
}

func (config AIConfig) validate() error {
	switch config.Provider {
	case ProviderNone:
		return nil
	case ProviderGemini:
		if config.APIKey == "" {
			return fmt.Errorf("missing variable: api_key")
		}
	case ProviderOllama:
		if config.OllamaURL == "" {
			return fmt.Errorf("missing variable: ollama_url")
		}
	default:
		return fmt.Errorf("unsupported provider %q", config.Provider)
	}
	if config.Model == "" {
		return fmt.Errorf("missing variable: model")
	}
	return nil
}

func (config AIConfig) bindEnvironmentVariables() error {
	return bindAll(
		[2]string{"ai.provider", "AI_PROVIDER"},
		[2]string{"ai.api_key", "AI_KEY"},
		[2]string{"ai.model", "AI_MODEL"},
		[2]string{"ai.ollama_url", "OLLAMA_URL"},
		[2]string{"ai.max_requests_per_minute", "AI_MAX_REQUESTS_PER_MINUTE"},
		[2]string{"ai.max_requests_per_day", "AI_MAX_REQUESTS_PER_DAY"},
	)
}
