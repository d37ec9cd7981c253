package langchain

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider identifies a model provider backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
)

// ModelConfig contains the configuration for a specific model.
type ModelConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Model       string  `json:"model,omitempty"`
}

// ConnectorOptions contains options for creating a model connection.
type ConnectorOptions struct {
	Provider    Provider    `json:"provider"`
	APIKey      string      `json:"api_key"`
	BaseURL     string      `json:"base_url,omitempty"`
	ModelConfig ModelConfig `json:"model_config,omitempty"`
}

// DefaultModelFor returns the default model name for a provider.
func DefaultModelFor(provider Provider) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.0-flash"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderOllama:
		return "llama3"
	default:
		return ""
	}
}

// NewModel creates a langchaingo model for the configured provider.
func NewModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	if options.ModelConfig.Model == "" {
		options.ModelConfig.Model = DefaultModelFor(options.Provider)
	}

	log.Debug().
		Str("provider", string(options.Provider)).
		Str("model", options.ModelConfig.Model).
		Float64("temperature", options.ModelConfig.Temperature).
		Msg("Creating model connection")

	var model llms.Model
	var err error

	switch options.Provider {
	case ProviderGemini:
		model, err = createGeminiModel(ctx, options)
	case ProviderOpenAI:
		model, err = createOpenAIModel(options)
	case ProviderOllama:
		model, err = createOllamaModel(options)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", options.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", options.Provider, err)
	}
	return model, nil
}

func createGeminiModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	opts := []googleai.Option{
		googleai.WithAPIKey(options.APIKey),
		googleai.WithDefaultModel(options.ModelConfig.Model),
	}
	if options.ModelConfig.MaxTokens > 0 {
		opts = append(opts, googleai.WithDefaultMaxTokens(options.ModelConfig.MaxTokens))
	}
	return googleai.New(ctx, opts...)
}

func createOpenAIModel(options ConnectorOptions) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithToken(options.APIKey),
		openai.WithModel(options.ModelConfig.Model),
	}
	if options.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(options.BaseURL))
	}
	return openai.New(opts...)
}

func createOllamaModel(options ConnectorOptions) (llms.Model, error) {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(options.ModelConfig.Model),
	)
}
