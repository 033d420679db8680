package agents

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/dyike/CortexHedge/config"
	"github.com/ollama/ollama/api"
)

// ModelSpec picks a provider and model. Empty fields fall back to the
// config; the configured model name only applies to the configured provider.
type ModelSpec struct {
	Provider string
	Name     string
}

func (s ModelSpec) resolve(cfg *config.Config) ModelSpec {
	if s.Provider == "" {
		s.Provider = cfg.LLMProvider
	}
	s.Provider = strings.ToLower(s.Provider)
	if s.Name == "" && s.Provider == strings.ToLower(cfg.LLMProvider) {
		s.Name = cfg.ModelName
	}
	return s
}

// NewChatModel builds a chat model for the requested provider.
func NewChatModel(ctx context.Context, cfg *config.Config, spec ModelSpec) (model.BaseChatModel, error) {
	spec = spec.resolve(cfg)
	maxTokens := cfg.MaxTokens

	switch spec.Provider {
	case config.ProviderDeepSeek:
		if cfg.DeepSeekAPIKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set")
		}
		name := spec.Name
		if name == "" {
			name = "deepseek-chat"
		}
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     name,
			MaxTokens: maxTokens,
		})
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		name := spec.Name
		if name == "" {
			name = "gpt-4o-mini"
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     name,
			MaxTokens: &maxTokens,
		})
	case config.ProviderOllama:
		client, err := NewOllamaClient(cfg.OllamaURL)
		if err != nil {
			return nil, err
		}
		return NewOllamaChatModel(client, spec.Name)
	default:
		return nil, fmt.Errorf("unsupported model provider %q", spec.Provider)
	}
}

// NewOllamaClient builds an API client for the given server URL.
func NewOllamaClient(rawURL string) (*api.Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q", rawURL)
	}
	return api.NewClient(u, http.DefaultClient), nil
}
