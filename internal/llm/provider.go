// Package llm builds the chat model and embedder named by the configuration.
package llm

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/salesgpt/pkg/config"
)

const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

var (
	ErrNoProvider = errors.New("no enabled model provider (set OPENAI_API_KEY or enable one in the config)")
	ErrNoEmbedder = errors.New("catalog embeddings need an OpenAI compatible provider (set OPENAI_API_KEY)")
)

// NewModel returns the chat model of the default provider.
func NewModel(cfg *config.Config) (llms.Model, string, error) {
	name, p := cfg.GetDefaultProvider()
	if name == "" {
		return nil, "", ErrNoProvider
	}

	var (
		model llms.Model
		err   error
	)
	switch name {
	case "openai", "openrouter":
		model, err = newOpenAI(p)
	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithToken(p.APIKey),
			anthropic.WithModel(orDefault(p.Model, DefaultAnthropicModel)),
		}
		if p.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(p.BaseURL))
		}
		model, err = anthropic.New(opts...)
	default:
		return nil, name, fmt.Errorf("provider %s is not supported", name)
	}
	if err != nil {
		return nil, name, fmt.Errorf("creating %s model: %w", name, err)
	}
	return model, name, nil
}

// NewEmbedder returns an embedder over the OpenAI compatible provider, which
// is used for catalog embeddings whatever the chat provider is.
func NewEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	p, ok := cfg.Providers["openai"]
	if !ok || p.APIKey == "" {
		p, ok = cfg.Providers["openrouter"]
	}
	if !ok || p.APIKey == "" {
		return nil, ErrNoEmbedder
	}

	client, err := newOpenAI(p)
	if err != nil {
		return nil, fmt.Errorf("creating embedding client: %w", err)
	}
	return embeddings.NewEmbedder(client)
}

func newOpenAI(p config.ProviderConfig) (*openai.LLM, error) {
	opts := []openai.Option{
		openai.WithToken(p.APIKey),
		openai.WithModel(orDefault(p.Model, DefaultOpenAIModel)),
		openai.WithEmbeddingModel(orDefault(p.EmbeddingModel, DefaultEmbeddingModel)),
	}
	if p.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(p.BaseURL))
	}
	return openai.New(opts...)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
