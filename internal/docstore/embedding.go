package docstore

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/kayz/sourcerouter/internal/config"
)

const (
	embeddingDefaultModel = "text-embedding-3-small"
)

// EmbeddingProvider turns text into vectors for the document store.
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// OpenAIEmbeddingProvider embeds via the OpenAI API or any compatible
// endpoint reachable through base_url.
type OpenAIEmbeddingProvider struct {
	client *openai.Client
	model  string
}

func NewEmbeddingProvider(cfg config.EmbeddingConfig) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIEmbeddingProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func NewOpenAIEmbeddingProvider(cfg config.EmbeddingConfig) (*OpenAIEmbeddingProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for embeddings")
	}

	model := cfg.Model
	if model == "" {
		model = embeddingDefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbeddingProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

func (p *OpenAIEmbeddingProvider) Name() string {
	return "openai"
}

func (p *OpenAIEmbeddingProvider) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API error: %w", err)
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}
