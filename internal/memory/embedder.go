package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lilong555/tradingagent/config"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. Ollama
// serves the same shape, so the one client covers both.
type OpenAIEmbedder struct {
	client *resty.Client
	model  string
}

func NewOpenAIEmbedder(cfg *config.Config) *OpenAIEmbedder {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.ResolveEmbeddingBaseURL(), "/")).
		SetTimeout(60 * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.OpenAIAPIKey != "" {
		client.SetAuthToken(cfg.OpenAIAPIKey)
	}
	return &OpenAIEmbedder{client: client, model: cfg.ResolveEmbeddingModel()}
}

// Model reports the embedding model in use.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: e.model, Input: text}).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("embeddings request failed with status %d: %s",
			resp.StatusCode(), resp.String())
	}

	var out embeddingResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("embeddings response contained no vectors")
	}
	return out.Data[0].Embedding, nil
}
