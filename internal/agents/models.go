package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/lilong555/tradingagent/config"
)

const defaultMaxTokens = 8192

// Models holds the two chat models the pipeline runs on: a fast model for
// analyst tool loops and debate turns, and a stronger one for the two
// judges. Both are plain model.ToolCallingChatModel values, so no call site
// ever branches on the concrete provider.
type Models struct {
	Quick model.ToolCallingChatModel
	Deep  model.ToolCallingChatModel
}

// NewModels builds both models for the configured provider. An unsupported
// provider is a configuration error and aborts the run.
func NewModels(ctx context.Context, cfg *config.Config) (*Models, error) {
	quick, err := newChatModel(ctx, cfg, cfg.QuickThinkLLM)
	if err != nil {
		return nil, fmt.Errorf("create quick-think model %q: %w", cfg.QuickThinkLLM, err)
	}
	deep, err := newChatModel(ctx, cfg, cfg.DeepThinkLLM)
	if err != nil {
		return nil, fmt.Errorf("create deep-think model %q: %w", cfg.DeepThinkLLM, err)
	}
	return &Models{Quick: quick, Deep: deep}, nil
}

func newChatModel(ctx context.Context, cfg *config.Config, modelName string) (model.ToolCallingChatModel, error) {
	maxTokens := defaultMaxTokens
	switch cfg.LLMProvider {
	case "openai", "openrouter", "ollama":
		// All three speak the OpenAI chat protocol; only the base URL and
		// key differ.
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     modelName,
			MaxTokens: &maxTokens,
		})
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     modelName,
			MaxTokens: maxTokens,
		})
	default:
		return nil, fmt.Errorf("unsupported llm_provider %q", cfg.LLMProvider)
	}
}
