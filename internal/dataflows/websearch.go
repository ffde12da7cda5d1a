package dataflows

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebSearchClient answers research prompts through an OpenAI-compatible
// /responses endpoint with the hosted web-search tool enabled.
type WebSearchClient struct {
	client   *resty.Client
	retry    RetryPolicy
	model    string
	provider string
}

func NewWebSearchClient(cfg *Config) *WebSearchClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(cfg.BackendURL, "/"))
	client.SetTimeout(120 * time.Second)
	if cfg.OpenAIAPIKey != "" {
		client.SetAuthToken(cfg.OpenAIAPIKey)
	}

	return &WebSearchClient{
		client:   client,
		retry:    PolicyFromConfig(cfg),
		model:    cfg.QuickThinkLLM,
		provider: strings.ToLower(cfg.LLMProvider),
	}
}

// Supported reports whether the configured provider exposes the hosted
// web-search tool.
func (wsc *WebSearchClient) Supported() bool {
	switch wsc.provider {
	case "openai", "ollama", "openrouter":
		return true
	}
	return false
}

func (wsc *WebSearchClient) Provider() string {
	return wsc.provider
}

type responsesRequest struct {
	Model           string            `json:"model"`
	Input           []responsesInput  `json:"input"`
	Text            map[string]any    `json:"text"`
	Tools           []map[string]any  `json:"tools"`
	Temperature     float64           `json:"temperature"`
	MaxOutputTokens int               `json:"max_output_tokens"`
	TopP            float64           `json:"top_p"`
	Store           bool              `json:"store"`
}

type responsesInput struct {
	Role    string             `json:"role"`
	Content []responsesContent `json:"content"`
}

type responsesContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responsesOutput struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Search runs one web-search prompt and returns the model's answer text.
func (wsc *WebSearchClient) Search(prompt string) (string, error) {
	request := responsesRequest{
		Model: wsc.model,
		Input: []responsesInput{{
			Role:    "system",
			Content: []responsesContent{{Type: "input_text", Text: prompt}},
		}},
		Text: map[string]any{"format": map[string]any{"type": "text"}},
		Tools: []map[string]any{{
			"type":                "web_search_preview",
			"user_location":       map[string]any{"type": "approximate"},
			"search_context_size": "low",
		}},
		Temperature:     1,
		MaxOutputTokens: 4096,
		TopP:            1,
		Store:           true,
	}

	var answer string
	err := WithRetry(wsc.retry, func() error {
		resp, err := wsc.client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(request).
			Post("/responses")
		if err != nil {
			return fmt.Errorf("web search request: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("web search API error %d: %s", resp.StatusCode(), resp.String())
		}

		var parsed responsesOutput
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return fmt.Errorf("parse web search response: %w", err)
		}

		// The first output item is the tool invocation; the answer text
		// follows it.
		for _, item := range parsed.Output {
			for _, content := range item.Content {
				if content.Text != "" {
					answer = content.Text
				}
			}
		}
		if answer == "" {
			return fmt.Errorf("web search response contained no text output")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}
