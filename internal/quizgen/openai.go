package quizgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"collabquest/internal/common/config"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI completes prompts with the chat completions API. BaseURL allows any
// OpenAI-compatible endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAI(cfg config.GenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   maxTokensOf(cfg),
		temperature: cfg.Temperature,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: o.maxTokens,
		Temperature:         float32(o.temperature),
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty openai response", ErrInvalidQuiz)
	}
	return resp.Choices[0].Message.Content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &ErrRateLimit{Provider: "openai", Err: err}
	}
	return &ErrProviderUnavailable{Provider: "openai", Err: err}
}
