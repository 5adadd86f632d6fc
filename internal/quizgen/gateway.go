package quizgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collabquest/internal/common/config"
	cqhttp "collabquest/internal/common/http"
)

// Gateway completes prompts through an internal GenAI HTTP service exposing
// POST /api/ai/generate.
type Gateway struct {
	client      *cqhttp.Client
	baseURL     string
	apiKey      string
	maxRetries  int
	maxTokens   int
	temperature float64
}

type gatewayRequest struct {
	Prompt      string                 `json:"prompt"`
	Context     map[string]interface{} `json:"context"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
}

type gatewayResponse struct {
	Text string `json:"text"`
}

func NewGateway(cfg config.GenAIConfig) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("genai base_url is required for the http provider")
	}
	return &Gateway{
		client:      cqhttp.NewClient(timeoutOf(cfg)),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxRetries:  cfg.MaxRetries,
		maxTokens:   maxTokensOf(cfg),
		temperature: cfg.Temperature,
	}, nil
}

func (g *Gateway) Name() string { return "http" }

func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	body := gatewayRequest{
		Prompt:      prompt,
		Context:     map[string]interface{}{"task": "quiz_generation", "system": systemInstruction},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
	headers := map[string]string{}
	if g.apiKey != "" {
		headers["Authorization"] = "Bearer " + g.apiKey
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		var resp gatewayResponse
		err := g.client.PostJSON(ctx, g.baseURL+"/api/ai/generate", headers, body, &resp)
		if err == nil {
			if strings.TrimSpace(resp.Text) == "" {
				return "", fmt.Errorf("%w: empty gateway response", ErrInvalidQuiz)
			}
			return resp.Text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		var statusErr *cqhttp.StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			break
		}
	}

	var statusErr *cqhttp.StatusError
	if errors.As(lastErr, &statusErr) && statusErr.StatusCode == 429 {
		return "", &ErrRateLimit{Provider: "http", Err: lastErr}
	}
	return "", &ErrProviderUnavailable{Provider: "http", Err: lastErr}
}
