package quizgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"collabquest/internal/common/config"

	"google.golang.org/genai"
)

// Gemini completes prompts with the Google Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewGemini(ctx context.Context, cfg config.GenAIConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       cfg.Model,
		maxTokens:   maxTokensOf(cfg),
		temperature: cfg.Temperature,
	}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxTokens),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}
	if g.temperature > 0 {
		temp := float32(g.temperature)
		genCfg.Temperature = &temp
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
	if err != nil {
		return "", mapGeminiError(err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty gemini response", ErrInvalidQuiz)
	}
	return text, nil
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &ErrRateLimit{Provider: "gemini", Err: err}
	}
	return &ErrProviderUnavailable{Provider: "gemini", Err: err}
}
