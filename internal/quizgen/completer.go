// Package quizgen produces multiple-choice quizzes for a skill using an LLM.
package quizgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"collabquest/internal/common/config"
)

// Completer sends a single prompt to a text model and returns its raw answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

const systemInstruction = "You write technical multiple-choice quizzes. Reply with JSON only."

// NewCompleter builds the provider selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.GenAIConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return NewGemini(ctx, cfg)
	case "openai":
		return NewOpenAI(cfg)
	case "anthropic":
		return NewAnthropic(cfg)
	case "http":
		return NewGateway(cfg)
	default:
		return nil, fmt.Errorf("unsupported genai provider %q", cfg.Provider)
	}
}

func timeoutOf(cfg config.GenAIConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 60 * time.Second
	}
	return config.GetDuration(cfg.Timeout)
}

func maxTokensOf(cfg config.GenAIConfig) int {
	if cfg.MaxTokens <= 0 {
		return 4096
	}
	return cfg.MaxTokens
}
