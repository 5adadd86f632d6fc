package quizgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"collabquest/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizAnswer = `[{"id":"q1","question":"Q","options":["a","b"],"correct_answer":"a"}]`

func TestNewCompleter(t *testing.T) {
	ctx := context.Background()

	c, err := NewCompleter(ctx, config.GenAIConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())

	c, err = NewCompleter(ctx, config.GenAIConfig{Provider: "Anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", c.Name())

	c, err = NewCompleter(ctx, config.GenAIConfig{Provider: "http", BaseURL: "http://genai"})
	require.NoError(t, err)
	assert.Equal(t, "http", c.Name())

	_, err = NewCompleter(ctx, config.GenAIConfig{Provider: "gemini"})
	assert.Error(t, err)

	_, err = NewCompleter(ctx, config.GenAIConfig{Provider: "http"})
	assert.Error(t, err)

	_, err = NewCompleter(ctx, config.GenAIConfig{Provider: "cohere", APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAI_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": quizAnswer},
				"finish_reason": "stop",
			}},
		})
	}))
	defer srv.Close()

	c, err := NewOpenAI(config.GenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "quiz please")
	require.NoError(t, err)
	assert.Equal(t, quizAnswer, text)
}

func TestOpenAI_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI(config.GenAIConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "quiz")
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestAnthropic_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-3-5-haiku-latest",
			"content":     []map[string]string{{"type": "text", "text": quizAnswer}},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer srv.Close()

	c, err := NewAnthropic(config.GenAIConfig{APIKey: "test-key", Model: "claude-3-5-haiku-latest", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "quiz please")
	require.NoError(t, err)
	assert.Equal(t, quizAnswer, text)
}

func TestAnthropic_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	c, err := NewAnthropic(config.GenAIConfig{APIKey: "k", Model: "claude-3-5-haiku-latest", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "quiz")
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestGemini_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": quizAnswer}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	c, err := NewGemini(context.Background(), config.GenAIConfig{APIKey: "k", Model: "gemini-2.5-flash", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), "quiz please")
	require.NoError(t, err)
	assert.Equal(t, quizAnswer, text)
}

func TestGateway_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req gatewayRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "quiz please", req.Prompt)
		assert.Equal(t, 4096, req.MaxTokens)
		_ = json.NewEncoder(w).Encode(map[string]string{"text": quizAnswer})
	}))
	defer srv.Close()

	g, err := NewGateway(config.GenAIConfig{BaseURL: srv.URL + "/", MaxRetries: 2})
	require.NoError(t, err)

	text, err := g.Complete(context.Background(), "quiz please")
	require.NoError(t, err)
	assert.Equal(t, quizAnswer, text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGateway_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	g, err := NewGateway(config.GenAIConfig{BaseURL: srv.URL, MaxRetries: 3})
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "quiz")
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGateway_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g, err := NewGateway(config.GenAIConfig{BaseURL: srv.URL, MaxRetries: 1})
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "quiz")
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestGateway_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": "  "}`))
	}))
	defer srv.Close()

	g, err := NewGateway(config.GenAIConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "quiz")
	assert.ErrorIs(t, err, ErrInvalidQuiz)
}
