// Package groq implements the inference client against Groq's
// OpenAI-compatible chat-completions API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"llm-event-predictor/internal/api"
	"llm-event-predictor/internal/ratelimit"
	"llm-event-predictor/internal/store"
	"llm-event-predictor/internal/trace"
)

const completionsURL = "https://api.groq.com/openai/v1/chat/completions"

// Client issues rate-limited chat completions. Every call goes through
// the shared sliding-window limiter before touching the network, so the
// free-tier request cap holds no matter how many goroutines feed it.
type Client struct {
	cfg     *store.Config
	apiKey  string
	limiter *ratelimit.SlidingWindow
	http    *api.Client
}

// New creates a client. The limiter is owned by the client for the
// lifetime of one pipeline run; it is not process-global.
func New(cfg *store.Config, apiKey string, limiter *ratelimit.SlidingWindow) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("inference API key missing: set " + cfg.LLM.APIKeyEnv + " in the environment or .env")
	}
	return &Client{
		cfg:     cfg,
		apiKey:  apiKey,
		limiter: limiter,
		http: api.NewClient(
			api.WithTimeout(60*time.Second),
			api.WithHeader("Authorization", "Bearer "+apiKey),
			api.WithLogging(true),
		),
	}, nil
}

// Predict blocks on the rate limiter, then issues exactly one completion
// call with deterministic decoding (temperature 0, bounded max tokens)
// and returns the raw text of the first choice.
func (c *Client) Predict(ctx context.Context, systemMsg, userMsg string) (string, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	ctx, span := trace.StartSpan(ctx, "groq-api-call")
	defer span.End()

	body := map[string]any{
		"model": c.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemMsg},
			{"role": "user", "content": userMsg},
		},
		"max_tokens":  c.cfg.LLM.MaxTokens,
		"temperature": c.cfg.LLM.Temperature,
	}

	resp, err := c.http.POST(ctx, completionsURL, body)
	if err != nil {
		return "", fmt.Errorf("groq call failed: %w", err)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("groq response contained no choices")
	}
	return r.Choices[0].Message.Content, nil
}
