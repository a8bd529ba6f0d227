package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"llm-event-predictor/internal/interfaces"
	"llm-event-predictor/internal/llm/groq"
	"llm-event-predictor/internal/llm/noop"
	"llm-event-predictor/internal/logger"
	"llm-event-predictor/internal/ratelimit"
	"llm-event-predictor/internal/store"
	"llm-event-predictor/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem loads .env and sets up the logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig reads config.yaml, falling back to defaults when the file is
// absent (the original workflow ran without one).
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info(ctx, "No config.yaml found, using defaults")
			return store.DefaultConfig(), nil
		}
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializePredictor builds the inference client. A missing API key with
// provider GROQ is fatal before any event is processed.
func initializePredictor(ctx context.Context, cfg *store.Config, limiter *ratelimit.SlidingWindow) (interfaces.Predictor, error) {
	if cfg.LLM.Provider == "NOOP" {
		logger.Warn(ctx, "Using NOOP predictor - every event gets the hold fallback")
		return noop.New(), nil
	}

	client, err := groq.New(cfg, cfg.APIKey(), limiter)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Using Groq inference", "model", cfg.LLM.Model,
		"rate_limit", cfg.RateLimit.MaxRequests, "window_seconds", cfg.RateLimit.WindowSeconds)
	return client, nil
}
