package noop

import (
	"context"

	"llm-event-predictor/internal/logger"
)

// Predictor is an inert inference client used when no API key is
// configured. It returns no decodable object, so every event flows
// through the hold fallback.
type Predictor struct{}

// New returns a predictor that never calls out.
func New() *Predictor {
	return &Predictor{}
}

// Predict implements interfaces.Predictor without any network call.
func (p *Predictor) Predict(ctx context.Context, systemMsg, userMsg string) (string, error) {
	logger.Debug(ctx, "Noop predictor called - no inference performed")
	return "noop predictor: no model configured", nil
}
