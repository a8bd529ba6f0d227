package interfaces

import "context"

// Predictor issues one inference call against a hosted model and returns
// the raw text response. Implementations own their rate limiting.
type Predictor interface {
	Predict(ctx context.Context, systemMsg, userMsg string) (string, error)
}
