package interfaces

import (
	"context"

	"llm-event-predictor/internal/types"
)

// PriceHistorySource returns a time-ordered series of close/volume
// samples for a symbol. May return an error on empty or failed fetches.
type PriceHistorySource interface {
	History(ctx context.Context, symbol string) ([]types.Sample, error)
}

// FundamentalSource returns a single forward-earnings estimate for a
// symbol, or an error when unavailable.
type FundamentalSource interface {
	ForwardEPS(ctx context.Context, symbol string) (float64, error)
}
