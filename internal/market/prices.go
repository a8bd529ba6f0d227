// Package market provides the two external numeric sources the pipeline
// enriches from: trailing price history and a forward-earnings estimate.
// Both go through Yahoo Finance, with a screener.in HTML fallback for EPS
// on symbols Yahoo does not cover well.
package market

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"llm-event-predictor/internal/types"
)

// PriceSource fetches daily close/volume history from Yahoo Finance.
type PriceSource struct {
	suffix   string
	lookback time.Duration
}

// NewPriceSource creates a source appending suffix (e.g. ".NS") to every
// symbol. Lookback defaults to 180 days.
func NewPriceSource(suffix string) *PriceSource {
	return &PriceSource{
		suffix:   suffix,
		lookback: 180 * 24 * time.Hour,
	}
}

// History returns the time-ordered daily samples for symbol. An empty
// series is an error so the retry layer treats it as transient.
func (p *PriceSource) History(ctx context.Context, symbol string) ([]types.Sample, error) {
	end := time.Now()
	start := end.Add(-p.lookback)

	params := &chart.Params{
		Symbol:   symbol + p.suffix,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	samples := make([]types.Sample, 0, 128)
	for iter.Next() {
		bar := iter.Bar()
		close, _ := bar.Close.Float64()
		samples = append(samples, types.Sample{
			Ts:    int64(bar.Timestamp),
			Close: close,
			Vol:   float64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("chart fetch for %s%s: %w", symbol, p.suffix, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no price data for %s%s", symbol, p.suffix)
	}
	return samples, nil
}

// Features derives PriceFeatures from a time-ordered sample series.
// Features whose lookback exceeds the available history stay nil.
func Features(samples []types.Sample) types.PriceFeatures {
	var f types.PriceFeatures
	n := len(samples)
	if n == 0 {
		return f
	}

	last := samples[n-1].Close
	f.LastPrice = types.Float(last)

	// pct over k trading days: last against the close k samples back.
	pct := func(k int) *float64 {
		if n <= k {
			return nil
		}
		base := samples[n-1-k].Close
		if base == 0 {
			return nil
		}
		return types.Float(last/base - 1)
	}
	f.Pct7 = pct(6)
	f.Pct30 = pct(22)

	if n >= 20 {
		sum := 0.0
		for _, s := range samples[n-20:] {
			sum += s.Close
		}
		f.SMA20 = types.Float(sum / 20)
	}

	if n >= 30 {
		f.Vol30 = types.Float(stddev(samples[n-30:]))
	}
	return f
}

// stddev is the sample standard deviation of the volumes.
func stddev(samples []types.Sample) float64 {
	n := float64(len(samples))
	mean := 0.0
	for _, s := range samples {
		mean += s.Vol
	}
	mean /= n

	ss := 0.0
	for _, s := range samples {
		d := s.Vol - mean
		ss += d * d
	}
	return math.Sqrt(ss / (n - 1))
}
