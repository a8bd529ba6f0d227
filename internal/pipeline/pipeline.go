// Package pipeline drives every event through enrichment and inference.
// Each event moves PENDING -> FEATURES_FETCHED -> ENRICHED -> PROMPT_BUILT
// -> INFERRED -> PARSED; every stage degrades to a safe default, so PARSED
// is the only terminal state and no single event can abort the batch.
package pipeline

import (
	"context"
	"sync"
	"time"

	"llm-event-predictor/internal/enrich"
	"llm-event-predictor/internal/fetch"
	"llm-event-predictor/internal/interfaces"
	"llm-event-predictor/internal/logger"
	"llm-event-predictor/internal/market"
	"llm-event-predictor/internal/predict"
	"llm-event-predictor/internal/sentiment"
	"llm-event-predictor/internal/store"
	"llm-event-predictor/internal/types"
)

type stage string

const (
	stageFeaturesFetched stage = "FEATURES_FETCHED"
	stageEnriched        stage = "ENRICHED"
	stagePromptBuilt     stage = "PROMPT_BUILT"
	stageInferred        stage = "INFERRED"
	stageParsed          stage = "PARSED"
)

// Pipeline enriches events and requests one prediction per event. The two
// fetchers carry independent retry policies and per-run caches; the
// predictor owns the shared rate limiter.
type Pipeline struct {
	cfg       *store.Config
	prices    *fetch.Fetcher[[]types.Sample]
	eps       *fetch.Fetcher[float64]
	predictor interfaces.Predictor
	today     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithToday overrides the clock used for days-to-event.
func WithToday(today func() time.Time) Option {
	return func(p *Pipeline) {
		p.today = today
	}
}

// New wires a pipeline run. Fetch caches live inside the returned value,
// so each run starts clean.
func New(cfg *store.Config, priceSrc interfaces.PriceHistorySource, epsSrc interfaces.FundamentalSource, predictor interfaces.Predictor, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		prices:    fetch.New("price-history", priceSrc.History, cfg.Fetch.Price),
		eps:       fetch.New("forward-eps", epsSrc.ForwardEPS, cfg.Fetch.EPS),
		predictor: predictor,
		today:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes evs in input order and returns one PredictionRecord per
// event, in the same order. Feature fetches run on a bounded worker pool
// writing into pre-sized slots; inference is serialized through the
// predictor's rate limiter.
func (p *Pipeline) Run(ctx context.Context, evs []types.Event) []types.PredictionRecord {
	timer := logger.StartOperation(ctx, "pipeline-run", "events", len(evs))
	ctx = timer.GetContext()

	enriched := p.enrichAll(ctx, evs)

	records := make([]types.PredictionRecord, 0, len(evs))
	for i, rec := range enriched {
		records = append(records, p.infer(ctx, rec))
		logger.Debug(ctx, "Event reached terminal state",
			"symbol", rec.Symbol, "stage", stageParsed, "position", i)
	}

	timer.End("records", len(records))
	return records
}

// enrichAll fetches features for all events concurrently. Results land in
// slot i for event i, so output order matches input order no matter which
// worker finishes first.
func (p *Pipeline) enrichAll(ctx context.Context, evs []types.Event) []types.EnrichedEvent {
	out := make([]types.EnrichedEvent, len(evs))

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(evs) && len(evs) > 0 {
		workers = len(evs)
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i] = p.enrichOne(ctx, evs[i])
			}
		}()
	}
	for i := range evs {
		idx <- i
	}
	close(idx)
	wg.Wait()
	return out
}

// enrichOne runs the fetch/score/merge stages for a single event. Every
// failure path here degrades to an absent feature.
func (p *Pipeline) enrichOne(ctx context.Context, ev types.Event) types.EnrichedEvent {
	var features types.PriceFeatures
	if samples, found := p.prices.Fetch(ctx, ev.Symbol); found {
		features = market.Features(samples)
	} else {
		logger.Warn(ctx, "Price features absent", "symbol", ev.Symbol)
	}

	// The calendar row may already carry an estimate from a prior EPS
	// update pass; only fetch when it does not.
	if ev.EstimatedEPS == nil {
		if eps, found := p.eps.Fetch(ctx, ev.Symbol); found {
			ev.EstimatedEPS = types.Float(eps)
		}
	}
	logger.Debug(ctx, "Stage complete", "symbol", ev.Symbol, "stage", stageFeaturesFetched)

	sent := sentiment.Score(ev.Purpose, ev.BMDesc)
	rec := enrich.Aggregate(ev, features, sent, p.today())
	logger.Debug(ctx, "Stage complete", "symbol", ev.Symbol, "stage", stageEnriched,
		"sentiment", sent.Score, "days_to_event", rec.DaysToEvent)
	return rec
}

// infer builds the prompt, performs the rate-limited inference call and
// decodes the response. Call failures are caught here, logged, and
// replaced with the hold fallback; the run continues.
func (p *Pipeline) infer(ctx context.Context, rec types.EnrichedEvent) types.PredictionRecord {
	systemMsg, userMsg := predict.BuildPrompt(rec)
	logger.Debug(ctx, "Stage complete", "symbol", rec.Symbol, "stage", stagePromptBuilt)

	var prediction types.Prediction
	raw, err := p.predictor.Predict(ctx, systemMsg, userMsg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Inference call failed, substituting fallback", err,
			"symbol", rec.Symbol)
		prediction = predict.Fallback()
	} else {
		logger.Debug(ctx, "Stage complete", "symbol", rec.Symbol, "stage", stageInferred)
		var outcome predict.Outcome
		prediction, outcome = predict.Parse(raw)
		if outcome.Fallback {
			logger.Warn(ctx, "Model output not decodable, substituting fallback",
				"symbol", rec.Symbol, "reason", outcome.Reason)
		}
	}

	logger.Prediction(ctx, rec.Symbol, prediction.Recommendation, prediction.Confidence, prediction.Rationale)
	return types.PredictionRecord{
		Symbol:     rec.Symbol,
		Company:    rec.Company,
		Input:      rec,
		Prediction: prediction,
	}
}
