package types

// Event is one row of the corporate-event calendar, as loaded from
// data/events.json. Date is kept as the raw string the exchange returns;
// it may not parse.
type Event struct {
	Symbol       string   `json:"symbol"`
	Company      string   `json:"company"`
	Date         string   `json:"date"`
	Purpose      string   `json:"purpose"`
	BMDesc       string   `json:"bm_desc"`
	EstimatedEPS *float64 `json:"estimated_EPS,omitempty"`
}

// Sample is one close/volume observation from the price-history source.
type Sample struct {
	Ts         int64
	Close, Vol float64
}

// PriceFeatures are derived from the trailing price history. Nil means the
// feature could not be computed (insufficient history or fetch failure);
// it is never encoded as zero.
type PriceFeatures struct {
	LastPrice *float64 `json:"last_price"`
	Pct7      *float64 `json:"pct_7"`
	Pct30     *float64 `json:"pct_30"`
	SMA20     *float64 `json:"sma20"`
	Vol30     *float64 `json:"vol_30"`
}

// Sentiment is the output of the keyword heuristic over the purpose and
// board-meeting texts.
type Sentiment struct {
	Score   float64
	Reasons []string
}

// EnrichedEvent is the unit of work handed to the model: the source event
// overlaid with fetched and derived features.
type EnrichedEvent struct {
	Event
	DaysToEvent     *int    `json:"days_to_event"`
	SentimentScore  float64 `json:"sentiment_score"`
	SentimentReason string  `json:"sentiment_reason"`
	PriceFeatures
}

// Prediction is the structured recommendation decoded from model output.
// It is always well formed; decode failure yields the hold fallback.
type Prediction struct {
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
	Rationale      string   `json:"rationale"`
	Action         string   `json:"action"`
	FeaturesUsed   []string `json:"features_used"`
}

// PredictionRecord pairs an enriched event with its prediction in the
// output artifact.
type PredictionRecord struct {
	Symbol     string        `json:"symbol"`
	Company    string        `json:"company"`
	Input      EnrichedEvent `json:"input"`
	Prediction Prediction    `json:"prediction"`
}

// Float returns a pointer to v. Derived features use pointer fields to
// keep "unknown" distinct from zero.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
