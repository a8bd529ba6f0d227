package predict

import (
	"encoding/json"
	"strings"

	"llm-event-predictor/internal/types"
)

// Outcome tags how a prediction was obtained so callers can branch
// explicitly instead of relying on error control flow.
type Outcome struct {
	Fallback bool
	Reason   string
}

// Fallback is the guaranteed-well-formed prediction substituted whenever
// the model output cannot be decoded or the inference call itself fails.
func Fallback() types.Prediction {
	return types.Prediction{
		Recommendation: "hold",
		Confidence:     0.5,
		Rationale:      "Model returned invalid JSON",
		Action:         "Hold position",
		FeaturesUsed:   []string{},
	}
}

// Parse extracts the first outermost object-like substring of raw (greedy,
// first '{' to last '}') and decodes it. On any failure it returns the
// hold fallback; it never returns an error. Decoded predictions are
// returned as-is: missing or extra fields are the consumer's concern.
func Parse(raw string) (types.Prediction, Outcome) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return Fallback(), Outcome{Fallback: true, Reason: "no JSON object in model output"}
	}

	var p types.Prediction
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return Fallback(), Outcome{Fallback: true, Reason: "undecodable JSON object: " + err.Error()}
	}
	if p.FeaturesUsed == nil {
		p.FeaturesUsed = []string{}
	}
	return p, Outcome{}
}
