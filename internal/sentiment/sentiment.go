// Package sentiment scores the free-text purpose and board-meeting
// description of an event with a fixed keyword heuristic. It is pure and
// deterministic: no external calls, no randomness.
package sentiment

import (
	"strings"

	"llm-event-predictor/internal/types"
)

var dilutionTerms = []string{"rights issue", "fund raising", "preferential", "capital raise"}

// Score applies the keyword rules to the lower-cased concatenation of the
// two texts. Rules are independent; every applicable rule fires, so the
// score can go negative.
func Score(purpose, bmDesc string) types.Sentiment {
	t := strings.ToLower(purpose + " " + bmDesc)

	var s types.Sentiment
	s.Reasons = []string{}

	if strings.Contains(t, "dividend") {
		s.Score += 0.2
		s.Reasons = append(s.Reasons, "dividend mentioned")
	}
	if strings.Contains(t, "results") {
		s.Score += 0.05
	}
	for _, term := range dilutionTerms {
		if strings.Contains(t, term) {
			s.Score -= 0.3
			s.Reasons = append(s.Reasons, "dilution-related terms")
			break
		}
	}
	return s
}

// Reason joins the matched reason tags for the serialized record.
func Reason(s types.Sentiment) string {
	return strings.Join(s.Reasons, "; ")
}
