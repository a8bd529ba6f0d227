// Package enrich merges a source event with fetched price features, the
// sentiment score and the computed days-to-event into one record. The
// merge is pure: it never fails an event and never mutates its input.
package enrich

import (
	"time"

	"llm-event-predictor/internal/sentiment"
	"llm-event-predictor/internal/types"
)

// Layouts tried in order against the calendar's free-form date strings.
// NSE publishes "02-Jan-2006"; the rest cover older payload variants.
var dateLayouts = []string{
	"02-Jan-2006",
	"2006-01-02",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// ParseEventDate parses a calendar date string. The second return is
// false when no known layout matches.
func ParseEventDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysToEvent returns the signed calendar-day distance from today to the
// event date, or nil when the date string does not parse.
func DaysToEvent(dateStr string, today time.Time) *int {
	parsed, ok := ParseEventDate(dateStr)
	if !ok {
		return nil
	}
	days := int(midnight(parsed).Sub(midnight(today)).Hours() / 24)
	return types.Int(days)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Aggregate produces the enriched record for one event. Absent price
// features stay nil; an unparsable date yields a nil days_to_event. The
// source event is copied, not modified.
func Aggregate(ev types.Event, price types.PriceFeatures, sent types.Sentiment, today time.Time) types.EnrichedEvent {
	return types.EnrichedEvent{
		Event:           ev,
		DaysToEvent:     DaysToEvent(ev.Date, today),
		SentimentScore:  sent.Score,
		SentimentReason: sentiment.Reason(sent),
		PriceFeatures:   price,
	}
}
