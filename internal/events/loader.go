// Package events reads and writes the corporate-event calendar artifacts:
// the input events.json and the prediction output.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"llm-event-predictor/internal/types"
)

// Load reads events from path. The payload may be a bare JSON array or an
// object with a top-level "data" array (the shape NSE returns). A missing
// or unparsable file is the caller's fatal condition.
func Load(path string) ([]types.Event, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("events file: %w", err)
	}
	return Decode(b)
}

// Decode parses an events payload in either accepted shape.
func Decode(b []byte) ([]types.Event, error) {
	var list []types.Event
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data []types.Event `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return nil, fmt.Errorf("events payload is neither a JSON array nor an object with a 'data' array")
}

// Save writes events back to path as an indented JSON array, creating the
// parent directory if needed.
func Save(path string, list []types.Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// SavePredictions writes the output artifact: a JSON array of
// PredictionRecord, one per input event, in input order.
func SavePredictions(path string, recs []types.PredictionRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
