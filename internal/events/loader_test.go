package events

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"llm-event-predictor/internal/types"
)

func TestDecodeBareArray(t *testing.T) {
	payload := `[{"symbol":"ACME","company":"Acme Ltd","date":"27-Aug-2026","purpose":"Dividend","bm_desc":"interim dividend"}]`
	list, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(list) != 1 || list[0].Symbol != "ACME" {
		t.Errorf("Unexpected events: %+v", list)
	}
}

func TestDecodeDataWrappedObject(t *testing.T) {
	payload := `{"data":[{"symbol":"ACME"},{"symbol":"OTHER"}]}`
	list, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(list) != 2 || list[1].Symbol != "OTHER" {
		t.Errorf("Unexpected events: %+v", list)
	}
}

func TestDecodeRejectsOtherShapes(t *testing.T) {
	for _, payload := range []string{`"just a string"`, `{"rows":[]}`, `not json`} {
		if _, err := Decode([]byte(payload)); err == nil {
			t.Errorf("Expected error for payload %q", payload)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events.json")
	list := []types.Event{
		{Symbol: "ACME", Company: "Acme Ltd", Date: "27-Aug-2026", EstimatedEPS: types.Float(12.5)},
	}

	if err := Save(path, list); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Symbol != "ACME" {
		t.Errorf("Unexpected round trip: %+v", loaded)
	}
	if loaded[0].EstimatedEPS == nil || *loaded[0].EstimatedEPS != 12.5 {
		t.Error("estimated_EPS lost in round trip")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestSavePredictionsShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	recs := []types.PredictionRecord{
		{
			Symbol:  "ACME",
			Company: "Acme Ltd",
			Prediction: types.Prediction{
				Recommendation: "hold",
				Confidence:     0.5,
				FeaturesUsed:   []string{},
			},
		},
	}
	if err := SavePredictions(path, recs); err != nil {
		t.Fatalf("SavePredictions failed: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, want := range []string{`"symbol"`, `"company"`, `"input"`, `"prediction"`, `"features_used"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("Output missing %s", want)
		}
	}
}
