package trace

import (
	"context"
	"testing"
)

func TestDisabledTracerIsInert(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Enabled() {
		t.Fatal("Expected tracing disabled")
	}

	ctx := context.Background()
	spanCtx, span := StartSpan(ctx, "noop")
	if spanCtx != ctx {
		t.Error("Expected the caller's context back when disabled")
	}
	span.End()

	if _, _, ok := GetTraceFields(ctx); ok {
		t.Error("Expected no trace fields when disabled")
	}
}

func TestEnabledTracerCorrelatesLogFields(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "true")
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "test-op")
	defer span.End()

	traceID, spanID, ok := GetTraceFields(ctx)
	if !ok {
		t.Fatal("Expected trace fields inside an active span")
	}
	if traceID == "" || spanID == "" {
		t.Errorf("Expected non-empty IDs, got trace=%q span=%q", traceID, spanID)
	}

	// Outside any span there is nothing to correlate.
	if _, _, ok := GetTraceFields(context.Background()); ok {
		t.Error("Expected no trace fields outside a span")
	}
}

func TestSampleRatioBounds(t *testing.T) {
	cases := []struct {
		value string
		want  float64
	}{
		{"", 1},
		{"0.25", 0.25},
		{"0", 0},
		{"7", 1},
		{"-1", 1},
		{"lots", 1},
	}
	for _, c := range cases {
		t.Setenv("TRACE_SAMPLE_RATIO", c.value)
		if got := sampleRatio(); got != c.want {
			t.Errorf("sampleRatio for %q: expected %v, got %v", c.value, c.want, got)
		}
	}
}
