package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "llm:\n  provider: NOOP\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.RateLimit.MaxRequests != 30 || cfg.RateLimit.WindowSeconds != 60 {
		t.Errorf("Unexpected rate-limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Window() != 60*time.Second {
		t.Errorf("Unexpected window: %v", cfg.Window())
	}
	if cfg.ExchangeSuffix != ".NS" {
		t.Errorf("Expected .NS suffix default, got %q", cfg.ExchangeSuffix)
	}
	if cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("Unexpected model default: %q", cfg.LLM.Model)
	}

	// The two fetch policies stay independent.
	if cfg.Fetch.Price.MaxRetries != 4 || cfg.Fetch.Price.BaseDelay() != time.Second {
		t.Errorf("Unexpected price policy: %+v", cfg.Fetch.Price)
	}
	if cfg.Fetch.EPS.MaxRetries != 3 || cfg.Fetch.EPS.BaseDelay() != 1500*time.Millisecond {
		t.Errorf("Unexpected eps policy: %+v", cfg.Fetch.EPS)
	}
	if cfg.Fetch.EPS.Jitter() != 300*time.Millisecond {
		t.Errorf("Unexpected jitter: %v", cfg.Fetch.EPS.Jitter())
	}
}

func TestLoadConfigRejectsBadProvider(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "llm:\n  provider: OPENAI\n"))
	if err == nil {
		t.Fatal("Expected validation error for unknown provider")
	}
}

func TestLoadConfigRejectsNonPositiveLimit(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "llm:\n  provider: NOOP\nrate_limit:\n  max_requests: -1\n"))
	if err == nil {
		t.Fatal("Expected validation error for negative max_requests")
	}
}

func TestGroqModelEnvOverride(t *testing.T) {
	t.Setenv("GROQ_MODEL", "llama-3.3-70b-versatile")
	cfg, err := LoadConfig(writeConfig(t, "llm:\n  provider: NOOP\n  model: llama-3.1-8b-instant\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Expected env override, got %q", cfg.LLM.Model)
	}
}

func TestAPIKeyLegacyAlias(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_KEY", "legacy-key")
	cfg := DefaultConfig()
	if cfg.APIKey() != "legacy-key" {
		t.Errorf("Expected GROQ_KEY alias to resolve, got %q", cfg.APIKey())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
