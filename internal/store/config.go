package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RetryPolicy configures one retrying fetcher. The price-history and EPS
// lookups carry independent policies; callers must not assume they match.
type RetryPolicy struct {
	MaxRetries    int     `yaml:"max_retries"`
	BaseDelayMs   int     `yaml:"base_delay_ms"`
	BackoffFactor float64 `yaml:"backoff_factor"`
	JitterMs      int     `yaml:"jitter_ms"`
}

// BaseDelay returns the base backoff delay as a duration.
func (p RetryPolicy) BaseDelay() time.Duration {
	return time.Duration(p.BaseDelayMs) * time.Millisecond
}

// Jitter returns the jitter bound as a duration.
func (p RetryPolicy) Jitter() time.Duration {
	return time.Duration(p.JitterMs) * time.Millisecond
}

type Config struct {
	ExchangeSuffix string `yaml:"exchange_suffix"`
	EventsPath     string `yaml:"events_path"`
	OutputPath     string `yaml:"output_path"`
	Workers        int    `yaml:"workers"`
	LLM            struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		APIKeyEnv   string  `yaml:"api_key_env"`
	} `yaml:"llm"`
	RateLimit struct {
		MaxRequests   int `yaml:"max_requests"`
		WindowSeconds int `yaml:"window_seconds"`
	} `yaml:"rate_limit"`
	Fetch struct {
		Price RetryPolicy `yaml:"price"`
		EPS   RetryPolicy `yaml:"eps"`
	} `yaml:"fetch"`
}

// Window returns the rate-limit window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// APIKey resolves the inference API key from the configured environment
// variable. GROQ_KEY is accepted as a legacy alias.
func (c *Config) APIKey() string {
	if key := os.Getenv(c.LLM.APIKeyEnv); key != "" {
		return key
	}
	if c.LLM.APIKeyEnv == "GROQ_API_KEY" {
		return os.Getenv("GROQ_KEY")
	}
	return ""
}

func (c *Config) Validate() error {
	if c.LLM.Provider != "GROQ" && c.LLM.Provider != "NOOP" {
		return fmt.Errorf("invalid llm.provider '%s': must be 'GROQ' or 'NOOP'", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model cannot be empty")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive, got %d", c.RateLimit.WindowSeconds)
	}
	for name, p := range map[string]RetryPolicy{"fetch.price": c.Fetch.Price, "fetch.eps": c.Fetch.EPS} {
		if p.MaxRetries <= 0 {
			return fmt.Errorf("%s.max_retries must be positive, got %d", name, p.MaxRetries)
		}
		if p.BackoffFactor < 1 {
			return fmt.Errorf("%s.backoff_factor must be >= 1, got %.2f", name, p.BackoffFactor)
		}
	}
	return nil
}

// LoadConfig reads path, applies defaults and environment overrides, and
// validates the result. Defaults match the free-tier limits of the Groq
// API (30 requests per minute) and Yahoo's tolerated polling cadence.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	// GROQ_MODEL overrides the configured model id.
	if m := os.Getenv("GROQ_MODEL"); m != "" {
		c.LLM.Model = m
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// DefaultConfig returns a config with every default applied, used when no
// config.yaml is present.
func DefaultConfig() *Config {
	c := &Config{}
	applyDefaults(c)
	if m := os.Getenv("GROQ_MODEL"); m != "" {
		c.LLM.Model = m
	}
	return c
}

func applyDefaults(c *Config) {
	if c.ExchangeSuffix == "" {
		c.ExchangeSuffix = ".NS"
	}
	if c.EventsPath == "" {
		c.EventsPath = "data/events.json"
	}
	if c.OutputPath == "" {
		c.OutputPath = "ai_predictions.json"
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "GROQ"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama-3.1-8b-instant"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 300
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "GROQ_API_KEY"
	}
	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 30
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Fetch.Price.MaxRetries == 0 {
		c.Fetch.Price = RetryPolicy{MaxRetries: 4, BaseDelayMs: 1000, BackoffFactor: 2, JitterMs: 300}
	}
	if c.Fetch.EPS.MaxRetries == 0 {
		c.Fetch.EPS = RetryPolicy{MaxRetries: 3, BaseDelayMs: 1500, BackoffFactor: 2, JitterMs: 300}
	}
}
