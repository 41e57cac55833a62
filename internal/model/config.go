package model

import "time"

// Config is the complete newsdesk configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Cache       CacheConfig       `yaml:"cache"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls outbound HTTP behavior for feed fetching.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// FetchConfig controls article retrieval.
type FetchConfig struct {
	Limit             int     `yaml:"limit"`               // max articles per run
	RespectRobots     bool    `yaml:"respect_robots"`      // honor robots.txt on feed hosts
	RequestsPerSecond float64 `yaml:"requests_per_second"` // per-domain rate limit
	Burst             int     `yaml:"burst"`
}

// CacheConfig controls the feed body cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// PipelineConfig controls the text-processing stages.
type PipelineConfig struct {
	MaxPassageLength int  `yaml:"max_passage_length"` // character budget per passage
	HighlightLength  int  `yaml:"highlight_length"`   // character budget per highlight
	ServiceMode      bool `yaml:"service_mode"`       // delegate stages to the LLM service
	FallbackOnError  bool `yaml:"fallback_on_error"`  // fall back to rule mode on service failure
}

// LLMConfig configures the delegated text-understanding service.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", or "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// ConcurrencyConfig controls parallelism for batch digests.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls digest rendering.
type OutputConfig struct {
	Format  string `yaml:"format"` // "markdown" or "text"
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "Newsdesk/0.1 (+https://github.com/pvoronin/newsdesk)",
			MaxBodyBytes: 5 * 1024 * 1024,
		},
		Fetch: FetchConfig{
			Limit:             10,
			RespectRobots:     true,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Pipeline: PipelineConfig{
			MaxPassageLength: 320,
			HighlightLength:  160,
			ServiceMode:      false,
			FallbackOnError:  true,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "",
			Timeout:   30,
			MaxTokens: 2000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format:  "markdown",
			Verbose: false,
		},
	}
}
