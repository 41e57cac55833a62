// Package llm provides the delegated text-understanding service used by
// pipeline stages running in service mode. Every call is single-shot and
// blocking; retry policy belongs to the caller, not here.
package llm

import (
	"context"
	"encoding/json"

	"github.com/pvoronin/newsdesk/internal/model"
)

// Client issues one-shot completions that must return a JSON object.
type Client interface {
	// Name returns the provider name.
	Name() string

	// CompleteJSON sends the request and parses the response body as a
	// JSON object keyed by top-level field.
	CompleteJSON(ctx context.Context, req Request) (map[string]json.RawMessage, error)
}

// Request is a single structured completion request.
type Request struct {
	// System is the stage-specific system prompt.
	System string

	// User holds one or more user payloads, already JSON-encoded.
	User []string

	// Model overrides the configured default model when non-empty.
	Model string

	// Temperature for the completion (0 for deterministic stages).
	Temperature float32
}

// Config holds service client configuration.
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama's OpenAI-compatible API)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens limits response length
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 2000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}
