package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a service client based on configuration. An empty
// provider disables the service (nil client, no error); an unknown
// provider is a configuration error and is rejected immediately.
func NewClient(config Config) (Client, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIClient(config)

	case "ollama":
		return NewOllamaClient(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
