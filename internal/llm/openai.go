package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI and OpenAI-compatible APIs.
type OpenAIClient struct {
	client *openai.Client
	config Config
	name   string
}

// NewOpenAIClient creates a client against api.openai.com or, when
// BaseURL is set, any OpenAI-compatible endpoint.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   "openai",
	}, nil
}

// NewOllamaClient creates a client against Ollama's OpenAI-compatible
// chat endpoint. Ollama ignores the API key but the SDK requires one.
func NewOllamaClient(config Config) (*OpenAIClient, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}

	clientConfig := openai.DefaultConfig("ollama")
	clientConfig.BaseURL = baseURL

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   "ollama",
	}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return c.name }

// CompleteJSON issues a chat completion in JSON-object mode and decodes
// the response content into top-level fields. Any shape problem (empty
// choices, non-JSON content, non-object content) is an error so the
// stage executor can apply its fallback policy.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, req Request) (map[string]json.RawMessage, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := c.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(c.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.User)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})
	for _, payload := range req.User {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: payload,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", c.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", c.name)
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("%s response was not a JSON object: %w", c.name, err)
	}

	return parsed, nil
}
