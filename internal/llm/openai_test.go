package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index:        0,
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 42},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClient_CompleteJSON_Success(t *testing.T) {
	server := chatServer(t, `{"entities": [{"span": "OpenAI"}]}`)
	defer server.Close()

	client, err := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini", Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	parsed, err := client.CompleteJSON(context.Background(), Request{System: "sys", User: []string{`{"x":1}`}})
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if _, ok := parsed["entities"]; !ok {
		t.Error("expected entities key in parsed response")
	}
}

func TestOpenAIClient_CompleteJSON_NonJSONContent(t *testing.T) {
	server := chatServer(t, "this is not json")
	defer server.Close()

	client, err := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.CompleteJSON(context.Background(), Request{System: "sys"}); err == nil {
		t.Error("expected error for non-JSON content")
	}
}

func TestOpenAIClient_CompleteJSON_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.CompleteJSON(context.Background(), Request{System: "sys"}); err == nil {
		t.Error("expected error for server failure")
	}
}

func TestNewOpenAIClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIClient(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewClient_Factory(t *testing.T) {
	if client, err := NewClient(Config{Provider: ""}); err != nil || client != nil {
		t.Errorf("empty provider should disable the service, got %v / %v", client, err)
	}

	if _, err := NewClient(Config{Provider: "openai", APIKey: "k"}); err != nil {
		t.Errorf("openai provider failed: %v", err)
	}

	client, err := NewClient(Config{Provider: "ollama"})
	if err != nil {
		t.Errorf("ollama provider failed: %v", err)
	}
	if client.Name() != "ollama" {
		t.Errorf("expected ollama client, got %s", client.Name())
	}

	if _, err := NewClient(Config{Provider: "skynet"}); err == nil {
		t.Error("unknown provider must be rejected")
	}
}
