// Package llm provides chat-model client interfaces and implementations.
package llm

import (
	"context"
	"encoding/json"
)

// Tool-choice modes passed through to the provider.
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// ChatMessage is one turn in the transcript handed to the model.
// ToolCalls is set on assistant turns that requested tools; ToolCallID is
// set on tool-role turns carrying a result back.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArgumentsJSON string `json:"arguments"`
}

// ToolSchema declares one callable tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema object
}

// CompletionRequest represents a single completion request.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Tools       []ToolSchema
	ToolChoice  string
	MaxTokens   int
	Temperature float64
}

// ModelTurn is the outcome of one model round-trip: plain content, a set
// of requested tool calls, or both.
type ModelTurn struct {
	Content    string
	ToolCalls  []ToolCall
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for chat-model providers. Implementations are
// stateless: every Complete call is fully self-contained, performs exactly
// one network round-trip and never retries internally, since conversation
// state lives in durable storage rather than in the client.
type Client interface {
	// Complete sends one completion request and returns the model's turn.
	Complete(ctx context.Context, req *CompletionRequest) (*ModelTurn, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of model provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config carries provider construction settings. BaseURL lets the OpenAI
// provider target any OpenAI-compatible endpoint (Cohere compat, DeepSeek,
// a local server, ...).
type Config struct {
	Provider Provider
	APIKey   string
	BaseURL  string
	Model    string
}

// NewClient creates a model client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model)
	}
}
