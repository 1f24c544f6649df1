// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"

	"github.com/dodorico/property-assistant/internal/model"
)

// StopReason tells the caller why the model stopped.
type StopReason string

const (
	StopReasonEndTurn StopReason = "end_turn"
	StopReasonToolUse StopReason = "tool_use"
)

// ToolDefinition declares one tool the model may invoke.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// MessageRequest is one model call: system instructions, declared tools and
// the turn history.
type MessageRequest struct {
	Model     string
	System    string
	MaxTokens int
	Tools     []ToolDefinition
	Turns     []model.Turn
}

// MessageResponse is the model's reply: a stop reason plus zero or more
// content blocks (text and/or tool_use).
type MessageResponse struct {
	StopReason StopReason
	Content    []model.ContentBlock
	Model      string
	TokensIn   int
	TokensOut  int
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// CreateMessage sends one turn-history request and returns the reply.
	CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error)

	// Name returns the provider name.
	Name() string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewAnthropicClient(apiKey)
	}
}
