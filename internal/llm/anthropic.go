package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dodorico/property-assistant/internal/model"
)

// defaultAnthropicModel is used when the request names no model.
const defaultAnthropicModel = "claude-3-5-sonnet-20241022"

// AnthropicClient is the Anthropic LLM client.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// CreateMessage sends one request with system instructions, tools and the
// turn history, and converts the reply back to the internal shape.
func (c *AnthropicClient) CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	start := time.Now()

	modelName := req.Model
	if modelName == "" {
		modelName = defaultAnthropicModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(modelName)),
		MaxTokens: anthropic.F(int64(maxTokens)),
		Messages:  anthropic.F(turnsToParams(req.Turns)),
	}
	if req.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(req.System),
		})
	}
	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolParam, len(req.Tools))
		for i, tool := range req.Tools {
			tools[i] = anthropic.ToolParam{
				Name:        anthropic.F(tool.Name),
				Description: anthropic.F(tool.Description),
				InputSchema: anthropic.F[interface{}](tool.InputSchema),
			}
		}
		params.Tools = anthropic.F(tools)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	content := make([]model.ContentBlock, 0, len(resp.Content))
	for _, block := range resp.Content {
		switch block.Type {
		case anthropic.ContentBlockTypeText:
			content = append(content, model.ContentBlock{
				Type: model.BlockTypeText,
				Text: block.Text,
			})
		case anthropic.ContentBlockTypeToolUse:
			content = append(content, model.ContentBlock{
				Type:  model.BlockTypeToolUse,
				ID:    block.ID,
				Name:  block.Name,
				Input: json.RawMessage(block.Input),
			})
		}
	}

	stopReason := StopReasonEndTurn
	if resp.StopReason == anthropic.MessageStopReasonToolUse {
		stopReason = StopReasonToolUse
	}

	return &MessageResponse{
		StopReason: stopReason,
		Content:    content,
		Model:      string(resp.Model),
		TokensIn:   int(resp.Usage.InputTokens),
		TokensOut:  int(resp.Usage.OutputTokens),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// turnsToParams converts the internal turn history to Anthropic wire params.
func turnsToParams(turns []model.Turn) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, len(turns))
	for i, turn := range turns {
		blocks := make([]anthropic.MessageParamContentUnion, 0, len(turn.Content))
		for _, b := range turn.Content {
			switch b.Type {
			case model.BlockTypeText:
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			case model.BlockTypeToolUse:
				blocks = append(blocks, anthropic.ToolUseBlockParam{
					Type:  anthropic.F(anthropic.ToolUseBlockParamTypeToolUse),
					ID:    anthropic.F(b.ID),
					Name:  anthropic.F(b.Name),
					Input: anthropic.F[interface{}](json.RawMessage(b.Input)),
				})
			case model.BlockTypeToolResult:
				blocks = append(blocks, anthropic.NewToolResultBlock(b.ToolUseID, b.Content, false))
			}
		}
		if turn.Role == model.RoleAssistant {
			params[i] = anthropic.NewAssistantMessage(blocks...)
		} else {
			params[i] = anthropic.NewUserMessage(blocks...)
		}
	}
	return params
}
