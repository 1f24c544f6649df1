package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dodorico/property-assistant/internal/model"
)

// defaultOpenAIModel is used when the request names no model.
const defaultOpenAIModel = openai.GPT4TurboPreview

// OpenAIClient is the OpenAI LLM client.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	return &OpenAIClient{client: openai.NewClient(apiKey)}, nil
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// CreateMessage sends one request and converts the reply back to the
// internal shape. OpenAI carries tool results as separate "tool" role
// messages rather than user content blocks; the conversion happens here so
// the rest of the system only sees one protocol.
func (c *OpenAIClient) CreateMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	start := time.Now()

	modelName := req.Model
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     modelName,
		MaxTokens: maxTokens,
		Messages:  turnsToChatMessages(req.System, req.Turns),
	}
	for _, tool := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("OpenAI returned no choices")
	}

	choice := resp.Choices[0]

	var content []model.ContentBlock
	if choice.Message.Content != "" {
		content = append(content, model.ContentBlock{
			Type: model.BlockTypeText,
			Text: choice.Message.Content,
		})
	}
	for _, tc := range choice.Message.ToolCalls {
		content = append(content, model.ContentBlock{
			Type:  model.BlockTypeToolUse,
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(tc.Function.Arguments),
		})
	}

	stopReason := StopReasonEndTurn
	if choice.FinishReason == openai.FinishReasonToolCalls {
		stopReason = StopReasonToolUse
	}

	return &MessageResponse{
		StopReason: stopReason,
		Content:    content,
		Model:      resp.Model,
		TokensIn:   resp.Usage.PromptTokens,
		TokensOut:  resp.Usage.CompletionTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// turnsToChatMessages flattens the turn history into OpenAI chat messages.
func turnsToChatMessages(system string, turns []model.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, turn := range turns {
		switch turn.Role {
		case model.RoleAssistant:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
			for _, b := range turn.Content {
				switch b.Type {
				case model.BlockTypeText:
					msg.Content = b.Text
				case model.BlockTypeToolUse:
					msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
						ID:   b.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      b.Name,
							Arguments: string(b.Input),
						},
					})
				}
			}
			messages = append(messages, msg)
		default:
			// Tool results become individual "tool" role messages; plain
			// text stays a user message.
			for _, b := range turn.Content {
				switch b.Type {
				case model.BlockTypeText:
					messages = append(messages, openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleUser,
						Content: b.Text,
					})
				case model.BlockTypeToolResult:
					messages = append(messages, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						ToolCallID: b.ToolUseID,
						Content:    b.Content,
					})
				}
			}
		}
	}
	return messages
}
