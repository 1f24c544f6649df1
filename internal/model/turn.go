// Package model defines data structures for the property assistant.
package model

import (
	"encoding/json"
)

// Role represents the role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType discriminates the content block union.
type BlockType string

const (
	BlockTypeText       BlockType = "text"
	BlockTypeToolUse    BlockType = "tool_use"
	BlockTypeToolResult BlockType = "tool_result"
)

// ContentBlock is one unit of turn content. Exactly one variant is populated,
// selected by Type:
//
//   - text:        Text
//   - tool_use:    ID, Name, Input (assistant only)
//   - tool_result: ToolUseID, Content (carried under a user turn)
type ContentBlock struct {
	Type BlockType `json:"type"`

	Text string `json:"text,omitempty"`

	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// Turn is one role-tagged unit of conversation history.
type Turn struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewUserText builds a user turn with a single text block.
func NewUserText(text string) Turn {
	return Turn{
		Role:    RoleUser,
		Content: []ContentBlock{{Type: BlockTypeText, Text: text}},
	}
}

// NewToolResults builds the user turn that answers an assistant tool-use turn.
func NewToolResults(results []ContentBlock) Turn {
	return Turn{Role: RoleUser, Content: results}
}

// ToolUses returns the tool_use blocks of the turn, in order.
func (t Turn) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, b := range t.Content {
		if b.Type == BlockTypeToolUse {
			uses = append(uses, b)
		}
	}
	return uses
}

// ToolResultIDs returns the tool_use_id of every tool_result block.
func (t Turn) ToolResultIDs() []string {
	var ids []string
	for _, b := range t.Content {
		if b.Type == BlockTypeToolResult {
			ids = append(ids, b.ToolUseID)
		}
	}
	return ids
}

// FirstText returns the text of the first text block, or "".
func (t Turn) FirstText() string {
	for _, b := range t.Content {
		if b.Type == BlockTypeText {
			return b.Text
		}
	}
	return ""
}

// MaxHistoryTurns bounds the history submitted to the language model.
const MaxHistoryTurns = 30

// TrimHistory keeps the most recent limit turns.
func TrimHistory(turns []Turn, limit int) []Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}
