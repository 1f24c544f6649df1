package model

import (
	"time"
)

// Phase is the coarse conversational stage of a user.
type Phase string

const (
	PhaseWelcome        Phase = "welcome"
	PhaseSearching      Phase = "searching"
	PhaseShowingResults Phase = "showing_results"
	PhaseEscalating     Phase = "escalating"
)

// Contact holds the details captured when a conversation escalates to a
// human advisor.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ConversationState is the per-user state kept across messages. Reset is an
// explicit operation; state never expires on its own.
type ConversationState struct {
	Phase               Phase          `json:"phase"`
	Filters             map[string]any `json:"filters"`
	LastShownProperties []Property     `json:"last_shown_properties"`
	Contact             Contact        `json:"contact"`
	History             []Turn         `json:"history"`
	CreatedAt           time.Time      `json:"created_at"`
	LastActivityAt      time.Time      `json:"last_activity_at"`
}

// NewConversationState returns the initial state for a first-time user.
func NewConversationState(now time.Time) *ConversationState {
	return &ConversationState{
		Phase:          PhaseWelcome,
		Filters:        map[string]any{},
		Contact:        Contact{},
		CreatedAt:      now,
		LastActivityAt: now,
	}
}
