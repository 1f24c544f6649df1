// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/middleware"
	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/internal/service"
	"github.com/dodorico/property-assistant/pkg/logger"
)

// defaultWebUser identifies direct /chat callers that do not send a userId.
const defaultWebUser = "web-user"

// Chatter processes one user message and returns the reply.
type Chatter interface {
	Chat(ctx context.Context, userID, text string) (*service.ChatResult, error)
}

// ChatHandler handles the direct chat endpoint.
type ChatHandler struct {
	assistant Chatter
	logger    *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(assistant Chatter, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
		logger:    log,
	}
}

type chatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type chatResponse struct {
	OK         bool             `json:"ok"`
	Reply      string           `json:"respuesta"`
	Properties []model.Property `json:"propiedades,omitempty"`
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		req.UserID = defaultWebUser
	}
	if err := middleware.ValidateUserID(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.assistant.Chat(ctx, req.UserID, req.Message)
	if err != nil {
		h.logger.Error("chat processing failed", zap.String("user_id", req.UserID), zap.Error(err))
		// This endpoint is an authenticated development surface, so the
		// error detail goes back to the caller. Channel users only ever see
		// the fixed fallback reply.
		writeError(w, http.StatusInternalServerError, "failed to process message: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		OK:         true,
		Reply:      result.Text,
		Properties: result.Properties,
	})
}
