// Package service provides the message flow handling for the assistant.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/channel"
	"github.com/dodorico/property-assistant/internal/conversation"
	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/internal/state"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/metrics"
)

// Fixed user-facing replies. Raw provider or model errors never reach the
// end user.
const (
	TechnicalDifficultyReply = "Disculpá, tuve un problema técnico momentáneo. ¿Podés repetir tu consulta?"
	TextOnlyReply            = "Por el momento solo proceso mensajes de texto. ¡Escribime tu consulta!"
)

// Processor runs one user message through the model orchestration loop.
type Processor interface {
	Process(ctx context.Context, userMessage string, history []model.Turn) (*conversation.Result, error)
}

// ChatResult is the reply for one processed message.
type ChatResult struct {
	Text       string
	Properties []model.Property
}

// Assistant orchestrates state lookup, message processing, state persistence
// and outbound delivery.
type Assistant struct {
	store      state.Store
	processor  Processor
	dispatcher *channel.Dispatcher
	logger     *logger.Logger
}

// NewAssistant creates the assistant service.
func NewAssistant(store state.Store, processor Processor, dispatcher *channel.Dispatcher, log *logger.Logger) *Assistant {
	return &Assistant{
		store:      store,
		processor:  processor,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Chat processes one message for a user and persists the updated state.
// On failure the stored state is left unmodified.
func (a *Assistant) Chat(ctx context.Context, userID, text string) (*ChatResult, error) {
	st, err := a.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := a.processor.Process(ctx, text, st.History)
	if err != nil {
		return nil, err
	}

	// Shallow merge: history always; the last-shown set only when this
	// request found a nonempty batch.
	st.History = result.UpdatedHistory
	if len(result.Properties) > 0 {
		st.LastShownProperties = result.Properties
		st.Phase = model.PhaseShowingResults
	} else if st.Phase == model.PhaseWelcome {
		st.Phase = model.PhaseSearching
	}

	if err := a.store.Set(ctx, userID, st); err != nil {
		return nil, err
	}

	return &ChatResult{Text: result.Text, Properties: result.Properties}, nil
}

// HandleInbound processes one channel message end to end: state, model,
// photo sends, text send. Errors surface to the user as the fixed
// technical-difficulty message.
func (a *Assistant) HandleInbound(ctx context.Context, channelName, userID, text string) {
	log := a.logger.WithConversation(channelName, userID)
	log.Info("processing inbound message", zap.Int("text_len", len(text)))

	result, err := a.Chat(ctx, userID, text)
	if err != nil {
		metrics.MessagesProcessedTotal.WithLabelValues(channelName, "error").Inc()
		log.Error("message processing failed", zap.Error(err))
		if sendErr := a.dispatcher.SendText(ctx, channelName, userID, TechnicalDifficultyReply); sendErr != nil {
			log.Error("failed to send error reply", zap.Error(sendErr))
		}
		return
	}

	metrics.MessagesProcessedTotal.WithLabelValues(channelName, "success").Inc()
	a.dispatcher.SendReply(ctx, channelName, userID, result.Text, result.Properties)
}

// Reset discards a user's conversation state.
func (a *Assistant) Reset(ctx context.Context, userID string) error {
	return a.store.Reset(ctx, userID)
}
