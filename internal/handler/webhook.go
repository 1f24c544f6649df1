package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/channel"
	"github.com/dodorico/property-assistant/internal/queue"
	"github.com/dodorico/property-assistant/internal/service"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/metrics"
)

// Publisher enqueues inbound messages for the worker pool.
type Publisher interface {
	Publish(msg queue.InboundMessage) error
}

// Replier sends a direct text reply on a channel.
type Replier interface {
	SendText(ctx context.Context, channelName, userID, text string) error
}

// WebhookHandler handles Meta webhook callbacks for WhatsApp and Instagram.
type WebhookHandler struct {
	publisher   Publisher
	replier     Replier
	deduper     *channel.Deduper
	verifyToken map[string]string
	logger      *logger.Logger
}

// NewWebhookHandler creates a webhook handler. verifyTokens maps channel
// name to the token Meta echoes back during subscription verification.
func NewWebhookHandler(publisher Publisher, replier Replier, deduper *channel.Deduper, verifyTokens map[string]string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		publisher:   publisher,
		replier:     replier,
		deduper:     deduper,
		verifyToken: verifyTokens,
		logger:      log,
	}
}

// Verify handles GET /webhook/{channel}. Meta sends hub.mode=subscribe with
// the configured verify token; the challenge must be echoed back verbatim.
func (h *WebhookHandler) Verify(channelName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("hub.mode")
		token := r.URL.Query().Get("hub.verify_token")
		challenge := r.URL.Query().Get("hub.challenge")

		if mode == "subscribe" && token != "" && token == h.verifyToken[channelName] {
			h.logger.Info("webhook verified", zap.String("channel", channelName))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(challenge))
			return
		}

		h.logger.Warn("webhook verification rejected", zap.String("channel", channelName))
		w.WriteHeader(http.StatusForbidden)
	}
}

// Meta webhook payload shapes. Both products deliver through the same
// envelope but nest messages differently.
type metaEnvelope struct {
	Object string      `json:"object"`
	Entry  []metaEntry `json:"entry"`
}

type metaEntry struct {
	ID        string          `json:"id"`
	Changes   []metaChange    `json:"changes"`
	Messaging []metaMessaging `json:"messaging"`
}

type metaChange struct {
	Field string    `json:"field"`
	Value metaValue `json:"value"`
}

type metaValue struct {
	Messages []waMessage `json:"messages"`
}

type waMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

type metaMessaging struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Message struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

// Receive handles POST /webhook/{channel}. The webhook must be acknowledged
// with 200 regardless of payload content; processing happens off the request
// path through the inbound queue.
func (h *WebhookHandler) Receive(channelName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env metaEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			h.logger.Warn("malformed webhook payload",
				zap.String("channel", channelName), zap.Error(err))
			w.WriteHeader(http.StatusOK)
			return
		}

		w.WriteHeader(http.StatusOK)

		switch channelName {
		case channel.WhatsApp:
			h.processWhatsApp(env)
		case channel.Instagram:
			h.processInstagram(env)
		}
	}
}

func (h *WebhookHandler) processWhatsApp(env metaEnvelope) {
	if env.Object != "whatsapp_business_account" {
		return
	}
	for _, entry := range env.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				if msg.ID != "" && h.deduper.Seen(msg.ID) {
					metrics.WebhookDuplicatesTotal.WithLabelValues(channel.WhatsApp).Inc()
					continue
				}
				if msg.Type != "text" {
					h.sendTextOnlyNotice(channel.WhatsApp, msg.From)
					continue
				}
				h.enqueue(queue.InboundMessage{
					Channel:   channel.WhatsApp,
					UserID:    msg.From,
					MessageID: msg.ID,
					Text:      msg.Text.Body,
				})
			}
		}
	}
}

func (h *WebhookHandler) processInstagram(env metaEnvelope) {
	// Instagram delivers with object "instagram" or "page" depending on how
	// the app is subscribed.
	if env.Object != "instagram" && env.Object != "page" {
		return
	}
	for _, entry := range env.Entry {
		for _, ev := range entry.Messaging {
			if ev.Message.IsEcho {
				continue
			}
			if ev.Message.MID != "" && h.deduper.Seen(ev.Message.MID) {
				metrics.WebhookDuplicatesTotal.WithLabelValues(channel.Instagram).Inc()
				continue
			}
			// Attachment-only events carry no text; they are dropped without
			// a notice, unlike WhatsApp media messages.
			if ev.Message.Text == "" {
				continue
			}
			h.enqueue(queue.InboundMessage{
				Channel:   channel.Instagram,
				UserID:    ev.Sender.ID,
				MessageID: ev.Message.MID,
				Text:      ev.Message.Text,
			})
		}
	}
}

func (h *WebhookHandler) enqueue(msg queue.InboundMessage) {
	if err := h.publisher.Publish(msg); err != nil {
		h.logger.Error("failed to enqueue inbound message",
			zap.String("channel", msg.Channel),
			zap.String("user_id", msg.UserID),
			zap.Error(err))
	}
}

func (h *WebhookHandler) sendTextOnlyNotice(channelName, userID string) {
	if userID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.replier.SendText(ctx, channelName, userID, service.TextOnlyReply); err != nil {
			h.logger.Error("failed to send text-only notice",
				zap.String("channel", channelName), zap.Error(err))
		}
	}()
}
