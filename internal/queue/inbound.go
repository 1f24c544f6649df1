package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	// inboundSubjectPrefix is the subject family for inbound channel
	// messages; the channel name is appended.
	inboundSubjectPrefix = "inbound.messages"

	// workerGroup makes subscribers share the work when several instances
	// run.
	workerGroup = "assistant-workers"
)

// InboundMessage is one decoded channel message awaiting processing.
type InboundMessage struct {
	Channel   string `json:"channel"`
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`
	Text      string `json:"text"`
}

// Handler processes one inbound message.
type Handler func(ctx context.Context, msg InboundMessage)

// Inbound publishes and consumes inbound channel messages.
type Inbound struct {
	client *Client
	sub    *nats.Subscription
}

// NewInbound creates the inbound queue over an existing connection.
func NewInbound(client *Client) *Inbound {
	return &Inbound{client: client}
}

// Publish enqueues one inbound message.
func (q *Inbound) Publish(msg InboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal inbound message: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", inboundSubjectPrefix, msg.Channel)
	if err := q.client.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish inbound message: %w", err)
	}
	return nil
}

// Subscribe starts consuming inbound messages from every channel. Each
// message is handled on its own goroutine; the ctx is passed through to the
// handler.
func (q *Inbound) Subscribe(ctx context.Context, handler Handler) error {
	subject := inboundSubjectPrefix + ".>"
	sub, err := q.client.conn.QueueSubscribe(subject, workerGroup, func(m *nats.Msg) {
		var msg InboundMessage
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			q.client.logger.Error("dropping malformed inbound message", zap.Error(err))
			return
		}
		go handler(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe to inbound messages: %w", err)
	}
	q.sub = sub
	return nil
}

// Unsubscribe stops consuming.
func (q *Inbound) Unsubscribe() {
	if q.sub != nil {
		_ = q.sub.Unsubscribe()
	}
}
