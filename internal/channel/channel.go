// Package channel delivers outbound messages to the messaging platforms.
package channel

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/metrics"
)

// Channel names.
const (
	WhatsApp  = "whatsapp"
	Instagram = "instagram"
)

// Sender delivers messages on one channel.
type Sender interface {
	// SendText delivers a plain text message.
	SendText(ctx context.Context, to, text string) error

	// SendImage delivers an image by public URL with an optional caption.
	// Channels without image support skip the send and return nil.
	SendImage(ctx context.Context, to, imageURL, caption string) error
}

// Dispatcher routes outbound messages to the sender of each channel.
type Dispatcher struct {
	senders map[string]Sender
	logger  *logger.Logger
}

// NewDispatcher creates a dispatcher over the given senders, keyed by
// channel name.
func NewDispatcher(senders map[string]Sender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{senders: senders, logger: log}
}

// SendReply delivers one assistant reply: property photos first (short
// captions; the full detail is in the text), then the text itself. A failed
// send is logged and does not abort the remaining sends.
func (d *Dispatcher) SendReply(ctx context.Context, channelName, userID, text string, properties []model.Property) {
	sender, ok := d.senders[channelName]
	if !ok {
		d.logger.Error("no sender for channel", zap.String("channel", channelName))
		return
	}

	log := d.logger.WithConversation(channelName, userID)

	for _, prop := range properties {
		if prop.MainPhotoURL == "" {
			continue
		}
		if err := sender.SendImage(ctx, userID, prop.MainPhotoURL, FormatCaption(prop)); err != nil {
			metrics.RecordChannelSend(channelName, "image", "error")
			log.Warn("failed to send property photo", zap.Int("property_id", prop.ID), zap.Error(err))
			continue
		}
		metrics.RecordChannelSend(channelName, "image", "success")
	}

	if text == "" {
		return
	}
	if err := sender.SendText(ctx, userID, text); err != nil {
		metrics.RecordChannelSend(channelName, "text", "error")
		log.Error("failed to send reply text", zap.Error(err))
		return
	}
	metrics.RecordChannelSend(channelName, "text", "success")
}

// SendText delivers a single text message on a channel.
func (d *Dispatcher) SendText(ctx context.Context, channelName, userID, text string) error {
	sender, ok := d.senders[channelName]
	if !ok {
		return fmt.Errorf("no sender for channel %q", channelName)
	}
	err := sender.SendText(ctx, userID, text)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordChannelSend(channelName, "text", status)
	return err
}

// FormatCaption builds the short caption accompanying a property photo.
func FormatCaption(prop model.Property) string {
	var parts []string
	if prop.Title != "" {
		parts = append(parts, prop.Title)
	}
	if prop.Price != nil && prop.Currency != "" {
		parts = append(parts, fmt.Sprintf("%s %s", prop.Currency, formatThousands(*prop.Price)))
	}
	if prop.DetailURL != "" {
		parts = append(parts, "Ver ficha: "+prop.DetailURL)
	}
	return strings.Join(parts, "\n")
}

func formatThousands(v float64) string {
	whole := int64(v)
	s := fmt.Sprint(whole)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ".")
}
