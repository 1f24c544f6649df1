package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/pkg/logger"
)

// graphAPIBaseURL is the Meta Graph API root used by both channels.
const graphAPIBaseURL = "https://graph.facebook.com/v19.0"

// WhatsAppSender sends messages through the WhatsApp Cloud API.
type WhatsAppSender struct {
	token      string
	phoneID    string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewWhatsAppSender creates a WhatsApp Cloud API sender.
func NewWhatsAppSender(token, phoneID string, log *logger.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		token:      token,
		phoneID:    phoneID,
		baseURL:    graphAPIBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log,
	}
}

type whatsAppSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText implements Sender.
func (s *WhatsAppSender) SendText(ctx context.Context, to, text string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": text},
	}

	var resp whatsAppSendResponse
	if err := s.post(ctx, payload, &resp); err != nil {
		return fmt.Errorf("whatsapp text send to %s failed: %w", to, err)
	}

	msgID := ""
	if len(resp.Messages) > 0 {
		msgID = resp.Messages[0].ID
	}
	s.logger.Info("whatsapp message sent", zap.String("to", to), zap.String("message_id", msgID))
	return nil
}

// SendImage implements Sender. The catalog returns direct photo URLs the
// Cloud API can fetch.
func (s *WhatsAppSender) SendImage(ctx context.Context, to, imageURL, caption string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "image",
		"image":             map[string]string{"link": imageURL, "caption": caption},
	}

	if err := s.post(ctx, payload, nil); err != nil {
		return fmt.Errorf("whatsapp image send to %s failed: %w", to, err)
	}
	s.logger.Info("whatsapp image sent", zap.String("to", to))
	return nil
}

func (s *WhatsAppSender) post(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("graph API returned status %d: %s", resp.StatusCode, detail)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
