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

// InstagramSender sends direct messages through the Instagram Graph API.
type InstagramSender struct {
	token      string
	pageID     string
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewInstagramSender creates an Instagram DM sender.
func NewInstagramSender(token, pageID string, log *logger.Logger) *InstagramSender {
	return &InstagramSender{
		token:      token,
		pageID:     pageID,
		baseURL:    graphAPIBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log,
	}
}

// SendText implements Sender.
func (s *InstagramSender) SendText(ctx context.Context, to, text string) error {
	payload := map[string]any{
		"recipient": map[string]string{"id": to},
		"message":   map[string]string{"text": text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("instagram send to %s failed: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("instagram send to %s failed: status %d: %s", to, resp.StatusCode, detail)
	}

	s.logger.Info("instagram message sent", zap.String("to", to))
	return nil
}

// SendImage implements Sender. The basic Instagram messaging API does not
// support sending images by URL, so the send is skipped.
func (s *InstagramSender) SendImage(ctx context.Context, to, imageURL, caption string) error {
	s.logger.Debug("instagram image send skipped", zap.String("to", to))
	return nil
}
