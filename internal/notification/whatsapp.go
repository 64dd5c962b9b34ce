package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gwan-project/landing-auth/internal/config"
)

// WhatsAppSender sends messages through an HTTP message gateway.
type WhatsAppSender struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
}

// NewWhatsAppSender creates a gateway-backed sender from config.
func NewWhatsAppSender(cfg config.WhatsAppConfig) *WhatsAppSender {
	return &WhatsAppSender{
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

// gatewayRequest is the message payload accepted by the gateway.
type gatewayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send delivers a WhatsApp message to the recipient phone number.
// The subject is folded into the message text since WhatsApp has no
// subject line.
func (s *WhatsAppSender) Send(ctx context.Context, recipient, subject, body string) error {
	payload, err := json.Marshal(gatewayRequest{
		To:      recipient,
		Message: subject + "\n\n" + body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// Ensure WhatsAppSender implements ChannelSender.
var _ ChannelSender = (*WhatsAppSender)(nil)
