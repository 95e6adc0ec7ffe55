package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
)

// SMSConfig configures the outbound SMS provider client.
type SMSConfig struct {
	BaseURL  string
	APIToken string
	Sender   string
}

// SMSClient sends messages through the provider's HTTP API. Callers treat
// delivery as best-effort; this client just reports what the provider
// said.
type SMSClient struct {
	cfg    SMSConfig
	http   *http.Client
	logger *slog.Logger
}

// NewSMSClient builds the provider client.
func NewSMSClient(cfg SMSConfig, logger *slog.Logger) *SMSClient {
	return &SMSClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type smsRequest struct {
	To     string `json:"to"`
	Body   string `json:"body"`
	Sender string `json:"sender,omitempty"`
}

type smsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Send delivers one message to a digits-only phone number.
func (c *SMSClient) Send(ctx context.Context, phoneNumber, message string) error {
	payload, err := json.Marshal(smsRequest{
		To:     phoneNumber,
		Body:   message,
		Sender: c.cfg.Sender,
	})
	if err != nil {
		return fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	var out smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode sms response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("sms rejected: %s", msg)
	}
	return nil
}

// NopSMS discards messages. Used when SMS dispatch is disabled.
type NopSMS struct {
	Logger *slog.Logger
}

// Send logs and drops the message.
func (n NopSMS) Send(_ context.Context, phoneNumber, _ string) error {
	if n.Logger != nil {
		n.Logger.Debug("sms disabled, message dropped", "to", phoneNumber)
	}
	return nil
}

var _ domain.SMSGateway = (*SMSClient)(nil)
var _ domain.SMSGateway = NopSMS{}
