package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// GatewayConfig configures a generic HTTP SMS gateway
type GatewayConfig struct {
	URL        string
	APIKey     string
	SenderID   string
	HTTPClient *http.Client
}

// GatewaySender posts messages as JSON to an SMS gateway that answers with an
// {ok, result:{message_id}, error_code, description} envelope
type GatewaySender struct {
	cfg    GatewayConfig
	client *http.Client
}

// NewGatewaySender validates cfg and returns a sender
func NewGatewaySender(cfg GatewayConfig) (*GatewaySender, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("gateway URL is required")
	}
	return &GatewaySender{cfg: cfg, client: defaultClient(cfg.HTTPClient)}, nil
}

type gatewayRequest struct {
	To       string `json:"to"`
	Text     string `json:"text"`
	SenderID string `json:"sender_id,omitempty"`
}

type gatewayResponse struct {
	OK          bool            `json:"ok"`
	ErrorCode   json.RawMessage `json:"error_code"`
	Description string          `json:"description"`
	Result      struct {
		MessageID json.RawMessage `json:"message_id"`
	} `json:"result"`
}

// Send posts one message and returns the gateway message id
func (s *GatewaySender) Send(ctx context.Context, recipient, body string) (string, error) {
	payload, err := json.Marshal(gatewayRequest{To: recipient, Text: body, SenderID: s.cfg.SenderID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read gateway response: %w", err)
	}

	var out gatewayResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &VendorError{Vendor: "gateway", Message: strings.TrimSpace(string(data)), HTTPStatus: resp.StatusCode}
	}
	if !out.OK {
		msg := out.Description
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &VendorError{Vendor: "gateway", Code: rawString(out.ErrorCode), Message: msg, HTTPStatus: resp.StatusCode}
	}

	id := rawString(out.Result.MessageID)
	if id == "" {
		return "", &VendorError{Vendor: "gateway", Message: "response did not include a message id", HTTPStatus: resp.StatusCode}
	}
	return id, nil
}

// rawString renders a JSON string or number as plain text
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if s, err := strconv.Unquote(string(raw)); err == nil {
		return s
	}
	return string(raw)
}
