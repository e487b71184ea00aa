package channels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const twilioDefaultBaseURL = "https://api.twilio.com"

// TwilioConfig holds the credentials for the Twilio Messages API. API key auth
// is used when both APIKey and APISecret are set, otherwise the auth token.
type TwilioConfig struct {
	BaseURL             string
	AccountSID          string
	APIKey              string
	APISecret           string
	AuthToken           string
	MessagingServiceSID string
	FromNumber          string
	HTTPClient          *http.Client
}

// TwilioSender sends SMS through the Twilio Messages API
type TwilioSender struct {
	cfg    TwilioConfig
	client *http.Client
}

// NewTwilioSender validates cfg and returns a sender
func NewTwilioSender(cfg TwilioConfig) (*TwilioSender, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, errors.New("twilio account SID is required")
	}
	if (cfg.APIKey == "" || cfg.APISecret == "") && cfg.AuthToken == "" {
		return nil, errors.New("twilio API key and secret or auth token is required")
	}
	if cfg.MessagingServiceSID == "" && cfg.FromNumber == "" {
		return nil, errors.New("twilio messaging service SID or from number is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioDefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &TwilioSender{cfg: cfg, client: defaultClient(cfg.HTTPClient)}, nil
}

// AuthMethod names the credential pair in use, for status pages
func (s *TwilioSender) AuthMethod() string {
	if s.cfg.APIKey != "" && s.cfg.APISecret != "" {
		return "api_key"
	}
	return "auth_token"
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// Send posts one message and returns the vendor message SID
func (s *TwilioSender) Send(ctx context.Context, recipient, body string) (string, error) {
	form := url.Values{}
	form.Set("To", recipient)
	form.Set("Body", body)
	if s.cfg.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", s.cfg.MessagingServiceSID)
	} else {
		form.Set("From", s.cfg.FromNumber)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.cfg.BaseURL, url.PathEscape(s.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if s.AuthMethod() == "api_key" {
		req.SetBasicAuth(s.cfg.APIKey, s.cfg.APISecret)
	} else {
		req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read twilio response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr twilioError
		if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Code == 0 {
			return "", &VendorError{
				Vendor:     "twilio",
				Message:    strings.TrimSpace(string(data)),
				HTTPStatus: resp.StatusCode,
			}
		}
		return "", &VendorError{
			Vendor:     "twilio",
			Code:       strconv.Itoa(apiErr.Code),
			Message:    apiErr.Message,
			HTTPStatus: resp.StatusCode,
		}
	}

	var msg twilioMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", fmt.Errorf("failed to decode twilio response: %w", err)
	}
	if msg.SID == "" {
		return "", &VendorError{Vendor: "twilio", Message: "response did not include a message SID", HTTPStatus: resp.StatusCode}
	}
	return msg.SID, nil
}
