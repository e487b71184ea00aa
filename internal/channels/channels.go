// Package channels holds the vendor clients that deliver rendered messages.
package channels

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers one message body to one recipient with a single vendor call
type Sender interface {
	Send(ctx context.Context, recipient, body string) (messageID string, err error)
}

// VendorError is a failure reported by a delivery vendor
type VendorError struct {
	Vendor     string
	Code       string
	Message    string
	HTTPStatus int
}

func (e *VendorError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error %s: %s", e.Vendor, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Vendor, e.Message)
}

const defaultTimeout = 15 * time.Second

func defaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultTimeout}
}
