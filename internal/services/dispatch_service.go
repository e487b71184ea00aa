package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"clinic-automation/internal/channels"
	"clinic-automation/internal/classifier"
	"clinic-automation/internal/models"
)

// Dispatch error codes that never reach a vendor
const (
	CodeInvalidRecipient   = "invalid_recipient"
	CodeChannelUnavailable = "channel_unavailable"
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// ValidPhone reports whether phone is in international format
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// DispatchService sends rendered messages through the sender registered for
// each channel. One call is one vendor attempt; nothing is retried.
type DispatchService struct {
	senders map[models.Channel]channels.Sender
	now     func() time.Time
}

// NewDispatchService creates a dispatcher. Channels without a sender report
// a channel_unavailable failure.
func NewDispatchService(senders map[models.Channel]channels.Sender) *DispatchService {
	registered := make(map[models.Channel]channels.Sender, len(senders))
	for ch, s := range senders {
		if s != nil {
			registered[ch] = s
		}
	}
	return &DispatchService{senders: registered, now: time.Now}
}

// Enabled reports whether a sender is registered for channel
func (s *DispatchService) Enabled(channel models.Channel) bool {
	_, ok := s.senders[channel]
	return ok
}

// Dispatch delivers body to recipient over channel. Every failure, including
// a panic inside a sender, is reported in the returned result.
func (s *DispatchService) Dispatch(ctx context.Context, channel models.Channel, recipient, body string) (result models.DeliveryResult) {
	defer func() {
		if r := recover(); r != nil {
			result = s.failure(&channels.VendorError{Vendor: string(channel), Message: fmt.Sprintf("sender panic: %v", r)})
		}
	}()

	if channel == models.ChannelSMS && !ValidPhone(recipient) {
		return s.validationFailure(channel, "Invalid phone number format")
	}
	if recipient == "" {
		return s.validationFailure(channel, "Recipient is required")
	}

	sender, ok := s.senders[channel]
	if !ok {
		return models.DeliveryResult{
			Success:      false,
			ErrorCode:    CodeChannelUnavailable,
			ErrorMessage: fmt.Sprintf("channel %q is not configured", channel),
			Category:     models.CategoryVendorService,
			Guidance: &models.Guidance{
				UserMessage:    "Delivery channel is not configured",
				HelpText:       "Configure credentials for the " + string(channel) + " channel and restart the server",
				ActionRequired: "Check channel configuration",
			},
			Timestamp: s.now().UTC(),
		}
	}

	id, err := sender.Send(ctx, recipient, body)
	if err != nil {
		return s.failure(err)
	}
	return models.DeliveryResult{
		Success:           true,
		ExternalMessageID: id,
		Timestamp:         s.now().UTC(),
	}
}

func (s *DispatchService) validationFailure(channel models.Channel, msg string) models.DeliveryResult {
	help := "Use international format: +919963721999"
	if channel == models.ChannelChat {
		help = "Provide chatId in the request or set TELEGRAM_CHAT_ID"
	}
	return models.DeliveryResult{
		Success:      false,
		ErrorCode:    CodeInvalidRecipient,
		ErrorMessage: msg,
		Category:     models.CategoryValidation,
		Guidance: &models.Guidance{
			UserMessage:    msg,
			HelpText:       help,
			ActionRequired: "Fix the recipient and retry",
		},
		Timestamp: s.now().UTC(),
	}
}

func (s *DispatchService) failure(err error) models.DeliveryResult {
	code := ""
	message := err.Error()
	var vendorErr *channels.VendorError
	if errors.As(err, &vendorErr) {
		code = vendorErr.Code
		if vendorErr.Message != "" {
			message = vendorErr.Message
		}
	}

	c := classifier.Classify(code)
	guidance := c.Guidance
	if !classifier.Known(code) && message != "" {
		guidance.UserMessage = message
	}
	return models.DeliveryResult{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: message,
		Category:     c.Category,
		Guidance:     &guidance,
		Timestamp:    s.now().UTC(),
	}
}
