package handlers

import (
	"context"

	"clinic-automation/internal/content"
	"clinic-automation/internal/models"
	"clinic-automation/internal/services"
)

// NotificationServiceInterface defines the contract for sending notifications
// This interface is used for dependency injection and testing
type NotificationServiceInterface interface {
	Notify(ctx context.Context, channel models.Channel, req models.MessageRequest) services.Outcome
	Preview(channel models.Channel, req models.MessageRequest) models.RenderedMessage
	Enabled(channel models.Channel) bool
}

// ContentGeneratorInterface defines the contract for language model copy generation
type ContentGeneratorInterface interface {
	Generate(ctx context.Context, req content.Request) (*content.Result, error)
}

// DeliveryLogReaderInterface defines the contract for reading the delivery log
type DeliveryLogReaderInterface interface {
	Recent(ctx context.Context, limit, offset int) ([]*models.DeliveryLogEntry, error)
}
