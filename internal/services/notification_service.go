package services

import (
	"context"
	"time"

	"clinic-automation/internal/metrics"
	"clinic-automation/internal/models"
	"clinic-automation/pkg/logger"
	"clinic-automation/pkg/utils"

	"go.uber.org/zap"
)

// Renderer formats a request for one channel
type Renderer interface {
	RenderFor(channel models.Channel, req models.MessageRequest) models.RenderedMessage
}

// Dispatcher performs a single delivery attempt
type Dispatcher interface {
	Dispatch(ctx context.Context, channel models.Channel, recipient, body string) models.DeliveryResult
	Enabled(channel models.Channel) bool
}

// DeliveryRecorder stores the outcome of a delivery attempt
type DeliveryRecorder interface {
	Log(ctx context.Context, req models.MessageRequest, rendered models.RenderedMessage, result models.DeliveryResult)
}

// Outcome is what a caller learns about one notification
type Outcome struct {
	Rendered models.RenderedMessage
	Result   models.DeliveryResult
}

// NotificationService renders, dispatches and logs patient notifications.
// Every HTTP entry point funnels through Notify.
type NotificationService struct {
	renderer   Renderer
	dispatcher Dispatcher
	recorder   DeliveryRecorder
}

// NewNotificationService creates a new notification service
func NewNotificationService(renderer Renderer, dispatcher Dispatcher, recorder DeliveryRecorder) *NotificationService {
	return &NotificationService{
		renderer:   renderer,
		dispatcher: dispatcher,
		recorder:   recorder,
	}
}

// Enabled reports whether channel can deliver messages
func (s *NotificationService) Enabled(channel models.Channel) bool {
	return s.dispatcher.Enabled(channel)
}

// Preview renders req for channel without sending it
func (s *NotificationService) Preview(channel models.Channel, req models.MessageRequest) models.RenderedMessage {
	return s.renderer.RenderFor(channel, req)
}

// Notify renders req for channel, makes one delivery attempt and logs it.
// The log write happens whatever the attempt's outcome and cannot change it.
func (s *NotificationService) Notify(ctx context.Context, channel models.Channel, req models.MessageRequest) Outcome {
	rendered := s.renderer.RenderFor(channel, req)

	start := time.Now()
	result := s.dispatcher.Dispatch(ctx, channel, rendered.Recipient, rendered.Body)
	metrics.DispatchDuration.WithLabelValues(string(channel)).Observe(time.Since(start).Seconds())

	if result.Success {
		metrics.DispatchTotal.WithLabelValues(string(channel), models.StatusSent).Inc()
		logger.Info("Notification sent",
			zap.String("channel", string(channel)),
			zap.String("message_type", string(req.MessageType)),
			zap.String("recipient", utils.MaskRecipient(rendered.Recipient)),
			zap.String("message_id", result.ExternalMessageID),
		)
	} else {
		metrics.DispatchTotal.WithLabelValues(string(channel), models.StatusFailed).Inc()
		metrics.DispatchFailures.WithLabelValues(string(channel), string(result.Category)).Inc()
		logger.Error("Notification failed",
			zap.String("channel", string(channel)),
			zap.String("message_type", string(req.MessageType)),
			zap.String("recipient", utils.MaskRecipient(rendered.Recipient)),
			zap.String("error_code", result.ErrorCode),
			zap.String("error", result.ErrorMessage),
		)
	}

	if s.recorder != nil {
		s.recorder.Log(ctx, req, rendered, result)
	}

	return Outcome{Rendered: rendered, Result: result}
}
