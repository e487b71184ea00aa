package services

import (
	"context"

	"clinic-automation/internal/db"
	"clinic-automation/internal/metrics"
	"clinic-automation/internal/models"
	"clinic-automation/pkg/logger"
	"clinic-automation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeliveryLogger records dispatch attempts in the delivery log. Writes are
// best-effort: failures are logged and counted, never returned.
type DeliveryLogger struct {
	store db.DeliveryLogStore
	newID func() string
}

// NewDeliveryLogger creates a delivery logger. A nil store disables logging.
func NewDeliveryLogger(store db.DeliveryLogStore) *DeliveryLogger {
	return &DeliveryLogger{store: store, newID: uuid.NewString}
}

// Log appends one entry for the attempt described by req, rendered and result
func (l *DeliveryLogger) Log(ctx context.Context, req models.MessageRequest, rendered models.RenderedMessage, result models.DeliveryResult) {
	if l == nil || l.store == nil {
		return
	}

	entry := models.NewDeliveryLogEntry(l.newID(), req, rendered, result)
	if err := l.store.AppendDeliveryLog(ctx, entry); err != nil {
		metrics.DeliveryLogFailures.Inc()
		logger.Warn("Failed to write delivery log",
			zap.String("log_id", entry.ID),
			zap.String("channel", string(entry.Channel)),
			zap.String("recipient", utils.MaskRecipient(entry.Recipient)),
			zap.Error(err),
		)
		return
	}

	logger.Debug("Delivery logged",
		zap.String("log_id", entry.ID),
		zap.String("status", entry.Status),
	)
}

// Recent returns the newest delivery log entries
func (l *DeliveryLogger) Recent(ctx context.Context, limit, offset int) ([]*models.DeliveryLogEntry, error) {
	if l == nil || l.store == nil {
		return []*models.DeliveryLogEntry{}, nil
	}
	return l.store.ListDeliveryLogs(ctx, limit, offset)
}
