package handlers

import (
	"context"

	"clinic-automation/internal/content"
	"clinic-automation/internal/models"
	"clinic-automation/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockNotificationService is a mock implementation of NotificationServiceInterface
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, channel models.Channel, req models.MessageRequest) services.Outcome {
	args := m.Called(ctx, channel, req)
	return args.Get(0).(services.Outcome)
}

func (m *MockNotificationService) Preview(channel models.Channel, req models.MessageRequest) models.RenderedMessage {
	args := m.Called(channel, req)
	return args.Get(0).(models.RenderedMessage)
}

func (m *MockNotificationService) Enabled(channel models.Channel) bool {
	args := m.Called(channel)
	return args.Bool(0)
}

// MockContentGenerator is a mock implementation of ContentGeneratorInterface
type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) Generate(ctx context.Context, req content.Request) (*content.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Result), args.Error(1)
}

// MockLogReader is a mock implementation of DeliveryLogReaderInterface
type MockLogReader struct {
	mock.Mock
}

func (m *MockLogReader) Recent(ctx context.Context, limit, offset int) ([]*models.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeliveryLogEntry), args.Error(1)
}
