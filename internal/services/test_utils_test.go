package services

import (
	"context"
	"sync"

	"clinic-automation/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockLogStore struct {
	mock.Mock
}

func (m *MockLogStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockLogStore) AppendDeliveryLog(ctx context.Context, entry *models.DeliveryLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLogStore) ListDeliveryLogs(ctx context.Context, limit, offset int) ([]*models.DeliveryLogEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DeliveryLogEntry), args.Error(1)
}

// stubSender records every call and answers with a fixed id or error
type stubSender struct {
	mu    sync.Mutex
	calls []string
	id    string
	err   error
	panic bool
}

func (s *stubSender) Send(_ context.Context, recipient, body string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, recipient)
	s.mu.Unlock()
	if s.panic {
		panic("boom")
	}
	return s.id, s.err
}

func (s *stubSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
