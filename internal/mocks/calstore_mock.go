package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCalendarStore is a mock implementation of calstore.Store
type MockCalendarStore struct {
	mock.Mock
}

func (m *MockCalendarStore) Save(ctx context.Context, payload []byte, eventCount int) (string, error) {
	args := m.Called(ctx, payload, eventCount)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarStore) Load(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
