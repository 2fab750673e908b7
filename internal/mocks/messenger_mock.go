package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMessenger is a mock implementation of dispatch.Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Reply(ctx context.Context, replyToken, text string) error {
	args := m.Called(ctx, replyToken, text)
	return args.Error(0)
}

func (m *MockMessenger) Push(ctx context.Context, to, text string) error {
	args := m.Called(ctx, to, text)
	return args.Error(0)
}
