package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/omriShneor/alfred_line/internal/llm"
)

// MockCompleter is a mock implementation of llm.Completer
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
