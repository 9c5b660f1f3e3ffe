package queue

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockQueue records query tasks handed to the queue. Tests set expectations on
// Enqueue to check what the gateway publishes, and on Worker to stub a
// worker's blocking subscription.
type MockQueue struct {
	mock.Mock
}

// Enqueue records task and returns the stubbed publish error.

func (m *MockQueue) Enqueue(ctx context.Context, task Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// Worker returns the stubbed error immediately and never calls handler.
func (m *MockQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	args := m.Called(ctx, taskType, handler)
	return args.Error(0)
}
