package inference

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, model, prompt string) (CompletionResult, error) {
	args := m.Called(ctx, model, prompt)
	return args.Get(0).(CompletionResult), args.Error(1)
}
