package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateQuery(ctx context.Context, model, prompt string) (Query, error) {
	args := m.Called(ctx, model, prompt)
	return args.Get(0).(Query), args.Error(1)
}

func (m *MockStore) GetQuery(ctx context.Context, id uuid.UUID) (Query, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Query), args.Error(1)
}

func (m *MockStore) CompleteQuery(ctx context.Context, id uuid.UUID, result string) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockStore) FailQuery(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockStore) SaveReport(ctx context.Context, report Report) (Report, error) {
	args := m.Called(ctx, report)
	return args.Get(0).(Report), args.Error(1)
}

func (m *MockStore) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Report), args.Error(1)
}
