package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestEnqueueWithRetry(t *testing.T) {
	task := Task{Type: TaskTypeQuery, Payload: []byte(`{}`)}

	tests := []struct {
		name      string
		attempts  int
		setup     func(*MockQueue)
		wantErr   bool
		wantCalls int
	}{
		{
			name:     "first attempt succeeds",
			attempts: 3,
			setup: func(q *MockQueue) {
				q.On("Enqueue", mock.Anything, task).Return(nil).Once()
			},
			wantCalls: 1,
		},
		{
			name:     "succeeds after a failure",
			attempts: 3,
			setup: func(q *MockQueue) {
				q.On("Enqueue", mock.Anything, task).Return(errors.New("unavailable")).Once()
				q.On("Enqueue", mock.Anything, task).Return(nil).Once()
			},
			wantCalls: 2,
		},
		{
			name:     "gives up after all attempts",
			attempts: 3,
			setup: func(q *MockQueue) {
				q.On("Enqueue", mock.Anything, task).Return(errors.New("unavailable")).Times(3)
			},
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name:     "non-positive attempts still tries once",
			attempts: 0,
			setup: func(q *MockQueue) {
				q.On("Enqueue", mock.Anything, task).Return(errors.New("unavailable")).Once()
			},
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockQueue)
			tt.setup(q)

			err := EnqueueWithRetry(context.Background(), q, task, tt.attempts, time.Millisecond)

			if (err != nil) != tt.wantErr {
				t.Errorf("EnqueueWithRetry() error = %v, wantErr %v", err, tt.wantErr)
			}
			q.AssertNumberOfCalls(t, "Enqueue", tt.wantCalls)
			q.AssertExpectations(t)
		})
	}
}

func TestEnqueueWithRetryStopsOnCancel(t *testing.T) {
	q := new(MockQueue)
	q.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("unavailable"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := EnqueueWithRetry(ctx, q, Task{Type: TaskTypeQuery}, 5, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	q.AssertNumberOfCalls(t, "Enqueue", 1)
}

func TestLastAttempt(t *testing.T) {
	assert.False(t, Task{Attempts: 0, MaxAttempts: 3}.LastAttempt())
	assert.True(t, Task{Attempts: 2, MaxAttempts: 3}.LastAttempt())
	assert.True(t, Task{Attempts: 0, MaxAttempts: 1}.LastAttempt())
	assert.False(t, Task{Attempts: 3}.LastAttempt())
	assert.True(t, Task{Attempts: DefaultMaxAttempts - 1}.LastAttempt())
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "rog.tasks.query", subject(TaskTypeQuery))
}
