package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockForecastPurger struct {
	mock.Mock
}

func (m *MockForecastPurger) PurgeOlderThan(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	args := m.Called(ctx, retention, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestForecastPurgeHandler_ProcessTask(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		payload   ForecastPurgePayload
		retention time.Duration
		setupMock func(m *MockForecastPurger)
		expectErr bool
	}{
		{
			name:      "Success - configured retention",
			retention: 24 * time.Hour,
			setupMock: func(m *MockForecastPurger) {
				m.On("PurgeOlderThan", mock.Anything, 24*time.Hour, now).Return(int64(3), nil).Once()
			},
		},
		{
			name:      "Success - payload override",
			payload:   ForecastPurgePayload{RetentionOverride: time.Hour},
			retention: 24 * time.Hour,
			setupMock: func(m *MockForecastPurger) {
				m.On("PurgeOlderThan", mock.Anything, time.Hour, now).Return(int64(0), nil).Once()
			},
		},
		{
			name:      "Skip - zero retention",
			retention: 0,
			setupMock: func(m *MockForecastPurger) {},
		},
		{
			name:      "Fail - repository error",
			retention: time.Hour,
			setupMock: func(m *MockForecastPurger) {
				m.On("PurgeOlderThan", mock.Anything, time.Hour, now).Return(int64(0), errors.New("db down")).Once()
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			purger := new(MockForecastPurger)
			tt.setupMock(purger)

			h := NewForecastPurgeHandler(purger, tt.retention, zap.NewNop())
			h.now = func() time.Time { return now }

			task, err := NewForecastPurgeTask(tt.payload)
			require.NoError(t, err)

			err = h.ProcessTask(context.Background(), task)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			purger.AssertExpectations(t)
		})
	}
}

func TestForecastPurgeHandler_RejectsInvalidTasks(t *testing.T) {
	purger := new(MockForecastPurger)
	h := NewForecastPurgeHandler(purger, time.Hour, zap.NewNop())

	err := h.ProcessTask(context.Background(), asynq.NewTask("other:type", nil))
	assert.Error(t, err)

	err = h.ProcessTask(context.Background(), asynq.NewTask(TypeForecastPurge, []byte("{not json")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	purger.AssertNotCalled(t, "PurgeOlderThan", mock.Anything, mock.Anything, mock.Anything)
}
