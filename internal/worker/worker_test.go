package worker

import (
	"context"
	"testing"
	"time"

	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type noopPurger struct{}

func (noopPurger) PurgeOlderThan(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	return 0, nil
}

func testConfig(schedule string) *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{Addr: "localhost:6379"},
		Worker: config.WorkerConfig{
			Enabled:           true,
			Concurrency:       2,
			PurgeSchedule:     schedule,
			ForecastRetention: 24 * time.Hour,
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		schedule  string
		expectErr bool
	}{
		{name: "every interval", schedule: "@every 1h"},
		{name: "cron expression", schedule: "0 3 * * *"},
		{name: "invalid schedule", schedule: "whenever", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(testConfig(tt.schedule), noopPurger{}, zap.NewNop())
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, w.server)
			assert.NotNil(t, w.scheduler)
		})
	}
}

func TestRedisConnOpt(t *testing.T) {
	opt := RedisConnOpt(&config.RedisConfig{Addr: "redis:6379", Password: "secret", DB: 3})
	assert.Equal(t, "redis:6379", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 3, opt.DB)
}

func TestAsynqLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewAsynqLoggerAdapter(zap.New(core))

	adapter.Debug("debug ", 1)
	adapter.Info("info")
	adapter.Warn("warn")
	adapter.Error("error")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, "debug 1", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}
