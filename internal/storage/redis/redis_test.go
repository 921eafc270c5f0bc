package redis

import (
	"context"
	"testing"

	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewOptions(t *testing.T) {
	opts := newOptions(&config.RedisConfig{Addr: "cache:6379", Password: "pw", DB: 2})

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, clientName, opts.ClientName)
	assert.Equal(t, dialTimeout, opts.DialTimeout)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	client, err := NewRedisClient(context.Background(), &config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1/0 unreachable")
}
