package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Disabled(t *testing.T) {
	client, err := NewRedisClient(&Options{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	// 端口 1 上不会有 Redis
	client, err := NewRedisClient(&Options{Host: "127.0.0.1", Port: 1, DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewRedisClient(&Options{Host: mr.Host(), Port: port, PoolSize: 3})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, 3, client.Options().PoolSize)
}

func TestOptions_Defaults(t *testing.T) {
	opts := (&Options{Host: "cache", Port: 6380, IOTimeout: 100 * time.Millisecond}).redisOptions()
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, 100*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 100*time.Millisecond, opts.WriteTimeout)
}
