package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestAsynqRedisOpt(t *testing.T) {
	opt, err := AsynqRedisOpt("redis://:secret@localhost:6380/2")
	require.NoError(t, err)
	client, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	require.Equal(t, "localhost:6380", client.Addr)
	require.Equal(t, 2, client.DB)

	_, err = AsynqRedisOpt("http://nope")
	require.Error(t, err)
}

func TestConnectRedisRetriesUntilReady(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0", time.Second, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestConnectRedisGivesUp(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "redis://127.0.0.1:1/0", 200*time.Millisecond, zerolog.Nop())
	require.Error(t, err)
}

func TestNewValidator(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	v := NewValidator()
	require.Error(t, v.Struct(payload{}))
	require.NoError(t, v.Struct(payload{Name: "x"}))
}
