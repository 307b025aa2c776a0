package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// stubClient implements redisClient over a map and records TTLs.
type stubClient struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	pingErr error
	opErr   error
	closed  bool
}

func newStubClient() *stubClient {
	return &stubClient{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *stubClient) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", s.pingErr)
}

func (s *stubClient) Get(ctx context.Context, key string) *redis.StringCmd {
	if s.opErr != nil {
		return redis.NewStringResult("", s.opErr)
	}
	v, ok := s.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (s *stubClient) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if s.opErr != nil {
		return redis.NewStatusResult("", s.opErr)
	}
	s.data[key] = value.([]byte)
	s.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (s *stubClient) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	if s.opErr != nil {
		return redis.NewBoolResult(false, s.opErr)
	}
	if _, ok := s.data[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	s.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (s *stubClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, s.opErr)
}

func (s *stubClient) Close() error {
	s.closed = true
	return nil
}

// useStub swaps redisNewClient for the duration of the test.
func useStub(t *testing.T, stub *stubClient, opts **redis.Options) {
	t.Helper()
	orig := redisNewClient
	redisNewClient = func(o *redis.Options) redisClient {
		if opts != nil {
			*opts = o
		}
		return stub
	}
	t.Cleanup(func() { redisNewClient = orig })
}

func TestNewRedisStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var opts *redis.Options
		useStub(t, newStubClient(), &opts)

		s, err := NewRedisStore(context.Background(), RedisConfig{Addr: "127.0.0.1:6379", Password: "secret", DB: 2})
		require.NoError(t, err)
		require.Equal(t, DefaultKeyPrefix, s.prefix)
		require.Equal(t, "127.0.0.1:6379", opts.Addr)
		require.Equal(t, "secret", opts.Password)
		require.Equal(t, 2, opts.DB)
	})

	t.Run("ping fail closes client", func(t *testing.T) {
		stub := newStubClient()
		stub.pingErr = errors.New("connection refused")
		useStub(t, stub, nil)

		s, err := NewRedisStore(context.Background(), RedisConfig{Addr: "addr"})
		require.Error(t, err)
		require.Nil(t, s)
		require.True(t, stub.closed)
	})
}

func TestRedisStore_Operations(t *testing.T) {
	stub := newStubClient()
	useStub(t, stub, nil)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, RedisConfig{Addr: "addr", KeyPrefix: "test:"})
	require.NoError(t, err)

	_, err = s.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "abc", []byte(`{"id":"abc"}`), 30*time.Minute))
	require.Equal(t, 30*time.Minute, stub.ttls["test:abc"])

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, `{"id":"abc"}`, string(got))

	require.NoError(t, s.Touch(ctx, "abc", time.Hour))
	require.Equal(t, time.Hour, stub.ttls["test:abc"])
	require.ErrorIs(t, s.Touch(ctx, "missing", time.Hour), ErrNotFound)

	require.NoError(t, s.Delete(ctx, "abc"))
	_, err = s.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Close())
	require.True(t, stub.closed)
}

func TestRedisStore_Errors(t *testing.T) {
	stub := newStubClient()
	useStub(t, stub, nil)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, RedisConfig{Addr: "addr"})
	require.NoError(t, err)

	stub.opErr = errors.New("i/o timeout")

	_, err = s.Get(ctx, "x")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Error(t, s.Set(ctx, "x", []byte("v"), time.Minute))
	err = s.Touch(ctx, "x", time.Minute)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Error(t, s.Delete(ctx, "x"))
}
