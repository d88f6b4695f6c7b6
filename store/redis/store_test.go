package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate"
	"github.com/xraph/digigate/store/redis"
)

func setupStore(t *testing.T, prefix string) (*redis.Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := redis.Open(context.Background(), redis.Config{Addr: mr.Addr(), KeyPrefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t, "")

	require.NoError(t, s.Set(ctx, "user_usage:u1", []byte(`{"totalDownloads":2}`)))

	got, err := s.Get(ctx, "user_usage:u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalDownloads":2}`, string(got))
}

func TestGetMissing(t *testing.T) {
	s, _ := setupStore(t, "")

	_, err := s.Get(context.Background(), "user_usage:nobody")
	assert.ErrorIs(t, err, digigate.ErrRecordNotFound)
	assert.True(t, digigate.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t, "")

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, digigate.ErrRecordNotFound)
}

func TestKeyPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, "app:")

	require.NoError(t, s.Set(ctx, "user_subscription:u1", []byte(`{}`)))

	assert.True(t, mr.Exists("app:user_subscription:u1"))
	assert.False(t, mr.Exists("user_subscription:u1"))
}

func TestOpenFailsWithoutServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = redis.Open(context.Background(), redis.Config{Addr: addr})
	assert.Error(t, err)
}

func TestClosedStore(t *testing.T) {
	s, _ := setupStore(t, "")
	require.NoError(t, s.Close())

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, digigate.ErrStoreClosed)
}
