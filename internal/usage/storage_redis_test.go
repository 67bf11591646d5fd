package usage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStorage(t *testing.T) *RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)

	storage, err := NewRedisStorage(context.Background(), mr.Addr(), "", 0, "ghpool-test:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestRedisStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newRedisStorage(t)

	stats := NewStats()
	stats.TotalRequests = 7
	stats.Rotations = 2
	stats.tokenUsage("ghp_****aaaa").Requests = 7

	require.NoError(t, storage.Save(ctx, stats))

	loaded, err := storage.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.EqualValues(t, 7, loaded.TotalRequests)
	assert.EqualValues(t, 2, loaded.Rotations)
	assert.EqualValues(t, 7, loaded.Tokens["ghp_****aaaa"].Requests)
}

func TestRedisStorageLoadEmpty(t *testing.T) {
	storage := newRedisStorage(t)

	stats, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestRedisStorageUnreachable(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), "127.0.0.1:1", "", 0, "")
	assert.Error(t, err)
}
