package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("PARKING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PARKING_TEST_REDIS_ADDR not set")
	}

	client, err := NewClient(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestLockerExcludesSecondHolder(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	key := "vehicle:TEST-" + time.Now().Format("150405.000000")

	first := NewLocker(client, time.Second, 100*time.Millisecond)
	unlock, err := first.Lock(ctx, key)
	require.NoError(t, err)

	_, err = first.Lock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	unlock()
	unlock()

	unlock, err = first.Lock(ctx, key)
	require.NoError(t, err)
	unlock()

	exists, err := client.Exists(ctx, KeyLock(key)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestLockerLeavesForeignLock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	key := "spots:TEST-" + time.Now().Format("150405.000000")

	locker := NewLocker(client, 50*time.Millisecond, time.Second)
	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	// Let the lock expire and someone else take it.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, client.Set(ctx, KeyLock(key), "other", time.Second).Err())

	unlock()

	value, err := client.Get(ctx, KeyLock(key)).Result()
	require.NoError(t, err)
	assert.Equal(t, "other", value)

	require.NoError(t, client.Del(ctx, KeyLock(key)).Err())
}

func TestKeyLock(t *testing.T) {
	assert.Equal(t, "parking:v1:lock:vehicle:AB-1", KeyLock("vehicle:AB-1"))
}
