package utils

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homeserve/services/scheduling"
)

var _ scheduling.Locker = (*RedisLocker)(nil)

// Runs only when REDIS_TEST_ADDR points at a live Redis.
func newTestRedisLocker(t *testing.T, ttl time.Duration) *RedisLocker {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := NewRedisClient(addr, "", 15)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl, zap.NewNop())
}

func TestRedisLockerSerializes(t *testing.T) {
	locker := newTestRedisLocker(t, 5*time.Second)
	key := "test:" + uuid.New().String()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			unlock, err := locker.Lock(ctx, key)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestRedisLockerContextTimeout(t *testing.T) {
	locker := newTestRedisLocker(t, 5*time.Second)
	key := "test:" + uuid.New().String()

	unlock, err := locker.Lock(context.Background(), key)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLockerLeaseExpires(t *testing.T) {
	locker := newTestRedisLocker(t, 200*time.Millisecond)
	key := "test:" + uuid.New().String()

	stale, err := locker.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	// The expired holder must not delete the new holder's lease.
	stale()
	held, err := locker.client.Exists(ctx, LockKeyPrefix+key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), held)
	unlock()
}

func TestNewRedisLockerDefaults(t *testing.T) {
	l := NewRedisLocker(nil, 0, nil)
	assert.Equal(t, DefaultLockTTL, l.ttl)
	assert.NotNil(t, l.logger)
}
