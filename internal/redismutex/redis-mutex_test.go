package redismutex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	redisclient "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *redisclient.Client {
	addr := os.Getenv("RECOMMEND_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RECOMMEND_TEST_REDIS_ADDR not set")
	}

	client := redisclient.NewClient(&redisclient.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLockExclusive(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	name := fmt.Sprintf("test-lock-%d", time.Now().UnixNano())

	first := New(client, 0)
	second := New(client, 0)

	unlock, err := first.Lock(ctx, name)
	require.NoError(t, err)

	// gives up after its retries while the lock is held
	_, err = second.Lock(ctx, name)
	assert.Error(t, err)

	require.NoError(t, unlock())

	unlock, err = second.Lock(ctx, name)
	require.NoError(t, err)
	assert.NoError(t, unlock())
}

func TestUnlockAfterExpiry(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	name := fmt.Sprintf("test-lock-%d", time.Now().UnixNano())

	unlock, err := New(client, 100*time.Millisecond).Lock(ctx, name)
	require.NoError(t, err)

	time.Sleep(300 * time.Millisecond)

	assert.Error(t, unlock())
}

func TestLockStopsWaitingWhenContextIsDone(t *testing.T) {
	client := newClient(t)
	name := fmt.Sprintf("test-lock-%d", time.Now().UnixNano())

	unlock, err := New(client, 0).Lock(context.Background(), name)
	require.NoError(t, err)
	defer func() { _ = unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = New(client, 0).Lock(ctx, name)

	assert.True(t, errors.Is(err, context.DeadlineExceeded), "unexpected error %v", err)
	assert.Less(t, int64(time.Since(start)), int64(2*time.Second))
}

func TestLockWithCancelledContext(t *testing.T) {
	// never dialed, a cancelled caller does not reach Redis
	client := redisclient.NewClient(&redisclient.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	unlock, err := New(client, 0).Lock(ctx, "test-lock")

	assert.Nil(t, unlock)
	assert.True(t, errors.Is(err, context.Canceled), "unexpected error %v", err)
}
