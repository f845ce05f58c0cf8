package kvstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Runs against a real Redis only when RECOMMEND_TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("RECOMMEND_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RECOMMEND_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := DialRedis(ctx, addr, 0)
	require.NoError(t, err)
	defer client.Close()

	prefix := fmt.Sprintf("test-%d:", time.Now().UnixNano())
	store := NewRedisStore(client, prefix)
	t.Cleanup(func() {
		for _, ns := range []string{"CONTRACT", "CONCURRENT"} {
			_ = store.Delete(ctx, ns)
		}
	})

	testStoreContract(t, store)
}

func TestDialRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := DialRedis(ctx, "127.0.0.1:1", 0)
	assertUnavailable(t, err)
}
