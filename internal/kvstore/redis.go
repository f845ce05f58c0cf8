package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	redisclient "github.com/go-redis/redis/v8"
	"github.com/recommend-sdk/currentstate/internal/logging"
)

const redisEditAttempts = 10

// RedisStore keeps each namespace in one Redis hash.
type RedisStore struct {
	client    redisclient.UniversalClient
	keyPrefix string
}

// DialRedis connects to Redis and verifies the connection.
func DialRedis(ctx context.Context, addr string, db int) (*redisclient.Client, error) {
	logger := logging.FromContext(ctx).Named("kvstore.DialRedis")

	logger.Debugf("Connecting to Redis at %v", addr)

	client := redisclient.NewClient(&redisclient.Options{
		Addr: addr,
		DB:   db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, unavailable("connect", addr, fmt.Errorf("connection to Redis failed: %w", err))
	}

	logger.Debugf("Connected to Redis at %v", addr)

	return client, nil
}

// NewRedisStore creates a store over client. Hash keys are prefixed with keyPrefix.
func NewRedisStore(client redisclient.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStore) key(namespace string) string {
	return r.keyPrefix + namespace
}

func hashToSnapshot(values map[string]string) *Snapshot {
	converted := make(map[string]interface{}, len(values))
	for k, v := range values {
		converted[k] = v
	}
	return &Snapshot{values: converted}
}

// Snapshot reads the whole hash with HGETALL.
func (r *RedisStore) Snapshot(ctx context.Context, namespace string) (*Snapshot, error) {
	values, err := r.client.HGetAll(ctx, r.key(namespace)).Result()
	if err != nil {
		return nil, unavailable("snapshot", namespace, err)
	}
	return hashToSnapshot(values), nil
}

// Edit watches the hash, runs fn on its content and writes the result in MULTI/EXEC. When
// another client modifies the hash in between, the whole edit is run again.
func (r *RedisStore) Edit(ctx context.Context, namespace string, fn EditFunc) error {
	logger := logging.FromContext(ctx).Named("kvstore.RedisStore.Edit")
	key := r.key(namespace)

	var fnErr error

	attempt := func() error {
		fnErr = nil

		return r.client.Watch(ctx, func(tx *redisclient.Tx) error {
			values, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}

			txn := newTxn(hashToSnapshot(values))
			if fnErr = fn(ctx, txn); fnErr != nil {
				return fnErr
			}

			if len(txn.writes) == 0 {
				return nil
			}

			fields := make([]interface{}, 0, 2*len(txn.writes))
			for k, v := range txn.writes {
				fields = append(fields, k, encodeValue(v))
			}

			_, err = tx.TxPipelined(ctx, func(pipe redisclient.Pipeliner) error {
				pipe.HSet(ctx, key, fields...)
				return nil
			})
			return err
		}, key)
	}

	err := retry.Do(
		attempt,
		retry.Attempts(redisEditAttempts),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, redisclient.TxFailedErr)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Debugf("Concurrent modification of %v, retrying edit (%v)", key, n)
		}),
	)

	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return unavailable("edit", namespace, err)
	}

	return nil
}

// Delete removes the namespace hash.
func (r *RedisStore) Delete(ctx context.Context, namespace string) error {
	if err := r.client.Del(ctx, r.key(namespace)).Err(); err != nil {
		return unavailable("delete", namespace, err)
	}
	return nil
}
