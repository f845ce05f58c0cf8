package redismutex

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"github.com/recommend-sdk/currentstate/internal/logging"
)

const (
	defaultExpiry = 30 * time.Second
	lockTries     = 32
	retryDelay    = 100 * time.Millisecond
)

//Locker Mutex manager over Redis, shared by every process using the same Redis.
type Locker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

//New Creates Locker over client. Locks expire after expiry (30s when zero) so a crashed holder
//cannot block initialization forever.
func New(client *redisclient.Client, expiry time.Duration) *Locker {
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	return &Locker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
	}
}

//Lock Acquires the named lock. Gives up after lockTries attempts or when ctx is done.
func (l *Locker) Lock(ctx context.Context, name string) (func() error, error) {
	logger := logging.FromContext(ctx).Named("redismutex.Lock")

	// one try per Lock call, retries are driven here so ctx is checked between them
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(l.expiry), redsync.WithTries(1))

	logger.Debugf("Trying to acquire '%v' exclusive lock", name)

	if err := acquire(ctx, mutex); err != nil {
		return nil, fmt.Errorf("could not acquire lock '%v': %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		if _, unlockErr := mutex.Unlock(); unlockErr != nil {
			logger.Warnf("Could not release '%v' lock of a cancelled caller: %v", name, unlockErr)
		}
		return nil, err
	}

	return func() error {
		ok, err := mutex.Unlock()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lock '%v' expired before release", name)
		}
		return nil
	}, nil
}

func acquire(ctx context.Context, mutex *redsync.Mutex) error {
	timer := time.NewTimer(retryDelay)
	defer timer.Stop()

	for try := 1; ; try++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := mutex.Lock()
		if err == nil {
			return nil
		}
		if try >= lockTries {
			return err
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(retryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
