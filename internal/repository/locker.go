package repository

import (
	"context"
	"sync"
)

//Locker Exclusive named lock. The returned function releases it.
type Locker interface {
	Lock(ctx context.Context, name string) (unlock func() error, err error)
}

//LocalLocker In-process Locker.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

//NewLocalLocker Creates LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]chan struct{}{}}
}

func (l *LocalLocker) slot(name string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[name] = ch
	}
	return ch
}

//Lock Waits for the lock or for ctx to be done.
func (l *LocalLocker) Lock(ctx context.Context, name string) (func() error, error) {
	ch := l.slot(name)

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}
