// Package kvstore is the transactional key-value storage the current state is persisted in.
//
// Data is grouped in namespaces. A namespace is read as a consistent point-in-time Snapshot and
// modified through Edit, which commits all writes of one call atomically.
package kvstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/recommend-sdk/currentstate/internal/utils/errors"
)

// Reader reads point-in-time snapshots of a namespace.
type Reader interface {
	Snapshot(ctx context.Context, namespace string) (*Snapshot, error)
}

// Store is a Reader which can also run atomic edits.
type Store interface {
	Reader
	// Edit runs fn and commits the writes buffered in txn as a single unit. An error returned by
	// fn aborts the edit and is returned unchanged; nothing is written.
	Edit(ctx context.Context, namespace string, fn EditFunc) error
	// Delete drops every key of the namespace.
	Delete(ctx context.Context, namespace string) error
}

// EditFunc is the body of an edit transaction.
type EditFunc func(ctx context.Context, txn *Txn) error

// Snapshot is an immutable view of a namespace. Values are string, bool or int64; backends
// which store text hand over strings and the typed getters parse them.
type Snapshot struct {
	values map[string]interface{}
}

// NewSnapshot wraps values. The map is copied.
func NewSnapshot(values map[string]interface{}) *Snapshot {
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Snapshot{values: copied}
}

// Len returns number of keys in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.values)
}

// Has reports whether key is present, regardless of its type.
func (s *Snapshot) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// String returns the string stored under key.
func (s *Snapshot) String(key string) (string, bool) {
	switch v := s.values[key].(type) {
	case string:
		return v, true
	default:
		return "", false
	}
}

// Bool returns the bool stored under key.
func (s *Snapshot) Bool(key string) (bool, bool) {
	switch v := s.values[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

// Int returns the integer stored under key.
func (s *Snapshot) Int(key string) (int64, bool) {
	switch v := s.values[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Txn is the state of one edit: the snapshot read inside the transaction plus buffered writes.
type Txn struct {
	*Snapshot
	writes map[string]interface{}
}

func newTxn(snapshot *Snapshot) *Txn {
	return &Txn{Snapshot: snapshot, writes: map[string]interface{}{}}
}

// Set buffers a write. Only string, bool and int64 values are accepted.
func (t *Txn) Set(key string, value interface{}) {
	switch value.(type) {
	case string, bool, int64:
		t.writes[key] = value
	default:
		panic(fmt.Sprintf("kvstore: unsupported value type %T for key %q", value, key))
	}
}

// encodeValue renders a value for text based backends.
func encodeValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func unavailable(op string, namespace string, err error) error {
	return &errors.StorageUnavailableError{
		Msg: fmt.Sprintf("%s of namespace %v failed", op, namespace),
		Err: err,
	}
}
