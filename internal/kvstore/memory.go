package kvstore

import (
	"context"
	"sync"
)

// MemoryStore keeps namespaces in process memory. Edits are serialized by a single lock.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]interface{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[string]interface{}{}}
}

// Snapshot returns a copy of the namespace.
func (m *MemoryStore) Snapshot(ctx context.Context, namespace string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("snapshot", namespace, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return NewSnapshot(m.data[namespace]), nil
}

// Edit runs fn under the store lock and applies its writes when fn succeeds.
func (m *MemoryStore) Edit(ctx context.Context, namespace string, fn EditFunc) error {
	if err := ctx.Err(); err != nil {
		return unavailable("edit", namespace, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	txn := newTxn(NewSnapshot(m.data[namespace]))
	if err := fn(ctx, txn); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return unavailable("edit", namespace, err)
	}

	if len(txn.writes) == 0 {
		return nil
	}

	ns, ok := m.data[namespace]
	if !ok {
		ns = map[string]interface{}{}
		m.data[namespace] = ns
	}
	for k, v := range txn.writes {
		ns[k] = v
	}

	return nil
}

// Delete drops a namespace.
func (m *MemoryStore) Delete(ctx context.Context, namespace string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete", namespace, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, namespace)
	return nil
}
