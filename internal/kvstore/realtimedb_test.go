package kvstore

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"firebase.google.com/go/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jsonNode struct {
	data []byte
}

func (n jsonNode) Unmarshal(v interface{}) error {
	return json.Unmarshal(n.data, v)
}

// mockRealtimeDB keeps nodes as JSON documents, like the Realtime DB REST API returns them.
type mockRealtimeDB struct {
	mu    sync.Mutex
	nodes map[string][]byte
}

func newMockRealtimeDB() *mockRealtimeDB {
	return &mockRealtimeDB{nodes: map[string][]byte{}}
}

func (m *mockRealtimeDB) node(path string) []byte {
	if data, ok := m.nodes[path]; ok {
		return data
	}
	return []byte("null")
}

func (m *mockRealtimeDB) Get(ctx context.Context, path string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return json.Unmarshal(m.node(path), v)
}

func (m *mockRealtimeDB) RunTransaction(ctx context.Context, path string, f db.UpdateFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	value, err := f(jsonNode{data: m.node(path)})
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.nodes[path] = data
	return nil
}

func (m *mockRealtimeDB) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.nodes, path)
	return nil
}

func TestRealtimeDBStore(t *testing.T) {
	testStoreContract(t, NewRealtimeDBStore(newMockRealtimeDB(), "recommend_state"))
}

func TestRealtimeDBStoreLayout(t *testing.T) {
	ctx := context.Background()
	mock := newMockRealtimeDB()
	store := NewRealtimeDBStore(mock, "recommend_state")

	require.NoError(t, store.Edit(ctx, "NS", func(ctx context.Context, txn *Txn) error {
		txn.Set("device_id", "ABC")
		txn.Set("is_first_launch", true)
		txn.Set("first_subscribed_date", int64(18500))
		return nil
	}))

	assert.JSONEq(t,
		`{"device_id":"ABC","is_first_launch":"true","first_subscribed_date":"18500"}`,
		string(mock.nodes["recommend_state/NS"]))

	require.NoError(t, store.Delete(ctx, "NS"))
	snapshot, err := store.Snapshot(ctx, "NS")
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Len())
}
