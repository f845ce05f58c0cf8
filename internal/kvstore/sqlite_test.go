package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLiteStore, string) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, path
}

func TestSQLiteStore(t *testing.T) {
	store, _ := openTestSQLite(t)
	testStoreContract(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store, path := openTestSQLite(t)

	require.NoError(t, store.Edit(ctx, "NS", func(ctx context.Context, txn *Txn) error {
		txn.Set("device_id", "ABC")
		txn.Set("is_first_launch", false)
		txn.Set("first_subscribed_date", int64(19000))
		return nil
	}))
	require.NoError(t, store.Close())

	// migrations are applied only once
	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	snapshot, err := reopened.Snapshot(ctx, "NS")
	require.NoError(t, err)

	id, _ := snapshot.String("device_id")
	assert.Equal(t, "ABC", id)
	first, ok := snapshot.Bool("is_first_launch")
	assert.True(t, ok)
	assert.False(t, first)
	date, ok := snapshot.Int("first_subscribed_date")
	assert.True(t, ok)
	assert.Equal(t, int64(19000), date)
}

func TestSQLiteStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestSQLite(t)

	for _, ns := range []string{"A", "B"} {
		require.NoError(t, store.Edit(ctx, ns, func(ctx context.Context, txn *Txn) error {
			txn.Set("k", "v")
			return nil
		}))
	}

	require.NoError(t, store.Delete(ctx, "A"))

	a, err := store.Snapshot(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())

	b, err := store.Snapshot(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestSQLiteStoreClosed(t *testing.T) {
	store, _ := openTestSQLite(t)
	require.NoError(t, store.Close())

	_, err := store.Snapshot(context.Background(), "NS")
	assert.Error(t, err)
	assertUnavailable(t, err)
}
