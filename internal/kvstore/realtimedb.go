package kvstore

import (
	"context"

	"firebase.google.com/go/db"
	"github.com/recommend-sdk/currentstate/internal/realtimedb"
)

// RealtimeDBStore keeps each namespace as one node under root. Values are stored as strings.
type RealtimeDBStore struct {
	client realtimedb.RealtimeDB
	root   string
}

// NewRealtimeDBStore creates a store over nodes under root.
func NewRealtimeDBStore(client realtimedb.RealtimeDB, root string) *RealtimeDBStore {
	return &RealtimeDBStore{client: client, root: root}
}

func (r *RealtimeDBStore) path(namespace string) string {
	return r.root + "/" + namespace
}

// Snapshot reads the namespace node. A missing node is an empty snapshot.
func (r *RealtimeDBStore) Snapshot(ctx context.Context, namespace string) (*Snapshot, error) {
	var values map[string]interface{}
	if err := r.client.Get(ctx, r.path(namespace), &values); err != nil {
		return nil, unavailable("snapshot", namespace, err)
	}
	return &Snapshot{values: nodeValues(values)}, nil
}

func nodeValues(values map[string]interface{}) map[string]interface{} {
	if values == nil {
		return map[string]interface{}{}
	}
	return values
}

// Edit runs fn in a Realtime DB transaction. The transaction is rerun by the client when the node
// changed on the server, so fn may be called more than once.
func (r *RealtimeDBStore) Edit(ctx context.Context, namespace string, fn EditFunc) error {
	var fnErr error

	err := r.client.RunTransaction(ctx, r.path(namespace), func(node db.TransactionNode) (interface{}, error) {
		fnErr = nil

		var values map[string]interface{}
		if err := node.Unmarshal(&values); err != nil {
			return nil, err
		}
		values = nodeValues(values)

		txn := newTxn(&Snapshot{values: values})
		if fnErr = fn(ctx, txn); fnErr != nil {
			return nil, fnErr
		}

		merged := make(map[string]interface{}, len(values)+len(txn.writes))
		for k, v := range values {
			merged[k] = v
		}
		for k, v := range txn.writes {
			merged[k] = encodeValue(v)
		}
		return merged, nil
	})

	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return unavailable("edit", namespace, err)
	}

	return nil
}

// Delete removes the namespace node.
func (r *RealtimeDBStore) Delete(ctx context.Context, namespace string) error {
	if err := r.client.Delete(ctx, r.path(namespace)); err != nil {
		return unavailable("delete", namespace, err)
	}
	return nil
}
