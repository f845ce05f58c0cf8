package kvstore

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps each namespace as one document of a collection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a store over documents of collection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (f *FirestoreStore) doc(namespace string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(namespace)
}

func documentToSnapshot(snap *firestore.DocumentSnapshot, err error) (*Snapshot, error) {
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return NewSnapshot(nil), nil
		}
		return nil, err
	}
	return &Snapshot{values: snap.Data()}, nil
}

// Snapshot reads the namespace document. A missing document is an empty snapshot.
func (f *FirestoreStore) Snapshot(ctx context.Context, namespace string) (*Snapshot, error) {
	snapshot, err := documentToSnapshot(f.doc(namespace).Get(ctx))
	if err != nil {
		return nil, unavailable("snapshot", namespace, err)
	}
	return snapshot, nil
}

// Edit runs fn in a Firestore transaction and merges the writes into the document.
func (f *FirestoreStore) Edit(ctx context.Context, namespace string, fn EditFunc) error {
	doc := f.doc(namespace)

	var fnErr error

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		fnErr = nil

		snapshot, err := documentToSnapshot(tx.Get(doc))
		if err != nil {
			return err
		}

		txn := newTxn(snapshot)
		if fnErr = fn(ctx, txn); fnErr != nil {
			return fnErr
		}

		if len(txn.writes) == 0 {
			return nil
		}

		return tx.Set(doc, txn.writes, firestore.MergeAll)
	})

	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return unavailable("edit", namespace, err)
	}

	return nil
}

// Delete removes the namespace document.
func (f *FirestoreStore) Delete(ctx context.Context, namespace string) error {
	if _, err := f.doc(namespace).Delete(ctx); err != nil {
		return unavailable("delete", namespace, err)
	}
	return nil
}
