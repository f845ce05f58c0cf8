package kvstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	"github.com/recommend-sdk/currentstate/internal/logging"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const tableKVEntry = "kv_entry"

// SQLiteStore keeps every namespace as rows of a single kv_entry table in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	logger := logging.FromContext(ctx).Named("kvstore.OpenSQLite")

	// Immediate transactions take the write lock on BEGIN, so the read inside an edit cannot be
	// invalidated by a concurrent writer before commit.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, unavailable("open", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("open", path, err)
	}

	migrationsFS, err := fs.Sub(migrations, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrationsFS)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		_ = db.Close()
		return nil, unavailable("migrate", path, err)
	}
	for _, r := range results {
		logger.Debugf("Applied migration %v", r)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func readNamespace(ctx context.Context, runner sq.BaseRunner, namespace string) (*Snapshot, error) {
	rows, err := sq.Select("key", "value").
		From(tableKVEntry).
		Where(sq.Eq{"namespace": namespace}).
		RunWith(runner).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := map[string]interface{}{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Snapshot{values: values}, nil
}

// Snapshot reads all keys of the namespace with a single query.
func (s *SQLiteStore) Snapshot(ctx context.Context, namespace string) (*Snapshot, error) {
	snapshot, err := readNamespace(ctx, s.db, namespace)
	if err != nil {
		return nil, unavailable("snapshot", namespace, err)
	}
	return snapshot, nil
}

// Edit runs fn inside an immediate transaction and upserts its writes.
func (s *SQLiteStore) Edit(ctx context.Context, namespace string, fn EditFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("edit", namespace, err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	snapshot, err := readNamespace(ctx, tx, namespace)
	if err != nil {
		return unavailable("edit", namespace, err)
	}

	txn := newTxn(snapshot)
	if err := fn(ctx, txn); err != nil {
		return err
	}

	for key, value := range txn.writes {
		_, err := sq.Insert(tableKVEntry).
			Columns("namespace", "key", "value").
			Values(namespace, key, encodeValue(value)).
			Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP").
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return unavailable("edit", namespace, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("edit", namespace, err)
	}

	return nil
}

// Delete drops all keys of a namespace.
func (s *SQLiteStore) Delete(ctx context.Context, namespace string) error {
	_, err := sq.Delete(tableKVEntry).
		Where(sq.Eq{"namespace": namespace}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return unavailable("delete", namespace, err)
	}
	return nil
}
