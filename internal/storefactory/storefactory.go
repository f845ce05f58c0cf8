// Package storefactory assembles the storage chosen by StoreConfig.
package storefactory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/recommend-sdk/currentstate/internal/firebase"
	"github.com/recommend-sdk/currentstate/internal/kvstore"
	"github.com/recommend-sdk/currentstate/internal/legacy"
	"github.com/recommend-sdk/currentstate/internal/logging"
	"github.com/recommend-sdk/currentstate/internal/realtimedb"
	"github.com/recommend-sdk/currentstate/internal/redismutex"
	"github.com/recommend-sdk/currentstate/internal/repository"
	"github.com/recommend-sdk/currentstate/internal/utils"
)

//Storage Backing store with its legacy reader and optional initialization lock.
type Storage struct {
	Store  kvstore.Store
	Legacy kvstore.Reader
	Locker repository.Locker

	closers []func() error
}

//Close Releases backend connections. Every closer runs; all failures are returned together.
func (s *Storage) Close() error {
	var result *multierror.Error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

//Open Creates storage according to config.
func Open(ctx context.Context, config *utils.StoreConfig) (*Storage, error) {
	logger := logging.FromContext(ctx).Named("storefactory.Open")

	storage := &Storage{}

	switch config.Backend {
	case utils.BackendMemory:
		storage.Store = kvstore.NewMemoryStore()

	case utils.BackendSQLite:
		store, err := kvstore.OpenSQLite(ctx, config.SQLitePath)
		if err != nil {
			return nil, err
		}
		storage.Store = store
		storage.closers = append(storage.closers, store.Close)

	case utils.BackendRedis:
		client, err := kvstore.DialRedis(ctx, config.RedisAddr, config.RedisDB)
		if err != nil {
			return nil, err
		}
		storage.Store = kvstore.NewRedisStore(client, config.RedisKeyPrefix)
		storage.closers = append(storage.closers, client.Close)
		if config.InitLock {
			storage.Locker = redismutex.New(client, 0)
		}

	case utils.BackendFirestore:
		client, err := firebase.NewFirestoreClient(ctx, firebase.Config{
			ProjectID:       config.FirestoreProjectID,
			CredentialsFile: config.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		storage.Store = kvstore.NewFirestoreStore(client, config.FirestoreCollection)
		storage.closers = append(storage.closers, client.Close)

	case utils.BackendRealtimeDB:
		client, err := firebase.NewDatabaseClient(ctx, firebase.Config{
			ProjectID:       config.FirestoreProjectID,
			DatabaseURL:     config.RealtimeDBURL,
			CredentialsFile: config.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		storage.Store = kvstore.NewRealtimeDBStore(realtimedb.NewClient(client), config.RealtimeDBRoot)

	default:
		return nil, fmt.Errorf("unknown backend %q", config.Backend)
	}

	// Without a preferences directory the legacy id is looked up in the backing store itself.
	if config.LegacyPrefsDir != "" {
		storage.Legacy = legacy.SharedPreferencesDir{Dir: config.LegacyPrefsDir}
	} else {
		storage.Legacy = storage.Store
	}

	logger.Infof("Using %v backend", config.Backend)

	return storage, nil
}
