// Package currentstate keeps the stable device id and the push subscription state of an
// installation.
//
// Open wires the repository to the storage configured by RECOMMEND_STATE_* environment
// variables; NewInMemory is meant for hosts which persist nothing and for tests.
package currentstate

import (
	"context"

	"github.com/recommend-sdk/currentstate/internal/identity"
	"github.com/recommend-sdk/currentstate/internal/kvstore"
	"github.com/recommend-sdk/currentstate/internal/legacy"
	"github.com/recommend-sdk/currentstate/internal/repository"
	"github.com/recommend-sdk/currentstate/internal/storefactory"
	"github.com/recommend-sdk/currentstate/internal/utils"
	"github.com/recommend-sdk/currentstate/pkg/fingerprint"
	"github.com/recommend-sdk/currentstate/pkg/model"
)

// Repository reads and saves the current state.
type Repository interface {
	Get(ctx context.Context) (*model.CurrentState, error)
	Save(ctx context.Context, state *model.CurrentState) error
	Reset(ctx context.Context) error
}

// State is a Repository bound to opened storage.
type State struct {
	Repository
	storage *storefactory.Storage
}

// Close releases the storage.
func (s *State) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

// Open creates State over the storage configured in the environment. The provider supplies the
// hardware fingerprint used when no device id exists yet.
func Open(ctx context.Context, provider fingerprint.Provider) (*State, error) {
	config, err := utils.LoadStoreConfig(ctx)
	if err != nil {
		return nil, err
	}
	return openWithConfig(ctx, config, provider)
}

// openWithConfig creates State over the storage described by config.
func openWithConfig(ctx context.Context, config *utils.StoreConfig, provider fingerprint.Provider) (*State, error) {
	storage, err := storefactory.Open(ctx, config)
	if err != nil {
		return nil, err
	}

	var opts []repository.Option
	if storage.Locker != nil {
		opts = append(opts, repository.WithInitLocker(storage.Locker))
	}

	repo := repository.New(
		storage.Store,
		legacy.NewAdapter(storage.Legacy),
		identity.NewSynthesizer(provider),
		opts...,
	)

	return &State{Repository: repo, storage: storage}, nil
}

// NewInMemory creates State kept in process memory only.
func NewInMemory(provider fingerprint.Provider) *State {
	store := kvstore.NewMemoryStore()
	repo := repository.New(store, legacy.NewAdapter(store), identity.NewSynthesizer(provider))
	return &State{Repository: repo}
}
