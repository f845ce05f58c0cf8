// Package repository persists the current state of the installation.
package repository

import (
	"context"
	ers "errors"
	"sort"

	"github.com/recommend-sdk/currentstate/internal/constants"
	"github.com/recommend-sdk/currentstate/internal/kvstore"
	"github.com/recommend-sdk/currentstate/internal/logging"
	"github.com/recommend-sdk/currentstate/internal/utils/errors"
	"github.com/recommend-sdk/currentstate/pkg/model"
)

//LegacyReader Source of a device id issued by an older SDK.
type LegacyReader interface {
	ReadLegacyID(ctx context.Context) (model.Optional[string], error)
}

//IdentitySource Derives a new device id.
type IdentitySource interface {
	Synthesize(ctx context.Context) (string, error)
}

//CurrentStateRepository Reads and partially updates the current state record.
type CurrentStateRepository struct {
	store       kvstore.Store
	legacy      LegacyReader
	synthesizer IdentitySource
	locker      Locker
}

//Option Repository option.
type Option func(*CurrentStateRepository)

//WithInitLocker Serializes device id initialization through locker.
func WithInitLocker(locker Locker) Option {
	return func(r *CurrentStateRepository) {
		r.locker = locker
	}
}

//New Creates repository persisting into store.
func New(store kvstore.Store, legacy LegacyReader, synthesizer IdentitySource, opts ...Option) *CurrentStateRepository {
	r := &CurrentStateRepository{
		store:       store,
		legacy:      legacy,
		synthesizer: synthesizer,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

//Get Returns the persisted state. On first use the device id is migrated from the legacy store
//or synthesized, and the fresh state is persisted.
func (r *CurrentStateRepository) Get(ctx context.Context) (*model.CurrentState, error) {
	logger := logging.FromContext(ctx).Named("repository.Get")

	snapshot, err := r.store.Snapshot(ctx, constants.NamespaceCurrentState)
	if err != nil {
		return nil, err
	}

	if state, ok := stateFromSnapshot(snapshot); ok {
		return state, nil
	}

	logger.Debug("No device id on record, initializing current state")

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, constants.LockInitialization)
		if err != nil {
			return nil, &errors.StorageUnavailableError{Msg: "could not acquire initialization lock", Err: err}
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warnf("Could not release initialization lock: %v", err)
			}
		}()

		// another holder of the lock may have finished initialization meanwhile
		snapshot, err = r.store.Snapshot(ctx, constants.NamespaceCurrentState)
		if err != nil {
			return nil, err
		}
		if state, ok := stateFromSnapshot(snapshot); ok {
			return state, nil
		}
	}

	deviceID, err := r.resolveDeviceID(ctx)
	if err != nil {
		return nil, err
	}

	return r.initialize(ctx, model.NewCurrentState(deviceID))
}

func (r *CurrentStateRepository) resolveDeviceID(ctx context.Context) (string, error) {
	logger := logging.FromContext(ctx).Named("repository.resolveDeviceID")

	if r.legacy != nil {
		legacyID, err := r.legacy.ReadLegacyID(ctx)
		if err != nil {
			var legacyErr *errors.LegacyReadFailedError
			if !ers.As(err, &legacyErr) {
				return "", err
			}
			logger.Warnf("Legacy device id unavailable, falling back to synthesis: %v", err)
		} else if id, ok := legacyID.Get(); ok {
			logger.Debugf("Migrating device id %v from legacy store", id)
			return id, nil
		}
	}

	if r.synthesizer == nil {
		return "", &errors.IdentitySynthesisFailedError{Msg: "no identity synthesizer configured"}
	}

	return r.synthesizer.Synthesize(ctx)
}

// initialize persists state unless a device id was stored concurrently, in which case the stored
// record wins and is returned instead.
func (r *CurrentStateRepository) initialize(ctx context.Context, state *model.CurrentState) (*model.CurrentState, error) {
	logger := logging.FromContext(ctx).Named("repository.initialize")

	result := state

	err := r.store.Edit(ctx, constants.NamespaceCurrentState, func(ctx context.Context, txn *kvstore.Txn) error {
		if existing, ok := stateFromSnapshot(txn.Snapshot); ok {
			logger.Debugf("Device id %v was stored concurrently, discarding %v", existing.DeviceID, state.DeviceID)
			result = existing
			return nil
		}

		result = state
		writeState(txn, state)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

//Save Merges the present fields of state into the persisted record in one transaction. Absent
//optional fields, the first launch flag included, keep their persisted values.
func (r *CurrentStateRepository) Save(ctx context.Context, state *model.CurrentState) error {
	logger := logging.FromContext(ctx).Named("repository.Save")

	if state == nil || state.DeviceID == "" {
		return &errors.InvalidStateError{Msg: "current state must have a device id"}
	}

	logger.Debugf("Saving fields %v of current state %v", presentFields(state), state.DeviceID)

	return r.store.Edit(ctx, constants.NamespaceCurrentState, func(ctx context.Context, txn *kvstore.Txn) error {
		writeState(txn, state)
		return nil
	})
}

//Reset Drops the current state record so the next Get initializes it again. The legacy area is
//left untouched, so a legacy device id is migrated again.
func (r *CurrentStateRepository) Reset(ctx context.Context) error {
	logger := logging.FromContext(ctx).Named("repository.Reset")

	if err := r.store.Delete(ctx, constants.NamespaceCurrentState); err != nil {
		return err
	}

	logger.Info("Current state was reset")

	return nil
}

func writeState(txn *kvstore.Txn, state *model.CurrentState) {
	txn.Set(constants.KeyDeviceID, state.DeviceID)

	if v, ok := state.IsFirstLaunch.Get(); ok {
		txn.Set(constants.KeyIsFirstLaunch, v)
	}
	if v, ok := state.IsSubscribedToPush.Get(); ok {
		txn.Set(constants.KeyIsSubscribedToPush, v)
	}
	if v, ok := state.PushToken.Get(); ok {
		txn.Set(constants.KeyPushToken, v)
	}
	if v, ok := state.LastSentSubscribedStatus.Get(); ok {
		txn.Set(constants.KeyLastSentSubscribedStatus, v)
	}
	if v, ok := state.SubscriptionStatusChangeDate.Get(); ok {
		txn.Set(constants.KeySubscriptionStatusChangeDate, v)
	}
	if v, ok := state.FirstSubscribedDate.Get(); ok {
		txn.Set(constants.KeyFirstSubscribedDate, v)
	}
}

// presentFields names the fields Save writes, without their values.
func presentFields(state *model.CurrentState) []string {
	fields := []string{constants.KeyDeviceID}
	for key, present := range map[string]bool{
		constants.KeyIsFirstLaunch:                state.IsFirstLaunch.IsPresent(),
		constants.KeyIsSubscribedToPush:           state.IsSubscribedToPush.IsPresent(),
		constants.KeyPushToken:                    state.PushToken.IsPresent(),
		constants.KeyLastSentSubscribedStatus:     state.LastSentSubscribedStatus.IsPresent(),
		constants.KeySubscriptionStatusChangeDate: state.SubscriptionStatusChangeDate.IsPresent(),
		constants.KeyFirstSubscribedDate:          state.FirstSubscribedDate.IsPresent(),
	} {
		if present {
			fields = append(fields, key)
		}
	}
	sort.Strings(fields[1:])
	return fields
}

func optionalBool(s *kvstore.Snapshot, key string) model.Optional[bool] {
	if v, ok := s.Bool(key); ok {
		return model.Some(v)
	}
	return model.None[bool]()
}

func optionalString(s *kvstore.Snapshot, key string) model.Optional[string] {
	if v, ok := s.String(key); ok {
		return model.Some(v)
	}
	return model.None[string]()
}

func optionalInt(s *kvstore.Snapshot, key string) model.Optional[int64] {
	if v, ok := s.Int(key); ok {
		return model.Some(v)
	}
	return model.None[int64]()
}

func stateFromSnapshot(s *kvstore.Snapshot) (*model.CurrentState, bool) {
	deviceID, ok := s.String(constants.KeyDeviceID)
	if !ok || deviceID == "" {
		return nil, false
	}

	isFirstLaunch, ok := s.Bool(constants.KeyIsFirstLaunch)
	if !ok {
		// never stored, the installation has not left its first launch
		isFirstLaunch = true
	}

	return &model.CurrentState{
		DeviceID:                     deviceID,
		IsFirstLaunch:                model.Some(isFirstLaunch),
		IsSubscribedToPush:           optionalBool(s, constants.KeyIsSubscribedToPush),
		PushToken:                    optionalString(s, constants.KeyPushToken),
		LastSentSubscribedStatus:     optionalBool(s, constants.KeyLastSentSubscribedStatus),
		SubscriptionStatusChangeDate: optionalInt(s, constants.KeySubscriptionStatusChangeDate),
		FirstSubscribedDate:          optionalInt(s, constants.KeyFirstSubscribedDate),
	}, true
}
