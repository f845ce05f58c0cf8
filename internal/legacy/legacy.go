// Package legacy reads the device id written by SDK versions which predate the current state
// record. The legacy area is never modified.
package legacy

import (
	"context"
	"fmt"

	"github.com/recommend-sdk/currentstate/internal/constants"
	"github.com/recommend-sdk/currentstate/internal/kvstore"
	"github.com/recommend-sdk/currentstate/internal/utils/errors"
	"github.com/recommend-sdk/currentstate/pkg/model"
)

//Adapter Reads the legacy device id from a read-only store.
type Adapter struct {
	reader kvstore.Reader
}

//NewAdapter Creates adapter over reader.
func NewAdapter(reader kvstore.Reader) *Adapter {
	return &Adapter{reader: reader}
}

//ReadLegacyID Returns the legacy device id, absent when it was never written. Failures are
//reported as LegacyReadFailedError.
func (a *Adapter) ReadLegacyID(ctx context.Context) (model.Optional[string], error) {
	if a.reader == nil {
		return model.None[string](), nil
	}

	snapshot, err := a.reader.Snapshot(ctx, constants.NamespaceLegacy)
	if err != nil {
		return model.None[string](), &errors.LegacyReadFailedError{
			Msg: fmt.Sprintf("could not read legacy namespace %v", constants.NamespaceLegacy),
			Err: err,
		}
	}

	id, ok := snapshot.String(constants.KeyLegacyDeviceID)
	if !ok || id == "" {
		return model.None[string](), nil
	}

	return model.Some(id), nil
}
