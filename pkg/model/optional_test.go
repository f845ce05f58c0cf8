package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalPresence(t *testing.T) {
	none := None[bool]()
	v, ok := none.Get()
	assert.False(t, ok)
	assert.False(t, v)
	assert.False(t, none.IsPresent())
	assert.True(t, none.OrElse(true))

	// a present zero value is not absent
	falsy := Some(false)
	v, ok = falsy.Get()
	assert.True(t, ok)
	assert.False(t, v)
	assert.False(t, falsy.OrElse(true))

	var zero Optional[int64]
	assert.Equal(t, None[int64](), zero)
}

func TestOptionalJSON(t *testing.T) {
	tables := []struct {
		name  string
		state CurrentState
		json  string
	}{
		{
			name:  "fresh",
			state: *NewCurrentState("ABC"),
			json:  `{"deviceId":"ABC","isFirstLaunch":true,"isSubscribedToPush":null,"pushToken":null,"lastSentSubscribedStatus":null,"subscriptionStatusChangeDate":null,"firstSubscribedDate":null}`,
		},
		{
			name: "zero values present",
			state: CurrentState{
				DeviceID:                     "ABC",
				IsFirstLaunch:                Some(false),
				IsSubscribedToPush:           Some(false),
				PushToken:                    Some(""),
				LastSentSubscribedStatus:     Some(false),
				SubscriptionStatusChangeDate: Some(int64(0)),
				FirstSubscribedDate:          Some(int64(19000)),
			},
			json: `{"deviceId":"ABC","isFirstLaunch":false,"isSubscribedToPush":false,"pushToken":"","lastSentSubscribedStatus":false,"subscriptionStatusChangeDate":0,"firstSubscribedDate":19000}`,
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			encoded, err := json.Marshal(table.state)
			require.NoError(t, err)
			assert.JSONEq(t, table.json, string(encoded))

			var decoded CurrentState
			require.NoError(t, json.Unmarshal(encoded, &decoded))

			diff := cmp.Diff(table.state, decoded, cmp.AllowUnexported(Optional[bool]{}, Optional[string]{}, Optional[int64]{}))
			if diff != "" {
				t.Fatalf("state mismatch (-want +got):\n%v", diff)
			}
		})
	}
}

func TestOptionalUnmarshalMissingField(t *testing.T) {
	var state CurrentState
	require.NoError(t, json.Unmarshal([]byte(`{"deviceId":"X","pushToken":"T"}`), &state))

	assert.Equal(t, "X", state.DeviceID)
	assert.Equal(t, Some("T"), state.PushToken)
	assert.False(t, state.IsSubscribedToPush.IsPresent())
	assert.False(t, state.FirstSubscribedDate.IsPresent())
}

func TestFirstLaunchDefaultsToTrue(t *testing.T) {
	assert.True(t, (&CurrentState{DeviceID: "X"}).FirstLaunch())
	assert.True(t, NewCurrentState("X").FirstLaunch())
	assert.False(t, (&CurrentState{DeviceID: "X", IsFirstLaunch: Some(false)}).FirstLaunch())
}

func TestOptionalUnmarshalWrongType(t *testing.T) {
	var o Optional[int64]
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &o))
}
