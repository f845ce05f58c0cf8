package v1

import (
	"github.com/recommend-sdk/currentstate/pkg/model"
)

/*
This files contains request/response structs of the local inspection server. The structs have to be changed in
backward-compatible way and when it's not possible, copied to `v2` and changed there.
*/

//CurrentStateResponse Response of GET /state
type CurrentStateResponse struct {
	DeviceID                     string                 `json:"deviceId"`
	IsFirstLaunch                model.Optional[bool]   `json:"isFirstLaunch"`
	IsSubscribedToPush           model.Optional[bool]   `json:"isSubscribedToPush"`
	PushToken                    model.Optional[string] `json:"pushToken"`
	LastSentSubscribedStatus     model.Optional[bool]   `json:"lastSentSubscribedStatus"`
	SubscriptionStatusChangeDate model.Optional[int64]  `json:"subscriptionStatusChangeDate"`
	FirstSubscribedDate          model.Optional[int64]  `json:"firstSubscribedDate"`
}

//SaveStateRequest Request of POST /state. Fields missing in the request (or null) keep their stored values.
type SaveStateRequest struct {
	DeviceID                     string                 `json:"deviceId" validate:"required"`
	IsFirstLaunch                model.Optional[bool]   `json:"isFirstLaunch"`
	IsSubscribedToPush           model.Optional[bool]   `json:"isSubscribedToPush"`
	PushToken                    model.Optional[string] `json:"pushToken"`
	LastSentSubscribedStatus     model.Optional[bool]   `json:"lastSentSubscribedStatus"`
	SubscriptionStatusChangeDate model.Optional[int64]  `json:"subscriptionStatusChangeDate"`
	FirstSubscribedDate          model.Optional[int64]  `json:"firstSubscribedDate"`
}

//NewCurrentStateResponse Converts the model to the response.
func NewCurrentStateResponse(state *model.CurrentState) CurrentStateResponse {
	return CurrentStateResponse(*state)
}

//ToModel Converts the request to the model.
func (r SaveStateRequest) ToModel() *model.CurrentState {
	return &model.CurrentState{
		DeviceID:                     r.DeviceID,
		IsFirstLaunch:                r.IsFirstLaunch,
		IsSubscribedToPush:           r.IsSubscribedToPush,
		PushToken:                    r.PushToken,
		LastSentSubscribedStatus:     r.LastSentSubscribedStatus,
		SubscriptionStatusChangeDate: r.SubscriptionStatusChangeDate,
		FirstSubscribedDate:          r.FirstSubscribedDate,
	}
}
