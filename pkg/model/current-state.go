// Package model contains the persisted record of an installation.
package model

//CurrentState Identity and subscription state of one installation. Save merges only present
//fields, so a CurrentState built as a literal updates just what it sets. An absent IsFirstLaunch
//keeps the stored flag, and a record that never stored it reads as a first launch.
type CurrentState struct {
	DeviceID                     string           `json:"deviceId"`
	IsFirstLaunch                Optional[bool]   `json:"isFirstLaunch"`
	IsSubscribedToPush           Optional[bool]   `json:"isSubscribedToPush"`
	PushToken                    Optional[string] `json:"pushToken"`
	LastSentSubscribedStatus     Optional[bool]   `json:"lastSentSubscribedStatus"`
	SubscriptionStatusChangeDate Optional[int64]  `json:"subscriptionStatusChangeDate"`
	FirstSubscribedDate          Optional[int64]  `json:"firstSubscribedDate"`
}

//NewCurrentState Fresh state of a just-initialized installation.
func NewCurrentState(deviceID string) *CurrentState {
	return &CurrentState{
		DeviceID:      deviceID,
		IsFirstLaunch: Some(true),
	}
}

//FirstLaunch Reports the first launch flag, true unless it was set false.
func (s *CurrentState) FirstLaunch() bool {
	return s.IsFirstLaunch.OrElse(true)
}
