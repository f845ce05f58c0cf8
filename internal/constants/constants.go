package constants

//NamespaceCurrentState Name of the namespace holding the current state record.
const NamespaceCurrentState = "RECOMMEND_CURRENT_STATE"

//NamespaceLegacy Name of the namespace written by the pre-migration SDK.
const NamespaceLegacy = "PREF_UNIQUE_ID"

//KeyLegacyDeviceID Key of the device id in the legacy namespace (same as the namespace).
const KeyLegacyDeviceID = NamespaceLegacy

//KeyDeviceID Key of the device id.
const KeyDeviceID = "device_id"

//KeyIsFirstLaunch Key of the first launch flag.
const KeyIsFirstLaunch = "is_first_launch"

//KeyIsSubscribedToPush Key of the push subscription flag.
const KeyIsSubscribedToPush = "is_subscribed_to_push"

//KeyPushToken Key of the push token.
const KeyPushToken = "push_token"

//KeyLastSentSubscribedStatus Key of the last transmitted push subscription flag.
const KeyLastSentSubscribedStatus = "last_sent_is_subscribed_to_push_status"

//KeySubscriptionStatusChangeDate Key of the last subscription status change.
const KeySubscriptionStatusChangeDate = "subscription_status_change_date"

//KeyFirstSubscribedDate Key of the first subscription date.
const KeyFirstSubscribedDate = "first_subscribed_date"

//IdentitySalt Salt mixed into the synthesized device id.
const IdentitySalt = "salt"

//LockInitialization Name of the lock guarding device id initialization.
const LockInitialization = "recommend-current-state-init"
