package errors

import rpccode "google.golang.org/genproto/googleapis/rpc/code"

//StateError Error with code.
type StateError interface {
	Code() rpccode.Code
	Error() string
}

func withCause(msg string, err error) string {
	if err == nil {
		return msg
	}
	return msg + ": " + err.Error()
}

//StorageUnavailableError The backing store could not be read or written.
type StorageUnavailableError struct {
	Msg string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return withCause(e.Msg, e.Err)
}

//Unwrap Returns the underlying store error.
func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

//Code Code of the error.
func (e *StorageUnavailableError) Code() rpccode.Code {
	return rpccode.Code_UNAVAILABLE
}

//IdentitySynthesisFailedError A device id could not be derived from the hardware fingerprint.
type IdentitySynthesisFailedError struct {
	Msg string
	Err error
}

func (e *IdentitySynthesisFailedError) Error() string {
	return withCause(e.Msg, e.Err)
}

//Unwrap Returns the underlying cause.
func (e *IdentitySynthesisFailedError) Unwrap() error {
	return e.Err
}

//Code Code of the error.
func (e *IdentitySynthesisFailedError) Code() rpccode.Code {
	return rpccode.Code_INTERNAL
}

//LegacyReadFailedError The legacy store could not be read. Callers treat it as "no legacy id".
type LegacyReadFailedError struct {
	Msg string
	Err error
}

func (e *LegacyReadFailedError) Error() string {
	return withCause(e.Msg, e.Err)
}

//Unwrap Returns the underlying cause.
func (e *LegacyReadFailedError) Unwrap() error {
	return e.Err
}

//Code Code of the error.
func (e *LegacyReadFailedError) Code() rpccode.Code {
	return rpccode.Code_NOT_FOUND
}

//InvalidStateError A state that must never be persisted (e.g. empty device id).
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string {
	return e.Msg
}

//Code Code of the error.
func (e *InvalidStateError) Code() rpccode.Code {
	return rpccode.Code_INVALID_ARGUMENT
}

//MalformedRequestError Error for malformed request
type MalformedRequestError struct {
	Status rpccode.Code
	Msg    string
}

func (mr *MalformedRequestError) Error() string {
	return mr.Msg
}

//Code Code of the error.
func (mr *MalformedRequestError) Code() rpccode.Code {
	return rpccode.Code_INVALID_ARGUMENT
}
