package http

import (
	"bytes"
	"encoding/json"
	ers "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/gddo/httputil/header"
	"github.com/recommend-sdk/currentstate/internal/logging"
	"github.com/recommend-sdk/currentstate/internal/utils"
	"github.com/recommend-sdk/currentstate/internal/utils/errors"
	rpccode "google.golang.org/genproto/googleapis/rpc/code"
)

type requestEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

type errorBody struct {
	Status  rpccode.Code `json:"status"`
	Message string       `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func malformed(format string, args ...interface{}) error {
	return &errors.MalformedRequestError{Status: rpccode.Code_INVALID_ARGUMENT, Msg: fmt.Sprintf(format, args...)}
}

func decode(data []byte, dst interface{}, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}

	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			return malformed("Request body must only contain a single JSON object")
		}
		return nil
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError

	switch {
	case ers.As(err, &syntaxError):
		return malformed("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)

	case ers.Is(err, io.ErrUnexpectedEOF):
		return malformed("Request body contains badly-formed JSON")

	case ers.As(err, &unmarshalTypeError):
		return malformed("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)

	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return malformed("Request body contains unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))

	case ers.Is(err, io.EOF):
		return malformed("Request body must not be empty")

	case err.Error() == "http: request body too large":
		return malformed("Request body must not be larger than 1MB")

	default:
		return malformed("Request body could not be decoded: %v", err)
	}
}

// DecodeJSONBody Decodes `{"data": {...}}` request into dst and validates it.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	value, _ := header.ParseValueAndParams(r.Header, "Content-Type")
	if value != "application/json" {
		return &errors.MalformedRequestError{Status: http.StatusUnsupportedMediaType, Msg: "Content-Type header is not application/json"}
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if err.Error() == "http: request body too large" {
			return malformed("Request body must not be larger than 1MB")
		}
		return err
	}

	var envelope requestEnvelope
	if err := decode(body, &envelope, false); err != nil {
		return err
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return malformed("Request body must be wrapped in 'data' field")
	}

	if err := decode(envelope.Data, dst, true); err != nil {
		return err
	}

	if err := utils.Validate.Struct(dst); err != nil {
		return malformed("Validation of the request has failed: %v", err.Error())
	}

	return nil
}

// DecodeJSONOrReportError Decodes request; on failure the error response is sent and false returned.
func DecodeJSONOrReportError(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := DecodeJSONBody(w, r, dst); err != nil {
		logging.FromContext(r.Context()).Debugf("Could not decode request: %v", err)
		SendErrorResponse(w, r, err)
		return false
	}
	return true
}

func sendJSON(w http.ResponseWriter, r *http.Request, body interface{}) {
	js, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(js); err != nil {
		logging.FromContext(r.Context()).Warnf("Could not write response: %v", err)
	}
}

// SendResponse Sends `{"data": response}`.
func SendResponse(w http.ResponseWriter, r *http.Request, response interface{}) {
	sendJSON(w, r, responseEnvelope{Data: response})
}

// SendEmptyResponse Sends `{"data": {}}`.
func SendEmptyResponse(w http.ResponseWriter, r *http.Request) {
	SendResponse(w, r, struct{}{})
}

// SendErrorResponse Sends `{"error": {"status": code, "message": msg}}`. Errors without code are INTERNAL.
func SendErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := rpccode.Code_INTERNAL

	var stateError errors.StateError
	if ers.As(err, &stateError) {
		status = stateError.Code()
	}

	sendJSON(w, r, errorEnvelope{Error: errorBody{Status: status, Message: err.Error()}})
}
