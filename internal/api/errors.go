package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the backend answers 401. By the time the
// caller sees it the session has already been torn down; the call must not be
// retried automatically.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError is a client-side rejection raised before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// RequestError is any non-2xx, non-401 backend answer. Msg carries the
// server-supplied message when the body held one.
type RequestError struct {
	StatusCode int
	Msg        string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Msg)
}

// TransportError is a fetch-level failure: the request never produced an HTTP
// status at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "backend unreachable: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
