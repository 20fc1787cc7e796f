package goSession

import (
	"errors"
	"strconv"
)

var (
	// ErrLoginInFlight is returned by Login while another login call is pending.
	// Session state is left untouched and no request is made.
	ErrLoginInFlight = errors.New("login already in progress")
	// ErrLoginSuperseded is returned by a login whose result arrived after a
	// Logout; the result is discarded.
	ErrLoginSuperseded = errors.New("login superseded by logout")
	// ErrNotHydrated is returned by Login before Hydrate has completed.
	ErrNotHydrated = errors.New("session store not hydrated")
	// ErrInvalidResponse marks a login response missing the admin or the token.
	ErrInvalidResponse = errors.New("invalid response from server")
	// ErrStoreClosed is returned by Login after Close.
	ErrStoreClosed = errors.New("session store closed")
	// ErrStoreNotReady is returned when a method is called on a nil Store.
	ErrStoreNotReady = errors.New("session store not initialized")
	// ErrNilAuthClient is returned by Build without an auth client.
	ErrNilAuthClient = errors.New("auth client required")
	// ErrNilPersister is returned by Build without a persister.
	ErrNilPersister = errors.New("persister required")
)

// ErrorKind classifies a failed login.
type ErrorKind uint8

const (
	// KindNone means no error.
	KindNone ErrorKind = iota
	// KindInvalidCredentials is a 401: wrong email or password.
	KindInvalidCredentials
	// KindForbidden is a 403: the account may not use the back-office.
	KindForbidden
	// KindRateLimited is a 429: too many attempts.
	KindRateLimited
	// KindServerError is any 5xx.
	KindServerError
	// KindTimeout means the call exceeded its deadline.
	KindTimeout
	// KindNetworkUnreachable is a transport failure or detected offline state.
	KindNetworkUnreachable
	// KindInvalidResponse is a parsed response missing admin or token.
	KindInvalidResponse
	// KindUnclassified is everything else.
	KindUnclassified
)

var errorKindNames = [...]string{
	KindNone:               "none",
	KindInvalidCredentials: "invalid_credentials",
	KindForbidden:          "forbidden",
	KindRateLimited:        "rate_limited",
	KindServerError:        "server_error",
	KindTimeout:            "timeout",
	KindNetworkUnreachable: "network_unreachable",
	KindInvalidResponse:    "invalid_response",
	KindUnclassified:       "unclassified",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// LoginError is returned by a failed Login after the Store has committed the
// failure. Message is the same text exposed in State.Error; Unwrap yields the
// auth client's original error.
type LoginError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// AuthError is the failure shape auth clients should return. Every field is
// optional; Status is the HTTP status when the server answered.
type AuthError struct {
	Status       int
	Message      string
	Timeout      bool
	NetworkError bool
	Err          error
}

func (e *AuthError) Error() string {
	var msg string
	switch {
	case e.Status > 0 && e.Message != "":
		msg = "auth api: status " + strconv.Itoa(e.Status) + ": " + e.Message
	case e.Status > 0:
		msg = "auth api: status " + strconv.Itoa(e.Status)
	case e.Message != "":
		msg = "auth api: " + e.Message
	case e.Timeout:
		msg = "auth api: timeout"
	case e.NetworkError:
		msg = "auth api: network error"
	default:
		msg = "auth api: request failed"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
