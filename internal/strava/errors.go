package strava

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrAuthentication = errors.New("strava: authentication failed")
	ErrNotFound       = errors.New("strava: not found")
	ErrNetwork        = errors.New("strava: network failure")
)

// Fault is the error body Strava returns alongside non-2xx responses.
type Fault struct {
	Message string        `json:"message"`
	Errors  []FaultDetail `json:"errors"`
}

type FaultDetail struct {
	Resource string `json:"resource"`
	Field    string `json:"field"`
	Code     string `json:"code"`
}

func (f Fault) String() string {
	if len(f.Errors) == 0 {
		return f.Message
	}
	parts := make([]string, 0, len(f.Errors))
	for _, d := range f.Errors {
		parts = append(parts, fmt.Sprintf("%s.%s %s", d.Resource, d.Field, d.Code))
	}
	return fmt.Sprintf("%s (%s)", f.Message, strings.Join(parts, "; "))
}

// APIError is a non-2xx response from the Strava REST API.
type APIError struct {
	Op         string
	StatusCode int
	Fault      Fault
}

func (e *APIError) Error() string {
	msg := e.Fault.String()
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("strava %s: status %d: %s", e.Op, e.StatusCode, msg)
}

// Is maps the response status onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrAuthentication:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNetwork:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// Reasons reported by AuthenticationError.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonInvalidCode        = "invalid_code"
	ReasonRejected           = "rejected"
	ReasonTransport          = "transport"
	ReasonMissingToken       = "missing_token"
)

// AuthenticationError reports a failed token exchange. It always matches
// ErrAuthentication and unwraps to the underlying cause, so a transport
// failure also matches ErrNetwork.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("strava token exchange: %s", e.Reason)
	}
	return fmt.Sprintf("strava token exchange: %s: %v", e.Reason, e.Err)
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

func (e *AuthenticationError) Unwrap() error { return e.Err }

// networkError tags a transport failure with ErrNetwork while keeping the cause.
type networkError struct {
	op  string
	err error
}

func (e *networkError) Error() string { return fmt.Sprintf("strava %s: %v", e.op, e.err) }

func (e *networkError) Is(target error) bool { return target == ErrNetwork }

func (e *networkError) Unwrap() error { return e.err }
