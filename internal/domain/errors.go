package domain

import (
	"errors"
	"fmt"
)

// FetchErrorKind tags the failure class of a fetch.
type FetchErrorKind int

const (
	// KindNetwork covers DNS, timeouts, resets and body read failures.
	KindNetwork FetchErrorKind = iota + 1
	// KindHTTPStatus is a non-200 response.
	KindHTTPStatus
	// KindParse is a body that is not a JSON object.
	KindParse
	// KindConfig is a missing or invalid location; no request was made.
	KindConfig
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindHTTPStatus:
		return "http_error"
	case KindParse:
		return "parse_error"
	case KindConfig:
		return "config_error"
	default:
		return "unknown_error"
	}
}

// FetchError is the error returned by telemetry fetchers.
type FetchError struct {
	Kind       FetchErrorKind
	Message    string
	StatusCode int // set for KindHTTPStatus only
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(message string, err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Message: message, Err: err}
}

// NewHTTPStatusError reports a non-200 response.
func NewHTTPStatusError(status int, body string) *FetchError {
	msg := fmt.Sprintf("api error: status %d", status)
	if body != "" {
		msg += ": " + body
	}
	return &FetchError{Kind: KindHTTPStatus, Message: msg, StatusCode: status}
}

// NewParseError wraps a decode failure.
func NewParseError(message string, err error) *FetchError {
	return &FetchError{Kind: KindParse, Message: message, Err: err}
}

// NewConfigError reports an unusable configuration.
func NewConfigError(message string) *FetchError {
	return &FetchError{Kind: KindConfig, Message: message}
}

// ErrorKind returns the FetchErrorKind carried by err, or 0 if err is not a
// FetchError.
func ErrorKind(err error) FetchErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
