package api

import (
	"errors"
	"fmt"
)

// Kind classifies why a request failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport means no HTTP response was received.
	KindTransport
	// KindApplication means the server answered with a failure status.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// TransportError wraps a failure to obtain a response at all.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is a non-2xx response. Message is the server's
// human-readable "message" field when present, otherwise the raw body.
type ApplicationError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d from %s %s", e.StatusCode, e.Method, e.URL)
	}
	return fmt.Sprintf("HTTP %d from %s %s: %s", e.StatusCode, e.Method, e.URL, e.Message)
}

// KindOf reports the failure kind of err, looking through wrapping.
func KindOf(err error) Kind {
	var te *TransportError
	if errors.As(err, &te) {
		return KindTransport
	}
	var ae *ApplicationError
	if errors.As(err, &ae) {
		return KindApplication
	}
	return KindUnknown
}

// Message returns the text worth showing a user for err.
func Message(err error) string {
	var ae *ApplicationError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "server unreachable"
	}
	return err.Error()
}
