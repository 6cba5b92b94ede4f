package healthapi

import (
	"errors"
	"fmt"
)

// ErrorClass separates failures where no response arrived from non-2xx responses.
type ErrorClass string

const (
	// ClassNetwork means the request never produced a response: dial, DNS, TLS,
	// connection reset, context cancellation or an unreadable body.
	ClassNetwork ErrorClass = "network"
	// ClassHTTP means the server answered with a non-success status, or with a
	// success status whose body could not be decoded.
	ClassHTTP ErrorClass = "http"
)

// RemoteError is the single error shape returned by every Client operation.
type RemoteError struct {
	Class      ErrorClass
	Op         string
	StatusCode int
	Body       string
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Class == ClassHTTP && e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s: %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// AsRemoteError returns the RemoteError in err's chain, if any.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsNetwork reports whether err is a network-class remote failure.
func IsNetwork(err error) bool {
	re, ok := AsRemoteError(err)
	return ok && re.Class == ClassNetwork
}

// StatusCode returns the HTTP status of an http-class remote failure, or 0.
func StatusCode(err error) int {
	re, ok := AsRemoteError(err)
	if !ok || re.Class != ClassHTTP {
		return 0
	}
	return re.StatusCode
}

func networkError(op string, err error) *RemoteError {
	return &RemoteError{Class: ClassNetwork, Op: op, Message: err.Error(), Err: err}
}

func httpError(op string, status int, body string) *RemoteError {
	return &RemoteError{
		Class:      ClassHTTP,
		Op:         op,
		StatusCode: status,
		Body:       body,
		Message:    fmt.Sprintf("unexpected status %d", status),
	}
}
