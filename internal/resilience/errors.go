// Package resilience decides which remote failures are worth another attempt and
// retries caller-selected reads with backoff. The API client itself never retries.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/sells-group/health-cli/pkg/healthapi"
)

// IsTransient reports whether err is a failure that may succeed on a later attempt:
// a network-class remote failure other than cancellation, a transient HTTP status,
// or a recognisable connection-level error.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if re, ok := healthapi.AsRemoteError(err); ok {
		switch re.Class {
		case healthapi.ClassNetwork:
			return true
		case healthapi.ClassHTTP:
			return IsTransientHTTPStatus(re.StatusCode)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
