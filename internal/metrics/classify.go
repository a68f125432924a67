package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// HTTPStatusError represents a response that arrived with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Classify maps an execution error onto the outcome taxonomy. A nil error is
// a success. Timeouts are checked before network failures since deadline
// errors usually wrap a transport error.
func Classify(err error) Classification {
	if err == nil {
		return ClassSuccess
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return ClassHTTPError
	}
	if isTimeout(err) {
		return ClassTimeout
	}
	if isNetworkError(err) {
		return ClassNetworkError
	}
	return ClassOther
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// url.Error wraps every transport failure; the timeout case was
		// already peeled off above.
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EPIPE, syscall.EHOSTUNREACH, syscall.ENETUNREACH:
			return true
		}
	}
	return false
}
