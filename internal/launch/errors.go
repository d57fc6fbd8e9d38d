package launch

import (
	"errors"
	"strings"
	"syscall"
)

// IsConnectionError reports whether err means nobody is listening on the
// session port, typically because the waiting side already gave up or was
// never started.
//
// Returns true for errors containing:
//   - ECONNREFUSED / "connection refused"
//   - "connection reset by peer"
//   - "broken pipe"
//
// Example:
//
//	if err := patience.Notify(port); launch.IsConnectionError(err) {
//	    // The test is no longer waiting for us
//	}
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "broken pipe")
}
