package remote

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// RemoteError is raised for any HTTP response with status >= 400, except
// Manifest's 404 which is not an error (see Client.Manifest).
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Body)
}

// TransportError wraps a failure to reach the server at all: dial failure,
// timeout, connection reset.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote: transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// Retryable reports whether the failure looks transient and worth a retry:
// a dial/timeout/reset, as opposed to a permanent misconfiguration.
func (e *TransportError) Retryable() bool {
	return isConnectionError(e.Cause)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	for _, substr := range []string{
		"context deadline exceeded",
		"connection refused",
		"connection reset",
		"no such host",
		"broken pipe",
		"EOF",
	} {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
