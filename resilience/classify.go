package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// transientMarker is implemented by errors that know whether they are retryable,
// such as HTTP status errors from the verification endpoint.
type transientMarker interface {
	Transient() bool
}

// transientFragments are lowercase message fragments of network-level
// failures. They are anchored so rejection text that merely mentions the
// network or end of input stays permanent.
var transientFragments = []string{
	"timeout",
	"timed out",
	"network error",
	"network is unreachable",
	"network unreachable",
	"econnreset",
	"connection reset",
	"econnrefused",
	"connection refused",
	"socket",
	"broken pipe",
	"fetch failed",
	"failed to fetch",
	"no such host",
	": eof",
	"unexpected eof",
}

// IsTransient reports whether err looks temporary: timeouts, connection
// resets or refusals, socket errors and generic fetch failures.
// Everything else, including explicit credential rejection, is permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Caller cancellation is never worth retrying.
	if errors.Is(err, context.Canceled) {
		return false
	}

	var marked *TransientError
	if errors.As(err, &marked) {
		return true
	}

	var marker transientMarker
	if errors.As(err, &marker) {
		return marker.Transient()
	}

	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range transientFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
