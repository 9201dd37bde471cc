package extraction

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrCancelled marks a user/caller abort. It is never logged as a failure and
// hosts suppress error UI for it.
var ErrCancelled = errors.New("processing cancelled")

// ExtractionError indicates a malformed or unreadable document. Page is
// zero-based, -1 when the failure is not page-specific.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("extract page %d: %v", e.Page+1, e.Err)
	}
	return fmt.Sprintf("extract document: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// AsCancelled tags err with ErrCancelled unless it already carries it.
func AsCancelled(err error) error {
	if errors.Is(err, ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// IsCancelled reports whether err is a cooperative abort rather than a fault.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Transient connectivity failures surface from several transports with no
// shared sentinel, so classification falls back to message patterns.
var networkPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"tls handshake",
	"eof",
	"failed to fetch",
}

// IsNetworkError reports whether err looks like a transient transport failure.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range networkPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// Kind classifies a pipeline failure for host-side presentation.
type Kind int

const (
	KindUnknown Kind = iota
	KindCancelled
	KindNetwork
	KindExtraction
)

// Classify maps an error from the extraction stages onto the failure
// taxonomy. Structuring failures are classified by the conversion layer,
// which knows that stage's sentinel.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case IsCancelled(err):
		return KindCancelled
	case IsNetworkError(err):
		return KindNetwork
	default:
		var ee *ExtractionError
		if errors.As(err, &ee) {
			return KindExtraction
		}
		return KindUnknown
	}
}
