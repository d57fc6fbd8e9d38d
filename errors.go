package patience

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the startup handshake.
type Kind int

const (
	// KindUnknown is reported for errors that did not come from this package.
	KindUnknown Kind = iota
	// KindSetup means the listening socket could not be created or queried,
	// or the port handoff value could not be resolved.
	KindSetup
	// KindTimeout means no valid notification arrived in time.
	KindTimeout
	// KindProtocol means a connection delivered something other than the
	// notification payload.
	KindProtocol
	// KindIO covers every other accept, read, connect or write failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

var (
	// ErrTimeout is matched by errors.Is for every KindTimeout error.
	ErrTimeout = errors.New("did not receive startup notification")

	// ErrInvalidNotification is matched by errors.Is for every KindProtocol error.
	ErrInvalidNotification = errors.New("wrong startup notification received")

	// ErrListenerConsumed is returned when Wait is called on a Listener
	// that already waited or was closed.
	ErrListenerConsumed = errors.New("listener already consumed")
)

// Error is the error type returned by every operation of this package.
type Error struct {
	Kind Kind
	Op   string // "listen", "port", "wait", "accept", "read", "dial", "write", "env"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("patience %s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("patience %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching e's kind, so that
// errors.Is(err, ErrTimeout) holds for any timeout regardless of its cause.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrInvalidNotification:
		return e.Kind == KindProtocol
	}
	return false
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown if err was not produced
// by this package.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsTimeout reports whether err means the application did not signal
// its startup before the timeout expired.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsProtocolViolation reports whether err means a peer connected but sent
// an unexpected payload.
func IsProtocolViolation(err error) bool {
	return KindOf(err) == KindProtocol
}
