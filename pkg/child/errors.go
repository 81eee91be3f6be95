package child

import (
	"errors"
	"fmt"
)

// Sentinel errors for the child package.
var (
	// ErrInternal marks a broken lifecycle invariant, as opposed to a failure
	// of the child process itself. Errors carrying it also wrap a specific cause.
	ErrInternal = errors.New("internal consistency error")

	// ErrNoStreamer is returned by Status when no Streamer was created, so
	// nothing will ever deliver a status.
	ErrNoStreamer = errors.New("no streamer was created for this child")

	// ErrStreamerTaken is returned when Streamer is called a second time.
	ErrStreamerTaken = errors.New("streamer already created for this child")

	// ErrAbandoned is returned by Status when the Streamer was closed or
	// garbage collected before it finished.
	ErrAbandoned = errors.New("streamer abandoned before delivering status")

	// ErrNotTerminal is returned by Status when the wait result did not
	// describe a finished process.
	ErrNotTerminal = errors.New("wait returned a non-terminal status")

	// ErrStreamerClosed is returned by Next after Close.
	ErrStreamerClosed = errors.New("streamer is closed")

	// ErrHandleClosed is returned by Streamer after the Handle was closed.
	ErrHandleClosed = errors.New("child handle is closed")
)

func internalError(cause error) error {
	return fmt.Errorf("%w: %w", ErrInternal, cause)
}

// ReadError is a failure reading one of the two output streams. The stream
// it names has ended; the other stream and the exit status are unaffected.
type ReadError struct {
	Origin Origin
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Origin, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
