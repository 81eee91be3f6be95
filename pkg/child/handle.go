// Package child tracks a spawned process whose stdout and stderr are each
// attached to their own pseudo-terminal.
//
// A Handle owns the process id and both pty master ends. Its Streamer merges
// the two outputs into one sequence of tagged lines and, once the process has
// exited and every buffered line has been read, delivers the termination
// status to the Handle exactly once.
//
//	h, err := launch.Spawn(cmd)
//	if err != nil {
//	    return err
//	}
//	s, err := h.Streamer()
//	if err != nil {
//	    return err
//	}
//	for out, err := range s.All(ctx) {
//	    ...
//	}
//	status, err := h.Status(ctx)
//
// # Thread Safety
//
// Handle is safe for concurrent use; any number of goroutines may wait in
// Status. A Streamer is consumed by one goroutine at a time; Close and Err
// may be called from any goroutine.
package child

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Handle is the parent-side proxy for a spawned child.
type Handle struct {
	id     string
	pid    int
	stdout *os.File
	stderr *os.File
	logger *slog.Logger

	mu      sync.Mutex
	promise *promise
	closed  bool
}

// NewHandle takes ownership of the pty masters for a running child.
// The caller must not read from or close them afterwards.
func NewHandle(id string, pid int, stdout, stderr *os.File, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{
		id:     id,
		pid:    pid,
		stdout: stdout,
		stderr: stderr,
		logger: logger.With("spawn", id, "pid", pid),
	}
}

// ID returns the spawn id assigned by the launcher.
func (h *Handle) ID() string { return h.id }

// Pid returns the child's process id.
func (h *Handle) Pid() int { return h.pid }

// Streamer returns the output multiplexer for this child. It may be called
// once; later calls return ErrStreamerTaken.
func (h *Handle) Streamer() (*Streamer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHandleClosed
	}
	if h.promise != nil {
		return nil, ErrStreamerTaken
	}

	h.promise = newPromise()
	return newStreamer(h.pid, h.stdout, h.stderr, h.promise, h.logger), nil
}

// Status waits until the Streamer has drained all output and reaped the
// child, then returns the termination status. The first result is cached;
// later calls return it immediately.
//
// Errors wrapping ErrInternal mean no status can ever arrive: no Streamer was
// created (ErrNoStreamer) or it was abandoned (ErrAbandoned).
func (h *Handle) Status(ctx context.Context) (Status, error) {
	h.mu.Lock()
	p := h.promise
	h.mu.Unlock()

	if p == nil {
		return Status{}, internalError(ErrNoStreamer)
	}
	return p.wait(ctx)
}

// Close discards a child whose output will not be streamed: both masters are
// closed and the child is reaped in the background, after which Status
// reports its exit. Close is a no-op once a Streamer exists; the Streamer
// owns the descriptors then.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.promise != nil {
		return nil
	}
	h.closed = true

	var errs []error
	if err := h.stdout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stdout master: %w", err))
	}
	if err := h.stderr.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stderr master: %w", err))
	}

	p := newPromise()
	h.promise = p
	go func() {
		res := wait(h.pid)
		h.logger.Debug("child reaped after close", "status", res.status, "err", res.err)
		p.resolve(res.status, res.terminalErr())
	}()

	return errors.Join(errs...)
}
