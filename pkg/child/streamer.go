package child

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
)

// Origin identifies which stream a line was written to.
type Origin int

const (
	Stdout Origin = iota
	Stderr
)

func (o Origin) String() string {
	switch o {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// Output is one line of child output, without its line terminator.
type Output struct {
	Origin Origin
	Line   string
}

type waitResult struct {
	status Status
	err    error
}

// terminalErr reports why res cannot serve as a final status, if it cannot.
func (res waitResult) terminalErr() error {
	if res.err != nil {
		return internalError(res.err)
	}
	if !res.status.Terminal() {
		return internalError(fmt.Errorf("%w: %s", ErrNotTerminal, res.status))
	}
	return nil
}

type item struct {
	out Output
	err error
}

// run is the state shared with the background goroutines. It holds no
// reference to the Streamer, so an abandoned Streamer can be collected and
// its cleanup can still reap the child.
type run struct {
	pid     int
	files   [2]*os.File
	promise *promise
	logger  *slog.Logger

	startOnce sync.Once
	exit      chan waitResult
	lines     [2]chan item

	quitOnce  sync.Once
	quit      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (r *run) start() {
	r.startOnce.Do(func() {
		r.logger.Debug("streaming child output")
		go r.wait()
		go r.read(Stdout)
		go r.read(Stderr)
	})
}

// wait always runs to completion so the child is reaped even when nobody
// consumes the result.
func (r *run) wait() {
	res := wait(r.pid)
	r.logger.Debug("child reaped", "status", res.status, "err", res.err)
	r.exit <- res
}

func (r *run) read(o Origin) {
	defer close(r.lines[o])

	br := bufio.NewReader(r.files[o])
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if !r.send(o, item{out: Output{Origin: o, Line: trimEOL(line)}}) {
				return
			}
		}
		if err != nil {
			if !endOfStream(err) {
				r.send(o, item{err: &ReadError{Origin: o, Err: err}})
			}
			return
		}
	}
}

func (r *run) send(o Origin, it item) bool {
	select {
	case r.lines[o] <- it:
		return true
	case <-r.quit:
		return false
	}
}

func (r *run) closeFiles() error {
	r.closeOnce.Do(func() {
		var errs []error
		for o, f := range r.files {
			if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				errs = append(errs, fmt.Errorf("close %s master: %w", Origin(o), err))
			}
		}
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}

// abandon stops output delivery, releases the masters and makes sure the
// child still gets reaped. Status then reports ErrAbandoned.
func (r *run) abandon() {
	r.quitOnce.Do(func() { close(r.quit) })
	_ = r.closeFiles()
	r.start()
	if r.promise.resolve(Running(), internalError(ErrAbandoned)) {
		r.logger.Debug("streamer abandoned before exit")
	}
}

// trimEOL strips "\n" and the "\r" the pty line discipline puts before it.
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// endOfStream reports whether err just means there is nothing left to read.
// Linux returns EIO from a pty master once every slave descriptor is closed.
func endOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}

// Streamer merges the child's stdout and stderr lines into one sequence.
//
// Lines that are ready always take priority over the exit notification.
// After the child exits the Streamer keeps reading until both streams are
// exhausted, closes the masters and only then delivers the status to the
// Handle. A consumer that reads until io.EOF has therefore seen every line
// the child wrote before exiting.
//
// The sequence is not restartable: Next resumes where the previous call
// stopped and returns io.EOF forever once finished.
type Streamer struct {
	mu     sync.Mutex
	r      *run
	open   [2]bool
	exited bool
	result waitResult
	done   bool

	// errMu guards errs separately so Err does not wait for a blocked Next.
	errMu sync.Mutex
	errs  []error

	closed  atomic.Bool
	cleanup runtime.Cleanup
}

func newStreamer(pid int, stdout, stderr *os.File, p *promise, logger *slog.Logger) *Streamer {
	r := &run{
		pid:     pid,
		files:   [2]*os.File{stdout, stderr},
		promise: p,
		logger:  logger,
		exit:    make(chan waitResult, 1),
		lines:   [2]chan item{make(chan item), make(chan item)},
		quit:    make(chan struct{}),
	}
	s := &Streamer{r: r, open: [2]bool{true, true}}
	s.cleanup = runtime.AddCleanup(s, (*run).abandon, r)
	return s
}

// Next returns the next line. A *ReadError means one stream failed and has
// ended; the sequence itself continues. io.EOF means the child has exited,
// all output has been delivered and Handle.Status will not block.
//
// If ctx is done first Next returns ctx.Err() and a later call resumes.
func (s *Streamer) Next(ctx context.Context) (Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return Output{}, io.EOF
	}
	if s.closed.Load() {
		return Output{}, ErrStreamerClosed
	}
	s.r.start()

	for {
		// Ready output wins over a ready exit notification.
		select {
		case it, ok := <-s.linesFor(Stdout):
			if out, yield, err := s.take(Stdout, it, ok); yield {
				return out, err
			}
			continue
		case it, ok := <-s.linesFor(Stderr):
			if out, yield, err := s.take(Stderr, it, ok); yield {
				return out, err
			}
			continue
		default:
		}

		if s.exited && !s.open[Stdout] && !s.open[Stderr] {
			return Output{}, s.finish()
		}

		var exitC <-chan waitResult
		if !s.exited {
			exitC = s.r.exit
		}

		select {
		case it, ok := <-s.linesFor(Stdout):
			if out, yield, err := s.take(Stdout, it, ok); yield {
				return out, err
			}
		case it, ok := <-s.linesFor(Stderr):
			if out, yield, err := s.take(Stderr, it, ok); yield {
				return out, err
			}
		case res := <-exitC:
			s.exited = true
			s.result = res
			s.r.logger.Debug("child exited, draining output", "status", res.status)
		case <-s.r.quit:
			return Output{}, ErrStreamerClosed
		case <-ctx.Done():
			return Output{}, ctx.Err()
		}
	}
}

// All returns the remaining sequence for use with range. Iteration stops
// at the end of output, on a context error or on ErrStreamerClosed, which
// are yielded as the final element. ReadErrors are yielded and iteration
// continues.
func (s *Streamer) All(ctx context.Context) iter.Seq2[Output, error] {
	return func(yield func(Output, error) bool) {
		for {
			out, err := s.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			var rerr *ReadError
			if err != nil && !errors.As(err, &rerr) {
				yield(Output{}, err)
				return
			}
			if !yield(out, err) {
				return
			}
		}
	}
}

// Err returns the read errors seen so far, joined. It may be called from any
// goroutine, including while Next is blocked.
func (s *Streamer) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return errors.Join(s.errs...)
}

func (s *Streamer) recordErr(err error) {
	s.errMu.Lock()
	s.errs = append(s.errs, err)
	s.errMu.Unlock()
}

// Close abandons the sequence. The masters are closed and the child is still
// reaped in the background, but Handle.Status reports ErrAbandoned. Close
// after the sequence has finished does nothing.
func (s *Streamer) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cleanup.Stop()
	s.r.abandon()
	return nil
}

func (s *Streamer) linesFor(o Origin) <-chan item {
	if !s.open[o] {
		return nil
	}
	return s.r.lines[o]
}

func (s *Streamer) take(o Origin, it item, ok bool) (Output, bool, error) {
	if !ok {
		s.open[o] = false
		return Output{}, false, nil
	}
	if it.err != nil {
		s.recordErr(it.err)
		return Output{Origin: o}, true, it.err
	}
	return it.out, true, nil
}

// finish runs once both streams are exhausted after exit.
func (s *Streamer) finish() error {
	s.done = true
	s.cleanup.Stop()

	if err := s.r.closeFiles(); err != nil {
		s.recordErr(err)
	}

	if !s.r.promise.resolve(s.result.status, s.result.terminalErr()) {
		s.r.logger.Error("status was already delivered", "status", s.result.status)
	}
	s.r.logger.Debug("output drained", "status", s.result.status)
	return io.EOF
}
