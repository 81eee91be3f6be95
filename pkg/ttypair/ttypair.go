// Package ttypair allocates pseudo-terminal master/slave pairs.
//
// A child writing to the slave end sees an interactive terminal (isatty is
// true, line buffering, colour enabled); the parent reads what was written
// from the master end.
package ttypair

import (
	"errors"
	"fmt"
	"os"

	"github.com/creack/pty"
)

// Default window size, used when no size is requested.
const (
	DefaultCols = 80
	DefaultRows = 24
)

// Size is a terminal window size in character cells.
type Size struct {
	Cols uint16
	Rows uint16
}

func (s Size) orDefault() Size {
	if s.Cols == 0 {
		s.Cols = DefaultCols
	}
	if s.Rows == 0 {
		s.Rows = DefaultRows
	}
	return s
}

// Pair holds both ends of one pseudo-terminal.
type Pair struct {
	Master *os.File
	Slave  *os.File
}

// Open allocates a pseudo-terminal and applies size to it.
// A zero size field falls back to DefaultCols / DefaultRows.
func Open(size Size) (*Pair, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}

	size = size.orDefault()
	if err := pty.Setsize(master, &pty.Winsize{Cols: size.Cols, Rows: size.Rows}); err != nil {
		_ = master.Close()
		_ = slave.Close()
		return nil, fmt.Errorf("set pty size: %w", err)
	}

	// pty leaves the master in blocking mode; reads on it must park on the
	// runtime poller so that Close can interrupt them.
	polled, err := pollable(master)
	if err != nil {
		_ = master.Close()
		_ = slave.Close()
		return nil, fmt.Errorf("set master non-blocking: %w", err)
	}

	return &Pair{Master: polled, Slave: slave}, nil
}

// CloseSlave closes the slave end. The parent calls it once the child holds
// its own copy.
func (p *Pair) CloseSlave() error {
	return p.Slave.Close()
}

// Close closes both ends. Ends that are already closed are ignored.
func (p *Pair) Close() error {
	var errs []error
	if err := p.Master.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, fmt.Errorf("close master: %w", err))
	}
	if err := p.Slave.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		errs = append(errs, fmt.Errorf("close slave: %w", err))
	}
	return errors.Join(errs...)
}

// GetSize reports the window size of a terminal file. It does not change the
// file's blocking mode.
func GetSize(f *os.File) (Size, error) {
	return winsize(f)
}
