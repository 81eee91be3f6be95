//go:build unix

package ttypair

import (
	"os"

	"golang.org/x/sys/unix"
)

// pollable replaces f with a non-blocking duplicate registered with the
// runtime poller and closes f.
func pollable(f *os.File) (*os.File, error) {
	var fd int
	var dupErr error
	// Control does not touch the blocking mode the way Fd does.
	err := control(f, func(raw uintptr) {
		fd, dupErr = unix.FcntlInt(raw, unix.F_DUPFD_CLOEXEC, 0)
	})
	if err == nil {
		err = dupErr
	}
	if err != nil {
		return nil, err
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	// os.NewFile registers a non-blocking descriptor with the poller.
	nf := os.NewFile(uintptr(fd), f.Name())
	_ = f.Close()
	return nf, nil
}

func winsize(f *os.File) (Size, error) {
	var ws *unix.Winsize
	var wsErr error
	if err := control(f, func(fd uintptr) {
		ws, wsErr = unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	}); err != nil {
		return Size{}, err
	}
	if wsErr != nil {
		return Size{}, wsErr
	}
	return Size{Cols: ws.Col, Rows: ws.Row}, nil
}

func control(f *os.File, fn func(fd uintptr)) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return err
	}
	return rc.Control(fn)
}
