//go:build unix

package child

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// wait blocks until pid terminates and reaps it. The goroutine calling it
// sits in a blocking syscall; the runtime hands its P to other goroutines.
func wait(pid int) waitResult {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, 0, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return waitResult{status: Running(), err: fmt.Errorf("wait4 %d: %w", pid, err)}
		}
		return waitResult{status: statusFromWait(ws)}
	}
}
