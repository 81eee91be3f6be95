//go:build unix

package child

import "golang.org/x/sys/unix"

// statusFromWait maps a raw wait status. A stopped process counts as
// signaled; any other transitional state maps to Running.
func statusFromWait(ws unix.WaitStatus) Status {
	switch {
	case ws.Exited():
		return Exited(ws.ExitStatus())
	case ws.Signaled():
		return Signaled(ws.Signal())
	case ws.Stopped():
		return Signaled(ws.StopSignal())
	default:
		return Running()
	}
}
