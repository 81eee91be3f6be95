package child

import (
	"fmt"
	"syscall"
)

// State is the lifecycle state of a child process.
type State int

const (
	// StateRunning indicates no terminal status has been observed yet.
	StateRunning State = iota
	// StateExited indicates the process exited normally with a code.
	StateExited
	// StateSignaled indicates the process was terminated or stopped by a signal.
	StateSignaled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateSignaled:
		return "signaled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Status is the termination status of a child process.
// Code is meaningful only for StateExited, Signal only for StateSignaled.
type Status struct {
	State  State
	Code   int
	Signal syscall.Signal
}

// Running is the status before the child has been reaped.
func Running() Status { return Status{State: StateRunning} }

// Exited returns the status of a process that exited with code.
func Exited(code int) Status { return Status{State: StateExited, Code: code} }

// Signaled returns the status of a process ended by sig.
func Signaled(sig syscall.Signal) Status { return Status{State: StateSignaled, Signal: sig} }

// Terminal reports whether s is a final status.
func (s Status) Terminal() bool {
	return s.State == StateExited || s.State == StateSignaled
}

// Success reports whether the process exited with code 0.
func (s Status) Success() bool {
	return s.State == StateExited && s.Code == 0
}

// ExitCode maps the status to a shell-style exit code: the code itself for an
// exited process, 128+signal for a signaled one, and -1 while running.
func (s Status) ExitCode() int {
	switch s.State {
	case StateExited:
		return s.Code
	case StateSignaled:
		return 128 + int(s.Signal)
	default:
		return -1
	}
}

func (s Status) String() string {
	switch s.State {
	case StateExited:
		return fmt.Sprintf("exited(%d)", s.Code)
	case StateSignaled:
		return fmt.Sprintf("signaled(%s)", s.Signal)
	default:
		return s.State.String()
	}
}
