//go:build unix

package launch

import (
	"os"
	"syscall"

	"github.com/vertti/ttysplit/pkg/child"
	"github.com/vertti/ttysplit/pkg/command"
	"github.com/vertti/ttysplit/pkg/ttypair"
)

// forkExec is swapped in tests.
var forkExec = syscall.ForkExec

// Spawn opens one pty for stdout and one for stderr, then forks and execs.
//
// Everything between fork and exec happens inside syscall.ForkExec: the child
// dup2s the slaves onto descriptors 1 and 2, every other descriptor is
// close-on-exec, and an exec failure travels back over the runtime's own
// close-on-exec pipe, so it surfaces here with its errno and the failed child
// already reaped.
func (l *RealLauncher) Spawn(cmd *command.Command) (*child.Handle, error) {
	logger := cmd.Logger()
	id := newSpawnID()

	stdout, err := ttypair.Open(l.Size)
	if err != nil {
		return nil, &SpawnError{Op: "openpty", Path: cmd.Path(), Err: err}
	}
	stderr, err := ttypair.Open(l.Size)
	if err != nil {
		_ = stdout.Close()
		return nil, &SpawnError{Op: "openpty", Path: cmd.Path(), Err: err}
	}

	// stdin is not forwarded.
	stdin, err := os.Open(os.DevNull)
	if err != nil {
		_ = stdout.Close()
		_ = stderr.Close()
		return nil, &SpawnError{Op: "open stdin", Path: cmd.Path(), Err: err}
	}

	attr := &syscall.ProcAttr{
		Env:   cmd.Environ(),
		Files: []uintptr{stdin.Fd(), stdout.Slave.Fd(), stderr.Slave.Fd()},
	}

	logger.Debug("spawning", "spawn", id, "cmd", cmd)
	pid, err := forkExec(cmd.Path(), cmd.Argv(), attr)

	// The slaves belong to the child now, or to nobody.
	_ = stdin.Close()
	_ = stdout.CloseSlave()
	_ = stderr.CloseSlave()

	if err != nil {
		_ = stdout.Master.Close()
		_ = stderr.Master.Close()
		return nil, &SpawnError{Op: "fork/exec", Path: cmd.Path(), Err: err}
	}

	logger.Debug("spawned", "spawn", id, "pid", pid)
	return child.NewHandle(id, pid, stdout.Master, stderr.Master, logger), nil
}
