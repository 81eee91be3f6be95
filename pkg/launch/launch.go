// Package launch spawns a command with stdout and stderr attached to two
// separate pseudo-terminals.
package launch

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/google/uuid"

	"github.com/vertti/ttysplit/pkg/child"
	"github.com/vertti/ttysplit/pkg/command"
	"github.com/vertti/ttysplit/pkg/ttypair"
)

// ErrNotSupported indicates spawning under a pty is unavailable on this platform.
var ErrNotSupported = errors.New("pty spawning is not supported on this platform")

// Launcher starts commands.
type Launcher interface {
	// Spawn starts cmd and returns a handle owning its pid and output.
	// On error no child process is left behind.
	Spawn(cmd *command.Command) (*child.Handle, error)
}

// RealLauncher is the production implementation.
type RealLauncher struct {
	// Size is applied to both pseudo-terminals. Zero fields fall back to
	// ttypair defaults.
	Size ttypair.Size
}

var defaultLauncher = &RealLauncher{}

// Spawn starts cmd with the default launcher.
func Spawn(cmd *command.Command) (*child.Handle, error) {
	return defaultLauncher.Spawn(cmd)
}

// SpawnError reports a failure before or during process creation.
type SpawnError struct {
	Op   string // "openpty", "open stdin" or "fork/exec"
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// LookPath finds an executable in PATH. Command paths are passed to execve
// as-is, so callers resolve bare names first.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func newSpawnID() string {
	return uuid.NewString()
}
