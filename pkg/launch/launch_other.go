//go:build !unix

package launch

import (
	"github.com/vertti/ttysplit/pkg/child"
	"github.com/vertti/ttysplit/pkg/command"
)

// Spawn is not supported outside unix; there is no fork/pty process model.
func (l *RealLauncher) Spawn(cmd *command.Command) (*child.Handle, error) {
	return nil, &SpawnError{Op: "fork/exec", Path: cmd.Path(), Err: ErrNotSupported}
}
