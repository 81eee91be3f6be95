package command

import (
	"log/slog"
	"slices"

	"github.com/vertti/ttysplit/pkg/envvar"
)

// Command is an immutable description of a program to run.
// Create one with a Builder.
type Command struct {
	path   string
	args   []string
	env    []envvar.EnvVar
	logger *slog.Logger
}

// Path returns the executable path. It is passed to execve unchanged;
// no PATH lookup happens.
func (c *Command) Path() string { return c.path }

// Args returns a copy of the arguments, without argv[0].
func (c *Command) Args() []string { return slices.Clone(c.args) }

// Env returns a copy of the environment entries in insertion order.
func (c *Command) Env() []envvar.EnvVar { return slices.Clone(c.env) }

// Logger returns the logger attached at build time.
func (c *Command) Logger() *slog.Logger { return c.logger }

// Argv returns the full argument vector with the path as argv[0].
func (c *Command) Argv() []string {
	argv := make([]string, 0, len(c.args)+1)
	argv = append(argv, c.path)
	return append(argv, c.args...)
}

// Environ returns the environment formatted as "key=value" entries.
func (c *Command) Environ() []string {
	out := make([]string, len(c.env))
	for i, v := range c.env {
		out[i] = v.String()
	}
	return out
}

// LogValue keeps environment values out of logs.
func (c *Command) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", c.path),
		slog.Any("args", c.args),
		slog.Int("env", len(c.env)),
	)
}
