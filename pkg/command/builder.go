// Package command describes a program to run: executable path, arguments and
// environment, validated up front so that spawning never has to.
package command

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/gobwas/glob"

	"github.com/vertti/ttysplit/pkg/envvar"
)

// Builder accumulates a Command. Every configuration method returns a new
// Builder and leaves the receiver untouched.
type Builder struct {
	path   string
	args   []string
	env    []envvar.EnvVar
	logger *slog.Logger
}

// New is InheritEnvironment.
func New(path string) (Builder, error) {
	return InheritEnvironment(path)
}

// InheritEnvironment starts a Builder with a copy of the current process
// environment.
func InheritEnvironment(path string) (Builder, error) {
	return InheritFrom(path, &RealEnvSource{})
}

// InheritFrom starts a Builder with the environment reported by src.
func InheritFrom(path string, src EnvSource) (Builder, error) {
	b, err := CleanEnvironment(path)
	if err != nil {
		return Builder{}, err
	}
	env, err := envvar.FromEnviron(src.Environ())
	if err != nil {
		return Builder{}, err
	}
	b.env = env
	return b, nil
}

// InheritMatching starts a Builder with only those variables from src whose
// key matches one of the glob patterns (e.g. "LC_*", "HOME").
func InheritMatching(path string, src EnvSource, patterns ...string) (Builder, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return Builder{}, fmt.Errorf("invalid env pattern %q: %w", p, err)
		}
		matchers = append(matchers, g)
	}

	b, err := CleanEnvironment(path)
	if err != nil {
		return Builder{}, err
	}
	env, err := envvar.FromEnviron(src.Environ())
	if err != nil {
		return Builder{}, err
	}
	for _, v := range env {
		if slices.ContainsFunc(matchers, func(g glob.Glob) bool { return g.Match(v.Key()) }) {
			b.env = append(b.env, v)
		}
	}
	return b, nil
}

// CleanEnvironment starts a Builder with an empty environment.
func CleanEnvironment(path string) (Builder, error) {
	if err := envvar.Validate("path", path); err != nil {
		return Builder{}, err
	}
	return Builder{path: path}, nil
}

// Arg appends one argument.
func (b Builder) Arg(arg string) (Builder, error) {
	if err := envvar.Validate("arg", arg); err != nil {
		return b, err
	}
	out := b.clone()
	out.args = append(out.args, arg)
	return out, nil
}

// Args replaces the argument list.
func (b Builder) Args(args []string) (Builder, error) {
	for _, a := range args {
		if err := envvar.Validate("arg", a); err != nil {
			return b, err
		}
	}
	out := b.clone()
	out.args = slices.Clone(args)
	return out, nil
}

// Env appends every entry of vars, in key order. Existing entries with the
// same key are kept; nothing is deduplicated.
func (b Builder) Env(vars map[string]string) (Builder, error) {
	add := make([]envvar.EnvVar, 0, len(vars))
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		v, err := envvar.New(k, vars[k])
		if err != nil {
			return b, err
		}
		add = append(add, v)
	}
	out := b.clone()
	out.env = append(out.env, add...)
	return out, nil
}

// Var appends a single environment entry.
func (b Builder) Var(key, value string) (Builder, error) {
	v, err := envvar.New(key, value)
	if err != nil {
		return b, err
	}
	out := b.clone()
	out.env = append(out.env, v)
	return out, nil
}

// Logger sets the logger used while spawning and streaming.
func (b Builder) Logger(l *slog.Logger) Builder {
	out := b.clone()
	out.logger = l
	return out
}

// Build freezes the Builder into a Command.
func (b Builder) Build() *Command {
	c := b.clone()
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{
		path:   c.path,
		args:   c.args,
		env:    c.env,
		logger: logger,
	}
}

func (b Builder) clone() Builder {
	return Builder{
		path:   b.path,
		args:   slices.Clone(b.args),
		env:    slices.Clone(b.env),
		logger: b.logger,
	}
}
