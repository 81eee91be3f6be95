package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vertti/ttysplit/pkg/command"
	"github.com/vertti/ttysplit/pkg/config"
)

// Flags shared by run and env.
var (
	configPath string
	cleanEnv   bool
	passEnv    []string
	setEnv     []string
)

// envSource is swapped in tests.
var envSource command.EnvSource = &command.RealEnvSource{}

func addEnvFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configPath, "config", "", "path to run file (default: search up for .ttysplit.toml or .ttysplit.yaml)")
	cmd.Flags().BoolVar(&cleanEnv, "clean-env", false, "start the child with an empty environment")
	cmd.Flags().StringArrayVar(&passEnv, "pass-env", nil, "inherit only variables whose name matches this glob (repeatable)")
	cmd.Flags().StringArrayVar(&setEnv, "env", nil, "set KEY=VALUE in the child environment (repeatable)")
}

// loadConfig returns the run file's config, or an empty one when no run file
// exists and none was named.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	path, err := config.FindFile(wd, configPath)
	if errors.Is(err, config.ErrNotFound) && configPath == "" {
		return &config.Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// newBuilder applies the environment settings from cfg and the flags, which
// take precedence, to a builder for path.
func newBuilder(path string, cfg *config.Config) (command.Builder, error) {
	clean := cleanEnv || cfg.CleanEnv
	patterns := append(append([]string{}, cfg.PassEnv...), passEnv...)
	if err := requireAtMostOne(
		flagSet{"--clean-env", clean},
		flagSet{"--pass-env", len(patterns) > 0},
	); err != nil {
		return command.Builder{}, err
	}

	assignments, err := parseAssignments("--env", setEnv)
	if err != nil {
		return command.Builder{}, err
	}

	var b command.Builder
	switch {
	case clean:
		b, err = command.CleanEnvironment(path)
	case len(patterns) > 0:
		b, err = command.InheritMatching(path, envSource, patterns...)
	default:
		b, err = command.InheritFrom(path, envSource)
	}
	if err != nil {
		return command.Builder{}, err
	}

	if b, err = b.Env(cfg.Env); err != nil {
		return command.Builder{}, fmt.Errorf("run file env: %w", err)
	}
	for _, v := range assignments {
		if b, err = b.Var(v.Key(), v.Value()); err != nil {
			return command.Builder{}, err
		}
	}
	return b, nil
}
