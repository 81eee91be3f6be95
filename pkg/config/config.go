// Package config loads ttysplit run files.
//
// A run file describes the command to spawn and how its environment and
// output are set up. It is written in TOML (.ttysplit.toml) or YAML
// (.ttysplit.yaml / .ttysplit.yml):
//
//	command = "make"
//	args = ["test"]
//	clean_env = true
//	pass_env = ["PATH", "GO*"]
//
//	[env]
//	CI = "1"
//
//	[output]
//	format = "json"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames are the run file names searched for, in order of preference.
var FileNames = []string{".ttysplit.toml", ".ttysplit.yaml", ".ttysplit.yml"}

// ErrNotFound is returned by FindFile when no run file exists.
var ErrNotFound = errors.New("run file not found")

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the content of a run file.
type Config struct {
	Command  string            `toml:"command" yaml:"command"`
	Args     []string          `toml:"args" yaml:"args"`
	CleanEnv bool              `toml:"clean_env" yaml:"clean_env"`
	PassEnv  []string          `toml:"pass_env" yaml:"pass_env"`
	Env      map[string]string `toml:"env" yaml:"env"`
	Output   Output            `toml:"output" yaml:"output"`
}

// Output configures how lines are rendered.
type Output struct {
	Format string `toml:"format" yaml:"format"`
	Color  string `toml:"color" yaml:"color"`
	NoTag  bool   `toml:"no_tag" yaml:"no_tag"`
}

// FindFile returns explicitPath if set, otherwise searches upward from
// startDir for a run file. The search stops at the home directory, at a
// directory containing .git, or at the filesystem root.
func FindFile(startDir, explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return explicitPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(currentDir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if currentDir == homeDir {
			break
		}

		if _, err := os.Stat(filepath.Join(currentDir, ".git")); err == nil {
			break
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", ErrNotFound
}

// Load reads and validates a run file. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // reading the run file is the point
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported run file extension %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	if c.Output.Format != "" && !slices.Contains([]string{FormatText, FormatJSON}, c.Output.Format) {
		return fmt.Errorf("invalid output format %q (use %s or %s)", c.Output.Format, FormatText, FormatJSON)
	}
	if c.CleanEnv && len(c.PassEnv) > 0 {
		return errors.New("clean_env and pass_env are mutually exclusive")
	}
	return nil
}
