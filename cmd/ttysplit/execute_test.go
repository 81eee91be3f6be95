package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vertti/ttysplit/pkg/child"
	"github.com/vertti/ttysplit/pkg/command"
	"github.com/vertti/ttysplit/pkg/launch"
	"github.com/vertti/ttysplit/pkg/ttypair"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	resetFlags(rootCmd)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// inTempDir keeps run file discovery away from the source tree.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func exitCode(err error) int {
	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return -1
}

func TestVersionFlag(t *testing.T) {
	output, err := executeCommand("--version")
	require.NoError(t, err)
	assert.Contains(t, output, "ttysplit")
}

func TestHelpFlag(t *testing.T) {
	output, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Contains(t, output, "ttysplit")
	assert.Contains(t, output, "run")
}

func TestRunCommand_TaggedOutput(t *testing.T) {
	inTempDir(t)

	output, err := executeCommand("run", "--color", "never", "--", "/bin/sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)

	assert.Contains(t, output, "[stdout] out\n")
	assert.Contains(t, output, "[stderr] err\n")
	assert.True(t, strings.HasSuffix(output, "[exit] exited(0)\n"), "output: %q", output)
}

func TestRunCommand_NoTag(t *testing.T) {
	inTempDir(t)

	output, err := executeCommand("run", "--no-tag", "--", "/bin/echo", "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain\n", output)
}

func TestRunCommand_ExitCode(t *testing.T) {
	inTempDir(t)

	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"exit code", "exit 3", 3},
		{"signal", "kill -TERM $$", 143},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand("run", "--no-tag", "--", "/bin/sh", "-c", tt.script)
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(err))
		})
	}
}

func TestRunCommand_LooksUpBareName(t *testing.T) {
	inTempDir(t)

	output, err := executeCommand("run", "--no-tag", "--", "echo", "found")
	require.NoError(t, err)
	assert.Equal(t, "found\n", output)
}

func TestRunCommand_JSON(t *testing.T) {
	inTempDir(t)

	output, err := executeCommand("run", "--format", "json", "--", "/bin/sh", "-c", "echo hi; exit 2")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "line", gjson.Get(lines[0], "event").String())
	assert.Equal(t, "stdout", gjson.Get(lines[0], "stream").String())
	assert.Equal(t, "hi", gjson.Get(lines[0], "line").String())
	assert.Len(t, gjson.Get(lines[0], "id").String(), 36)

	assert.Equal(t, "exit", gjson.Get(lines[1], "event").String())
	assert.Equal(t, int64(2), gjson.Get(lines[1], "code").Int())
	assert.Equal(t, gjson.Get(lines[0], "id").String(), gjson.Get(lines[1], "id").String())
}

func TestRunCommand_Environment(t *testing.T) {
	inTempDir(t)
	t.Setenv("TTYSPLIT_CLI_INHERITED", "yes")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "inherit",
			args: []string{"--env", "EXTRA=1"},
			want: []string{"TTYSPLIT_CLI_INHERITED=yes", "EXTRA=1"},
		},
		{
			name:    "clean",
			args:    []string{"--clean-env", "--env", "ONLY=1"},
			want:    []string{"ONLY=1"},
			notWant: []string{"TTYSPLIT_CLI_INHERITED"},
		},
		{
			name:    "pass matching",
			args:    []string{"--pass-env", "TTYSPLIT_CLI_*"},
			want:    []string{"TTYSPLIT_CLI_INHERITED=yes"},
			notWant: []string{"PATH="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--no-tag"}, tt.args...)
			args = append(args, "--", "/usr/bin/env")
			output, err := executeCommand(args...)
			require.NoError(t, err)

			for _, w := range tt.want {
				assert.Contains(t, output, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, output, nw)
			}
		})
	}
}

func TestRunCommand_RunFile(t *testing.T) {
	dir := inTempDir(t)
	writeTempFile(t, dir, ".ttysplit.toml", `command = "/bin/sh"
args = ["-c", "echo from-file; echo $GREETING >&2"]
clean_env = true

[env]
GREETING = "hello"

[output]
color = "never"
`)

	output, err := executeCommand("run")
	require.NoError(t, err)
	assert.Contains(t, output, "[stdout] from-file\n")
	assert.Contains(t, output, "[stderr] hello\n")
}

func TestRunCommand_FlagsOverrideRunFile(t *testing.T) {
	dir := inTempDir(t)
	path := writeTempFile(t, dir, "custom.yaml", `command: /bin/echo
args: [ignored]
output:
  format: json
`)

	output, err := executeCommand("run", "--config", path, "--format", "text", "--no-tag", "--", "/bin/echo", "override")
	require.NoError(t, err)
	assert.Equal(t, "override\n", output)
}

func TestRunCommand_Errors(t *testing.T) {
	inTempDir(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no command", []string{"run"}, "no command given"},
		{"unknown binary", []string{"run", "--", "nonexistent_command_xyz_12345"}, "executable file not found"},
		{"missing absolute path", []string{"run", "--", "/nonexistent/ttysplit"}, "no such file or directory"},
		{"bad format", []string{"run", "--format", "xml", "--", "/bin/true"}, "invalid output format"},
		{"bad color", []string{"run", "--color", "rainbow", "--", "/bin/true"}, "invalid color mode"},
		{"bad env", []string{"run", "--env", "NOEQUALS", "--", "/bin/true"}, "expected KEY=VALUE"},
		{"clean and pass", []string{"run", "--clean-env", "--pass-env", "X", "--", "/bin/true"}, "only one of"},
		{"bad pattern", []string{"run", "--pass-env", "[", "--", "/bin/true"}, "invalid env pattern"},
		{"bad log level", []string{"run", "--log-level", "loud", "--", "/bin/true"}, "invalid log level"},
		{"missing config", []string{"run", "--config", "/nonexistent/run.toml"}, "run file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, -1, exitCode(err))
		})
	}
}

// mockLauncher fails every spawn.
type mockLauncher struct {
	size ttypair.Size
	err  error
}

func (m *mockLauncher) Spawn(*command.Command) (*child.Handle, error) {
	return nil, m.err
}

func TestRunCommand_SpawnError(t *testing.T) {
	inTempDir(t)

	original := newLauncher
	defer func() { newLauncher = original }()

	var got *mockLauncher
	newLauncher = func(size ttypair.Size) launch.Launcher {
		got = &mockLauncher{size: size, err: &launch.SpawnError{Op: "openpty", Path: "/bin/true", Err: os.ErrPermission}}
		return got
	}

	_, err := executeCommand("run", "--", "/bin/true")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	require.NotNil(t, got)
}

func TestEnvCommand(t *testing.T) {
	inTempDir(t)

	original := envSource
	defer func() { envSource = original }()
	envSource = command.MapEnvSource{"HOME": "/home/x", "TERM": "xterm"}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"inherit", []string{"env"}, "HOME=/home/x\nTERM=xterm\n"},
		{"clean", []string{"env", "--clean-env", "--env", "A=1", "--env", "A=2"}, "A=1\nA=2\n"},
		{"pass", []string{"env", "--pass-env", "TE*", "--env", "B=x=y"}, "TERM=xterm\nB=x=y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeCommand(tt.args...)
			require.NoError(t, err)
			if tt.name == "inherit" {
				// MapEnvSource has no defined order.
				assert.ElementsMatch(t, strings.Fields(tt.want), strings.Fields(output))
				return
			}
			assert.Equal(t, tt.want, output)
		})
	}
}

func TestEnvCommand_RunFile(t *testing.T) {
	dir := inTempDir(t)
	writeTempFile(t, dir, ".ttysplit.yaml", `clean_env: true
env:
  Z: last
  A: first
`)

	output, err := executeCommand("env", "--env", "CLI=1")
	require.NoError(t, err)
	assert.Equal(t, "A=first\nZ=last\nCLI=1\n", output)
}
