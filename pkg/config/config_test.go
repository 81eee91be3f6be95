package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFindFile_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.toml")
	writeFile(t, path, "")

	found, err := FindFile(tmpDir, path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = FindFile(tmpDir, filepath.Join(tmpDir, "nonexistent"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindFile_TraverseUp(t *testing.T) {
	tmpDir := t.TempDir()
	subdir := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(subdir, 0o700))

	path := filepath.Join(tmpDir, ".ttysplit.yaml")
	writeFile(t, path, "")

	found, err := FindFile(subdir, "")
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindFile_PrefersTOML(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".ttysplit.yaml"), "")
	writeFile(t, filepath.Join(tmpDir, ".ttysplit.toml"), "")

	found, err := FindFile(tmpDir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, ".ttysplit.toml"), found)
}

func TestFindFile_StopAtGit(t *testing.T) {
	tmpDir := t.TempDir()
	projectDir := filepath.Join(tmpDir, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, ".git"), 0o700))
	subdir := filepath.Join(projectDir, "src")
	require.NoError(t, os.MkdirAll(subdir, 0o700))

	// Above the repository root, must not be found.
	writeFile(t, filepath.Join(tmpDir, ".ttysplit.toml"), "")

	_, err := FindFile(subdir, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad(t *testing.T) {
	want := &Config{
		Command:  "make",
		Args:     []string{"test", "-j4"},
		PassEnv:  []string{"PATH", "GO*"},
		Env:      map[string]string{"CI": "1"},
		Output:   Output{Format: FormatJSON, Color: "never", NoTag: true},
		CleanEnv: false,
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: ".ttysplit.toml",
			content: `command = "make"
args = ["test", "-j4"]
pass_env = ["PATH", "GO*"]

[env]
CI = "1"

[output]
format = "json"
color = "never"
no_tag = true
`,
		},
		{
			name: "yaml",
			file: ".ttysplit.yaml",
			content: `command: make
args: [test, -j4]
pass_env: [PATH, "GO*"]
env:
  CI: "1"
output:
  format: json
  color: never
  no_tag: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unknown toml key", "run.toml", "comand = \"make\"\n", `unknown key "comand"`},
		{"unknown yaml key", "run.yaml", "comand: make\n", "comand"},
		{"bad toml", "run.toml", "command = \n", "parse"},
		{"bad format", "run.toml", "[output]\nformat = \"xml\"\n", `invalid output format "xml"`},
		{"clean and pass", "run.yaml", "clean_env: true\npass_env: [PATH]\n", "mutually exclusive"},
		{"extension", "run.ini", "", "unsupported run file extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ttysplit.yaml")
	writeFile(t, path, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
