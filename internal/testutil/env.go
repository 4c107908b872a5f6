// Package testutil provides utilities for testing setup-tflint in isolation.
package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RunnerEnv describes an isolated runner filesystem created for one test.
type RunnerEnv struct {
	Root       string
	Temp       string
	ToolCache  string
	Workspace  string
	Home       string
	OutputFile string
	EnvFile    string
	PathFile   string
	StateFile  string
}

// SetupRunnerEnv creates isolated runner directories and file-command targets
// and points the runner environment variables at them.
// This ensures tests never touch:
// - The real tool cache of a CI runner
// - The real GITHUB_OUTPUT / GITHUB_ENV files of the job running the tests
// - The user's ~/.tflint.d plugin directory
//
// Cleanup is handled by t.TempDir and t.Setenv.
func SetupRunnerEnv(t *testing.T) *RunnerEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &RunnerEnv{
		Root:       tmpDir,
		Temp:       filepath.Join(tmpDir, "temp"),
		ToolCache:  filepath.Join(tmpDir, "toolcache"),
		Workspace:  filepath.Join(tmpDir, "workspace"),
		Home:       filepath.Join(tmpDir, "home"),
		OutputFile: filepath.Join(tmpDir, "files", "output"),
		EnvFile:    filepath.Join(tmpDir, "files", "env"),
		PathFile:   filepath.Join(tmpDir, "files", "path"),
		StateFile:  filepath.Join(tmpDir, "files", "state"),
	}

	for _, dir := range []string{env.Temp, env.ToolCache, env.Workspace, env.Home, filepath.Join(tmpDir, "files")} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}
	for _, f := range []string{env.OutputFile, env.EnvFile, env.PathFile, env.StateFile} {
		if err := os.WriteFile(f, nil, 0o600); err != nil {
			t.Fatalf("failed to create file command target %s: %v", f, err)
		}
	}

	t.Setenv("RUNNER_TEMP", env.Temp)
	t.Setenv("RUNNER_TOOL_CACHE", env.ToolCache)
	t.Setenv("RUNNER_OS", "Linux")
	t.Setenv("RUNNER_DEBUG", "")
	t.Setenv("GITHUB_WORKSPACE", env.Workspace)
	t.Setenv("GITHUB_OUTPUT", env.OutputFile)
	t.Setenv("GITHUB_ENV", env.EnvFile)
	t.Setenv("GITHUB_PATH", env.PathFile)
	t.Setenv("GITHUB_STATE", env.StateFile)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_API_URL", "")
	t.Setenv("HOME", env.Home)
	t.Setenv("TFLINT_PLUGIN_DIR", "")
	t.Setenv("TFLINT_CLI_PATH", "")

	return env
}

// Outputs parses the GITHUB_OUTPUT file.
func (e *RunnerEnv) Outputs(t *testing.T) map[string]string {
	t.Helper()
	return ReadKeyValueFile(t, e.OutputFile)
}

// ExportedEnv parses the GITHUB_ENV file.
func (e *RunnerEnv) ExportedEnv(t *testing.T) map[string]string {
	t.Helper()
	return ReadKeyValueFile(t, e.EnvFile)
}

// State parses the GITHUB_STATE file.
func (e *RunnerEnv) State(t *testing.T) map[string]string {
	t.Helper()
	return ReadKeyValueFile(t, e.StateFile)
}

// Paths returns the directories appended to GITHUB_PATH, in order.
func (e *RunnerEnv) Paths(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(e.PathFile)
	if err != nil {
		t.Fatalf("failed to read path file: %v", err)
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// ReadKeyValueFile parses a file-command file made of `name<<delimiter`
// heredoc records and plain `name=value` lines. Later records win.
func ReadKeyValueFile(t *testing.T, path string) map[string]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if name, delim, ok := strings.Cut(line, "<<"); ok {
			var body []string
			for scanner.Scan() {
				if scanner.Text() == delim {
					break
				}
				body = append(body, scanner.Text())
			}
			values[name] = strings.Join(body, "\n")
			continue
		}

		if name, value, ok := strings.Cut(line, "="); ok {
			values[name] = value
		}
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan %s: %v", path, err)
	}

	return values
}
