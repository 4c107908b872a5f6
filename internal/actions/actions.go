// Package actions implements the runner's file-command protocol: step
// outputs, exported environment, PATH additions, step state, and problem
// matcher registration.
package actions

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Environment variable names used by the runner.
const (
	EnvOutput    = "GITHUB_OUTPUT"
	EnvEnv       = "GITHUB_ENV"
	EnvPath      = "GITHUB_PATH"
	EnvState     = "GITHUB_STATE"
	EnvTemp      = "RUNNER_TEMP"
	EnvToolCache = "RUNNER_TOOL_CACHE"
	EnvRunnerOS  = "RUNNER_OS"
	EnvDebug     = "RUNNER_DEBUG"

	statePrefix = "STATE_"
)

// Runner writes workflow commands. The zero value is not usable; use New.
type Runner struct {
	stdout  io.Writer
	getenv  func(string) string
	setenv  func(string, string) error
	newUUID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdout sets the writer used for stdout workflow commands.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// WithDelimiterSource overrides the heredoc delimiter generator.
func WithDelimiterSource(fn func() string) Option {
	return func(r *Runner) {
		r.newUUID = fn
	}
}

// New creates a Runner bound to the current process environment.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdout:  os.Stdout,
		getenv:  os.Getenv,
		setenv:  os.Setenv,
		newUUID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetOutput publishes a step output.
func (r *Runner) SetOutput(name, value string) error {
	if path := r.getenv(EnvOutput); path != "" {
		return r.appendKeyValue(path, name, value)
	}

	// Legacy runners without GITHUB_OUTPUT.
	r.issue("set-output", map[string]string{"name": name}, value)
	return nil
}

// ExportVariable makes name=value visible to later steps and to this process.
// It fails without GITHUB_ENV: runners reject the old set-env command, so
// later steps would never see the value.
func (r *Runner) ExportVariable(name, value string) error {
	path := r.getenv(EnvEnv)
	if path == "" {
		return fmt.Errorf("export %s: %s is not set", name, EnvEnv)
	}

	if err := r.setenv(name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return r.appendKeyValue(path, name, value)
}

// AddPath prepends dir to PATH for later steps and this process.
func (r *Runner) AddPath(dir string) error {
	if path := r.getenv(EnvPath); path != "" {
		if err := appendLine(path, dir); err != nil {
			return fmt.Errorf("add path: %w", err)
		}
	} else {
		r.issue("add-path", nil, dir)
	}

	current := r.getenv("PATH")
	newPath := dir
	if current != "" {
		newPath = dir + string(os.PathListSeparator) + current
	}
	if err := r.setenv("PATH", newPath); err != nil {
		return fmt.Errorf("set PATH: %w", err)
	}
	return nil
}

// SaveState stores a value for the post step of the same action.
func (r *Runner) SaveState(name, value string) error {
	if path := r.getenv(EnvState); path != "" {
		return r.appendKeyValue(path, name, value)
	}

	r.issue("save-state", map[string]string{"name": name}, value)
	return nil
}

// GetState returns a value saved by SaveState in an earlier step.
func (r *Runner) GetState(name string) string {
	return r.getenv(statePrefix + name)
}

// AddMatcher registers a problem matcher file.
func (r *Runner) AddMatcher(path string) {
	r.issue("add-matcher", nil, path)
}

// Debug emits a debug annotation.
func (r *Runner) Debug(msg string) {
	r.issue("debug", nil, msg)
}

// Error emits an error annotation.
func (r *Runner) Error(msg string) {
	r.issue("error", nil, msg)
}

// IsDebug reports whether step debug logging is enabled.
func (r *Runner) IsDebug() bool {
	return r.getenv(EnvDebug) == "1"
}

// TempDir returns RUNNER_TEMP, falling back to the OS temp dir.
func (r *Runner) TempDir() string {
	if dir := r.getenv(EnvTemp); dir != "" {
		return dir
	}
	return os.TempDir()
}

// OS returns RUNNER_OS (Linux, Windows, macOS).
func (r *Runner) OS() string {
	return r.getenv(EnvRunnerOS)
}

func (r *Runner) appendKeyValue(path, name, value string) error {
	delimiter := "ghadelimiter_" + r.newUUID()

	// A delimiter inside the name or value would let a payload inject records.
	if strings.Contains(name, delimiter) {
		return fmt.Errorf("unexpected input: name should not contain the delimiter %q", delimiter)
	}
	if strings.Contains(value, delimiter) {
		return fmt.Errorf("unexpected input: value should not contain the delimiter %q", delimiter)
	}

	record := fmt.Sprintf("%s<<%s\n%s\n%s", name, delimiter, value, delimiter)
	if err := appendLine(path, record); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (r *Runner) issue(command string, props map[string]string, message string) {
	fmt.Fprintln(r.stdout, formatCommand(command, props, message))
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
