package actions

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tflint-actions/setup-tflint/internal/testutil"
)

func fixedDelimiter() string { return "fixed" }

func TestRunner_SetOutput(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "single_line", value: "v0.50.0"},
		{name: "multi_line", value: "line one\nline two"},
		{name: "empty", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.SetupRunnerEnv(t)
			r := New()

			if err := r.SetOutput("result", tt.value); err != nil {
				t.Fatalf("SetOutput() error = %v", err)
			}

			outputs := env.Outputs(t)
			if got := outputs["result"]; got != tt.value {
				t.Errorf("output = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestRunner_SetOutput_RecordFormat(t *testing.T) {
	env := testutil.SetupRunnerEnv(t)
	r := New(WithDelimiterSource(fixedDelimiter))

	if err := r.SetOutput("exitcode", "2"); err != nil {
		t.Fatalf("SetOutput() error = %v", err)
	}

	data, err := os.ReadFile(env.OutputFile)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	want := "exitcode<<ghadelimiter_fixed\n2\nghadelimiter_fixed\n"
	if string(data) != want {
		t.Errorf("record = %q, want %q", string(data), want)
	}
}

func TestRunner_SetOutput_RejectsDelimiterInValue(t *testing.T) {
	testutil.SetupRunnerEnv(t)
	r := New(WithDelimiterSource(fixedDelimiter))

	err := r.SetOutput("stdout", "before\nghadelimiter_fixed\nafter")
	if err == nil {
		t.Fatal("expected error for value containing the delimiter")
	}
}

func TestRunner_SetOutput_LegacyFallback(t *testing.T) {
	testutil.SetupRunnerEnv(t)
	t.Setenv(EnvOutput, "")

	var stdout bytes.Buffer
	r := New(WithStdout(&stdout))

	if err := r.SetOutput("stderr", "a\nb"); err != nil {
		t.Fatalf("SetOutput() error = %v", err)
	}

	want := "::set-output name=stderr::a%0Ab\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunner_ExportVariable(t *testing.T) {
	env := testutil.SetupRunnerEnv(t)
	r := New()

	if err := r.ExportVariable("TFLINT_CLI_PATH", "/opt/tflint"); err != nil {
		t.Fatalf("ExportVariable() error = %v", err)
	}

	if got := os.Getenv("TFLINT_CLI_PATH"); got != "/opt/tflint" {
		t.Errorf("process env = %q, want /opt/tflint", got)
	}
	if got := env.ExportedEnv(t)["TFLINT_CLI_PATH"]; got != "/opt/tflint" {
		t.Errorf("GITHUB_ENV value = %q, want /opt/tflint", got)
	}
}

func TestRunner_ExportVariable_RequiresEnvFile(t *testing.T) {
	testutil.SetupRunnerEnv(t)
	t.Setenv(EnvEnv, "")

	var stdout bytes.Buffer
	r := New(WithStdout(&stdout))

	err := r.ExportVariable("TFLINT_CLI_PATH", "/opt/tflint")
	if err == nil {
		t.Fatal("expected error when GITHUB_ENV is unset")
	}
	if !strings.Contains(err.Error(), EnvEnv) {
		t.Errorf("error = %v, want mention of %s", err, EnvEnv)
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected workflow command on stdout: %q", stdout.String())
	}
	if got := os.Getenv("TFLINT_CLI_PATH"); got != "" {
		t.Errorf("process env = %q, want unchanged", got)
	}
}

func TestRunner_AddPath(t *testing.T) {
	env := testutil.SetupRunnerEnv(t)
	t.Setenv("PATH", "/usr/bin")
	r := New()

	dir := filepath.Join(env.ToolCache, "tflint")
	if err := r.AddPath(dir); err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}

	paths := env.Paths(t)
	if len(paths) != 1 || paths[0] != dir {
		t.Errorf("GITHUB_PATH = %v, want [%s]", paths, dir)
	}

	want := dir + string(os.PathListSeparator) + "/usr/bin"
	if got := os.Getenv("PATH"); got != want {
		t.Errorf("PATH = %q, want %q", got, want)
	}
}

func TestRunner_State(t *testing.T) {
	env := testutil.SetupRunnerEnv(t)
	r := New()

	if err := r.SaveState("TFLINT_CACHE_KEY", "tflint-plugins-Linux-abc"); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if got := env.State(t)["TFLINT_CACHE_KEY"]; got != "tflint-plugins-Linux-abc" {
		t.Errorf("state file value = %q", got)
	}

	// The runner exposes saved state to the post step as STATE_<name>.
	t.Setenv("STATE_TFLINT_CACHE_KEY", "tflint-plugins-Linux-abc")
	if got := r.GetState("TFLINT_CACHE_KEY"); got != "tflint-plugins-Linux-abc" {
		t.Errorf("GetState() = %q", got)
	}
	if got := r.GetState("MISSING"); got != "" {
		t.Errorf("GetState(MISSING) = %q, want empty", got)
	}
}

func TestRunner_InstallMatcher(t *testing.T) {
	env := testutil.SetupRunnerEnv(t)

	var stdout bytes.Buffer
	r := New(WithStdout(&stdout))

	path, err := r.InstallMatcher(env.Temp)
	if err != nil {
		t.Fatalf("InstallMatcher() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read matcher: %v", err)
	}
	if !strings.Contains(string(data), "problemMatcher") {
		t.Error("matcher file does not contain a problemMatcher definition")
	}

	if want := "::add-matcher::" + path + "\n"; stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		props   map[string]string
		message string
		want    string
	}{
		{
			name:    "no_properties",
			command: "debug",
			message: "hello",
			want:    "::debug::hello",
		},
		{
			name:    "escaped_message",
			command: "error",
			message: "50% done\r\nnext",
			want:    "::error::50%25 done%0D%0Anext",
		},
		{
			name:    "escaped_properties",
			command: "set-output",
			props:   map[string]string{"name": "a:b,c"},
			message: "v",
			want:    "::set-output name=a%3Ab%2Cc::v",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCommand(tt.command, tt.props, tt.message); got != tt.want {
				t.Errorf("formatCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunner_IsDebug(t *testing.T) {
	testutil.SetupRunnerEnv(t)
	r := New()

	if r.IsDebug() {
		t.Error("IsDebug() = true with RUNNER_DEBUG unset")
	}

	t.Setenv(EnvDebug, "1")
	if !r.IsDebug() {
		t.Error("IsDebug() = false with RUNNER_DEBUG=1")
	}
}
