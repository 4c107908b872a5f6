package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestActionsFormatter(t *testing.T) {
	tests := []struct {
		name  string
		level logrus.Level
		msg   string
		data  logrus.Fields
		want  string
	}{
		{
			name:  "info_is_plain",
			level: logrus.InfoLevel,
			msg:   "Downloading tflint",
			want:  "Downloading tflint\n",
		},
		{
			name:  "debug_prefix",
			level: logrus.DebugLevel,
			msg:   "cache miss",
			want:  "::debug::cache miss\n",
		},
		{
			name:  "warning_prefix",
			level: logrus.WarnLevel,
			msg:   "no config files",
			want:  "::warning::no config files\n",
		},
		{
			name:  "error_escapes_newlines",
			level: logrus.ErrorLevel,
			msg:   "line one\nline two 100%",
			want:  "::error::line one%0Aline two 100%25\n",
		},
		{
			name:  "fields_sorted_component_dropped",
			level: logrus.DebugLevel,
			msg:   "resolved",
			data:  logrus.Fields{"version": "v0.50.0", "component": "release", "arch": "amd64"},
			want:  "::debug::resolved arch=amd64 version=v0.50.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &logrus.Entry{Level: tt.level, Message: tt.msg, Data: tt.data}
			if entry.Data == nil {
				entry.Data = logrus.Fields{}
			}

			got, err := (&ActionsFormatter{}).Format(entry)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Format() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantLevel logrus.Level
		wantErr   bool
	}{
		{name: "defaults", config: Config{}, wantLevel: logrus.InfoLevel},
		{name: "explicit_warn", config: Config{Level: "warn", Format: FormatText}, wantLevel: logrus.WarnLevel},
		{name: "debug_override", config: Config{Level: "error", Debug: true}, wantLevel: logrus.DebugLevel},
		{name: "json_format", config: Config{Format: FormatJSON}, wantLevel: logrus.InfoLevel},
		{name: "invalid_level", config: Config{Level: "loud"}, wantErr: true},
		{name: "invalid_format", config: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logrus.New()
			err := Configure(logger, tt.config, &bytes.Buffer{})

			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.wantLevel)
			}
		})
	}
}

func TestConfigure_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "setup-tflint.log")

	var stdout bytes.Buffer
	logger := logrus.New()
	if err := Configure(logger, Config{File: logFile}, &stdout); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	logger.Info("hello file")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("log file missing message, got %q", string(data))
	}
	if !strings.Contains(stdout.String(), "hello file") {
		t.Errorf("stdout missing message, got %q", stdout.String())
	}
}
