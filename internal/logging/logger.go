// Package logging configures the process-wide logrus logger.
//
// The default "actions" format speaks the runner's workflow-command syntax so
// debug lines are folded away unless step debugging is on and warnings and
// errors surface as annotations.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields type is an alias for logrus.Fields
type Fields = logrus.Fields

// Supported output formats.
const (
	FormatActions = "actions"
	FormatText    = "text"
	FormatJSON    = "json"
)

// Config for the logger
type Config struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
	// File enables an additional rotating log file when non-empty.
	File       string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"log_max_size"`
	MaxAge     int    `mapstructure:"log_max_age"`
	MaxBackups int    `mapstructure:"log_max_backups"`
	Compress   bool   `mapstructure:"log_compress"`
	// Debug forces the debug level (set when the runner has step debugging enabled).
	Debug bool `mapstructure:"-"`
}

// Init configures logrus.StandardLogger and returns it. Output goes to out
// (stdout when nil) plus the optional rotating file.
func Init(config Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.StandardLogger()
	if err := Configure(logger, config, out); err != nil {
		return nil, err
	}
	return logger, nil
}

// Configure applies config to an existing logger.
func Configure(logger *logrus.Logger, config Config, out io.Writer) error {
	levelName := config.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if config.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "", FormatActions:
		logger.SetFormatter(&ActionsFormatter{})
	case FormatText:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:          true,
			DisableSorting:         true,
			DisableLevelTruncation: true,
			PadLevelText:           true,
			TimestampFormat:        "2006-01-02 15:04:05",
		})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		return fmt.Errorf("invalid log format: %q", config.Format)
	}

	if out == nil {
		out = os.Stdout
	}
	outputs := []io.Writer{out}

	if config.File != "" {
		if err := os.MkdirAll(filepath.Dir(config.File), 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		outputs = append(outputs, &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSize,
			MaxAge:     config.MaxAge,
			MaxBackups: config.MaxBackups,
			Compress:   config.Compress,
		})
	}

	if len(outputs) > 1 {
		logger.SetOutput(io.MultiWriter(outputs...))
	} else {
		logger.SetOutput(outputs[0])
	}

	return nil
}

// Component returns an entry tagged with the component name, bound to the
// standard logger.
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
