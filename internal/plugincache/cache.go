package plugincache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tflint-actions/setup-tflint/internal/logging"
)

// Runner is the part of the runner protocol the cache needs.
type Runner interface {
	SaveState(name, value string) error
	GetState(name string) string
	SetOutput(name, value string) error
}

// Manager drives restore in the main step and save in the post step.
type Manager struct {
	store  Store
	runner Runner
	logger *logrus.Entry
}

// NewManager creates a Manager. A nil logger uses the package component
// logger.
func NewManager(store Store, runner Runner, logger *logrus.Entry) *Manager {
	if logger == nil {
		logger = logging.Component("plugincache")
	}
	return &Manager{
		store:  store,
		runner: runner,
		logger: logger,
	}
}

// RestoreOptions configures a restore.
type RestoreOptions struct {
	Enabled       bool
	ConfigPattern string
	PluginDir     string // already resolved; see ResolvePluginDir
	RunnerOS      string
	WorkDir       string // base for relative config patterns
}

// RestoreResult describes what Restore did.
type RestoreResult struct {
	PrimaryKey string
	MatchedKey string
	Hit        bool
	Skipped    bool
}

// Restore restores the plugin directory. It only returns an error when
// step state or outputs cannot be written; cache problems are warnings.
func (m *Manager) Restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error) {
	if !opts.Enabled {
		m.logger.Debug("Cache is not enabled")
		return &RestoreResult{Skipped: true}, nil
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		workDir = wd
	}

	m.logger.Debugf("Resolving config files matching pattern: %s", opts.ConfigPattern)
	files, err := Glob(workDir, opts.ConfigPattern)
	if err != nil {
		m.logger.Warnf("Unable to resolve config files: %v. Skipping cache.", err)
		return &RestoreResult{Skipped: true}, nil
	}
	if len(files) == 0 {
		m.logger.Warnf("No TFLint config files found matching pattern '%s'. Skipping cache.", opts.ConfigPattern)
		return &RestoreResult{Skipped: true}, nil
	}

	m.logger.Infof("Found %d TFLint config file(s): %s", len(files), strings.Join(files, ", "))

	hash, err := HashFiles(workDir, opts.ConfigPattern)
	if err != nil || hash == "" {
		m.logger.Warn("Unable to hash config files. Skipping cache.")
		return &RestoreResult{Skipped: true}, nil
	}

	result := &RestoreResult{PrimaryKey: PrimaryKey(opts.RunnerOS, hash)}
	m.logger.Debugf("Cache primary key: %s", result.PrimaryKey)

	paths := []string{opts.PluginDir}
	encoded, err := json.Marshal(paths)
	if err != nil {
		return nil, err
	}
	if err := m.runner.SaveState(StatePrimaryKey, result.PrimaryKey); err != nil {
		return nil, err
	}
	if err := m.runner.SaveState(StatePaths, string(encoded)); err != nil {
		return nil, err
	}

	matched, err := m.store.Restore(ctx, paths, result.PrimaryKey, []string{KeyPrefix(opts.RunnerOS)})
	if err != nil {
		m.logger.Warnf("Failed to restore: %v", err)
		matched = ""
	}
	result.MatchedKey = matched
	result.Hit = matched != ""

	if err := m.runner.SetOutput(OutputCacheHit, strconv.FormatBool(result.Hit)); err != nil {
		return nil, err
	}

	if !result.Hit {
		m.logger.Info("TFLint plugin cache not found")
		return result, nil
	}

	if err := m.runner.SaveState(StateMatchedKey, matched); err != nil {
		return nil, err
	}
	m.logger.Infof("TFLint plugin cache restored from key: %s", matched)
	return result, nil
}

// Save stores the plugin directory under the primary key recorded by
// Restore. It never fails; every outcome is logged.
func (m *Manager) Save(ctx context.Context, enabled bool) {
	if !enabled {
		m.logger.Debug("Cache is not enabled")
		return
	}

	primaryKey := m.runner.GetState(StatePrimaryKey)
	matchedKey := m.runner.GetState(StateMatchedKey)

	if primaryKey == "" {
		m.logger.Debug("No cache primary key found, skipping save")
		return
	}

	var paths []string
	if raw := m.runner.GetState(StatePaths); raw != "" {
		if err := json.Unmarshal([]byte(raw), &paths); err != nil {
			m.logger.Warnf("Invalid cache paths state: %v", err)
			return
		}
	}
	if len(paths) == 0 {
		m.logger.Warn("No cache paths found, skipping save")
		return
	}

	if primaryKey == matchedKey {
		m.logger.Infof("Cache hit on primary key %s, not saving cache", primaryKey)
		return
	}

	id, err := m.store.Save(ctx, paths, primaryKey)
	if err != nil {
		var reserveErr *ReserveCacheError
		if errors.As(err, &reserveErr) {
			m.logger.Info(reserveErr.Error())
			return
		}
		m.logger.Warnf("Failed to save cache: %v", err)
		return
	}
	if id == -1 {
		m.logger.Warn("Cache save failed")
		return
	}

	m.logger.Infof("TFLint plugin cache saved with key: %s", primaryKey)
}
