package plugincache

import (
	"os"
	"path/filepath"
	"strings"
)

// Step state names shared by the main and post steps.
const (
	StatePrimaryKey = "TFLINT_CACHE_KEY"
	StateMatchedKey = "TFLINT_CACHE_MATCHED_KEY"
	StatePaths      = "TFLINT_CACHE_PATHS"
)

// OutputCacheHit is the step output reporting a restore.
const OutputCacheHit = "cache-hit"

// EnvPluginDir is TFLint's own plugin directory override.
const EnvPluginDir = "TFLINT_PLUGIN_DIR"

const (
	keyPrefix        = "tflint-plugins"
	defaultPluginDir = "~/.tflint.d/plugins"
)

// KeyPrefix returns tflint-plugins-<runnerOS>.
func KeyPrefix(runnerOS string) string {
	return keyPrefix + "-" + runnerOS
}

// PrimaryKey returns tflint-plugins-<runnerOS>-<hash>.
func PrimaryKey(runnerOS, hash string) string {
	return KeyPrefix(runnerOS) + "-" + hash
}

// ResolvePluginDir picks the plugin directory: the input, then
// TFLINT_PLUGIN_DIR, then ~/.tflint.d/plugins. A leading ~ is expanded.
func ResolvePluginDir(input string, getenv func(string) string) string {
	dir := input
	if dir == "" {
		dir = getenv(EnvPluginDir)
	}
	if dir == "" {
		dir = defaultPluginDir
	}
	return expandHome(dir)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
