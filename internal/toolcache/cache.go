// Package toolcache implements the runner's local tool cache.
//
// Entries live at <root>/<tool>/<version>/<arch> and are only visible once
// the sibling <arch>.complete marker exists, so a half-copied directory is
// never returned by Find.
package toolcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// EnvToolCache names the variable holding the cache root.
const EnvToolCache = "RUNNER_TOOL_CACHE"

// Cache is a tool cache rooted at a directory.
type Cache struct {
	root   string
	logger *logrus.Entry
}

// New creates a cache rooted at root.
func New(root string) (*Cache, error) {
	if root == "" {
		return nil, errors.New("tool cache root is required")
	}
	return &Cache{
		root:   root,
		logger: logrus.WithField("component", "toolcache"),
	}, nil
}

// FromEnv creates a cache rooted at RUNNER_TOOL_CACHE, or at a directory under
// the OS temp dir when unset (self-hosted and local runs).
func FromEnv() (*Cache, error) {
	root := os.Getenv(EnvToolCache)
	if root == "" {
		root = filepath.Join(os.TempDir(), "setup-tflint", "toolcache")
	}
	return New(root)
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// NormalizeVersion converts a release tag into the cache's version key by
// dropping surrounding space and one leading "v". Distinct tags stay
// distinct keys: "v0.50" and "v0.50.0" are different entries.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

func (c *Cache) entryDir(tool, version, arch string) string {
	return filepath.Join(c.root, tool, NormalizeVersion(version), arch)
}

func (c *Cache) markerPath(tool, version, arch string) string {
	return c.entryDir(tool, version, arch) + ".complete"
}

// Find returns the cached directory for tool/version/arch.
func (c *Cache) Find(tool, version, arch string) (string, bool) {
	if tool == "" || version == "" || arch == "" {
		return "", false
	}

	dir := c.entryDir(tool, version, arch)
	if _, err := os.Stat(c.markerPath(tool, version, arch)); err != nil {
		c.logger.WithField("path", dir).Debug("tool cache miss")
		return "", false
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}

	c.logger.WithField("path", dir).Debug("tool cache hit")
	return dir, true
}

// Add copies the contents of srcDir into the cache entry for
// tool/version/arch and marks it complete. An existing entry is replaced.
func (c *Cache) Add(srcDir, tool, version, arch string) (string, error) {
	if tool == "" || version == "" || arch == "" {
		return "", fmt.Errorf("tool, version and arch are required")
	}

	info, err := os.Stat(srcDir)
	if err != nil {
		return "", fmt.Errorf("stat source dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s is not a directory", srcDir)
	}

	dest := c.entryDir(tool, version, arch)
	marker := c.markerPath(tool, version, arch)

	if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove stale marker: %w", err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("remove stale entry: %w", err)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	if err := CopyDir(srcDir, dest); err != nil {
		return "", fmt.Errorf("copy into cache: %w", err)
	}

	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return "", fmt.Errorf("write completion marker: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"tool":    tool,
		"version": NormalizeVersion(version),
		"arch":    arch,
	}).Debug("added to tool cache")

	return dest, nil
}
