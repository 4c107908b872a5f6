package plugincache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns the regular files matching any of the newline-separated
// patterns, sorted and without duplicates. Relative patterns are resolved
// against root. A "**" segment matches any number of directories.
func Glob(root, patterns string) ([]string, error) {
	seen := make(map[string]bool)
	var matches []string

	for _, line := range strings.Split(patterns, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pattern := filepath.FromSlash(line)
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}

		found, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", line, err)
		}
		for _, p := range found {
			if seen[p] {
				continue
			}
			info, err := os.Lstat(p)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[p] = true
			matches = append(matches, p)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// HashFiles returns the hex SHA-256 over the SHA-256 digests of every file
// matching patterns, in sorted path order, or "" when nothing matched.
// Only files inside root contribute to the hash.
func HashFiles(root, patterns string) (string, error) {
	files, err := Glob(root, patterns)
	if err != nil {
		return "", err
	}

	result := sha256.New()
	hashed := 0
	for _, file := range files {
		if !within(root, file) {
			continue
		}
		sum, err := fileDigest(file)
		if err != nil {
			return "", err
		}
		result.Write(sum)
		hashed++
	}
	if hashed == 0 {
		return "", nil
	}

	return hex.EncodeToString(result.Sum(nil)), nil
}

func within(root, file string) bool {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
