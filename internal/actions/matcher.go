package actions

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// MatcherFileName is the name the TFLint problem matcher is written under.
const MatcherFileName = "tflint-matcher.json"

//go:embed matchers.json
var tflintMatcher []byte

// InstallMatcher writes the embedded TFLint problem matcher into dir and
// registers it.
func (r *Runner) InstallMatcher(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create matcher dir: %w", err)
	}

	path := filepath.Join(dir, MatcherFileName)
	if err := os.WriteFile(path, tflintMatcher, 0644); err != nil {
		return "", fmt.Errorf("write matcher: %w", err)
	}

	r.AddMatcher(path)
	return path, nil
}
