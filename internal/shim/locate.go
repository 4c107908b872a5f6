package shim

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvCLIPath points at the directory holding the relocated binary.
const EnvCLIPath = "TFLINT_CLI_PATH"

// NotFoundError reports that the real binary could not be located.
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unable to locate the real tflint binary: %s", e.Reason)
	}
	return fmt.Sprintf("unable to locate the real tflint binary at %s: %s", e.Path, e.Reason)
}

// RealBinaryName is the relocated binary's file name on this OS.
func RealBinaryName() string {
	if runtime.GOOS == "windows" {
		return "tflint-bin.exe"
	}
	return "tflint-bin"
}

// Locate returns <TFLINT_CLI_PATH>/tflint-bin. It never searches PATH.
func Locate(getenv func(string) string) (string, error) {
	dir := getenv(EnvCLIPath)
	if dir == "" {
		return "", &NotFoundError{Reason: EnvCLIPath + " is not set"}
	}

	path := filepath.Join(dir, RealBinaryName())
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Path: path, Reason: "file does not exist"}
		}
		return "", &NotFoundError{Path: path, Reason: err.Error()}
	}

	if !info.Mode().IsRegular() {
		return "", &NotFoundError{Path: path, Reason: "not a regular file"}
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
		return "", &NotFoundError{Path: path, Reason: "file is not executable"}
	}

	return path, nil
}
