package binary

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tflint-actions/setup-tflint/internal/toolcache"
)

// EnvCLIPath is exported so the wrapper can locate the real binary.
const EnvCLIPath = "TFLINT_CLI_PATH"

// Environment publishes variables to the current and later steps.
type Environment interface {
	ExportVariable(name, value string) error
}

// WrapperOptions configures InstallWrapper.
type WrapperOptions struct {
	// ShimPath is the wrapper executable copied in place of tflint.
	ShimPath string
	// OS is the vendor OS of the binaries in the directory.
	OS  string
	Env Environment
}

// InstallWrapper moves cliDir/tflint to cliDir/tflint-bin, installs the shim
// as cliDir/tflint and exports TFLINT_CLI_PATH=cliDir.
func InstallWrapper(cliDir string, opts WrapperOptions) error {
	if opts.ShimPath == "" {
		return &InstallError{Target: cliDir, Err: fmt.Errorf("wrapper path is required")}
	}
	if opts.Env == nil {
		return fmt.Errorf("environment is required")
	}

	source := filepath.Join(cliDir, ExecutableName(opts.OS))
	target := filepath.Join(cliDir, WrappedName(opts.OS))

	if err := os.Rename(source, target); err != nil {
		return &RelocationError{From: source, To: target, Err: err}
	}

	if err := toolcache.CopyFile(opts.ShimPath, source, 0755); err != nil {
		// Put the real binary back so the directory stays usable.
		os.Remove(source)
		if rerr := os.Rename(target, source); rerr != nil {
			err = fmt.Errorf("%w (rollback failed: %v)", err, rerr)
		}
		return &InstallError{Source: opts.ShimPath, Target: source, Err: err}
	}

	if err := opts.Env.ExportVariable(EnvCLIPath, cliDir); err != nil {
		return fmt.Errorf("export %s: %w", EnvCLIPath, err)
	}

	return nil
}
