// Command tflint-wrapper is installed in place of tflint when the wrapper is
// enabled. It runs the real binary found through TFLINT_CLI_PATH, passes its
// output through, and publishes stdout, stderr and exitcode as step outputs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tflint-actions/setup-tflint/internal/actions"
	"github.com/tflint-actions/setup-tflint/internal/logging"
	"github.com/tflint-actions/setup-tflint/internal/shim"
)

func main() {
	// Flags belong to tflint, so every argument is forwarded untouched.
	if _, err := logging.Init(logging.Config{
		Format: logging.FormatActions,
		Debug:  os.Getenv(actions.EnvDebug) == "1",
	}, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := shim.Main(ctx, os.Args[1:], shim.Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logging.Component("wrapper"),
	})
	stop()

	os.Exit(code)
}
