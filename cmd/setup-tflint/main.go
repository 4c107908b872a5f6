package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tflint-actions/setup-tflint/internal/actions"
)

// Version will be set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		// Same effect as a failed step: an error annotation and exit code 1.
		actions.New().Error(err.Error())
		os.Exit(1)
	}
}
