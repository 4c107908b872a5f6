package shim

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tflint-actions/setup-tflint/internal/actions"
)

// Outputs publishes step outputs.
type Outputs interface {
	SetOutput(name, value string) error
}

// Options configures Main.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Getenv and LookupEnv default to the process environment.
	Getenv    func(string) string
	LookupEnv func(string) (string, bool)
	Outputs   Outputs
	Logger    *logrus.Entry
}

// Main runs the wrapper with args and returns the process exit status:
// 0 when the real binary succeeded or only reported findings, 1 otherwise.
func Main(ctx context.Context, args []string, opts Options) int {
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.Outputs == nil {
		opts.Outputs = actions.New()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.WithField("component", "wrapper")
	}

	policy, err := PolicyFromEnv(opts.LookupEnv)
	if err != nil {
		log.Error(err.Error())
		return 1
	}

	bin, err := Locate(opts.Getenv)
	if err != nil {
		log.Error(err.Error())
		return 1
	}

	res, err := NewExecutor(opts.Stdin).Run(ctx, bin, args, opts.Stdout, opts.Stderr)
	if err != nil {
		log.Error(err.Error())
		return 1
	}

	log.Debugf("tflint exited with code %d.", res.ExitCode)
	log.Debugf("stdout: %s", res.Stdout)
	log.Debugf("stderr: %s", res.Stderr)
	log.Debugf("exitcode: %d", res.ExitCode)

	outputs := []struct{ name, value string }{
		{"stdout", string(res.Stdout)},
		{"stderr", string(res.Stderr)},
		{"exitcode", strconv.Itoa(res.ExitCode)},
	}
	for _, o := range outputs {
		if err := opts.Outputs.SetOutput(o.name, o.value); err != nil {
			log.WithError(err).Errorf("unable to set output %s", o.name)
			return 1
		}
	}

	if err := policy.Evaluate(res.ExitCode); err != nil {
		log.Error(err.Error())
		return 1
	}

	return 0
}
